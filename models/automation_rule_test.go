package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleStatusTransition(t *testing.T) {
	cases := []struct {
		from    RuleStatus
		event   RuleEvent
		want    RuleStatus
		wantErr bool
	}{
		{RuleStatusDraft, RuleEventActivate, RuleStatusActive, false},
		{RuleStatusDraft, RuleEventPause, "", true},
		{RuleStatusDraft, RuleEventArchive, RuleStatusArchived, false},
		{RuleStatusActive, RuleEventPause, RuleStatusPaused, false},
		{RuleStatusActive, RuleEventActivate, "", true},
		{RuleStatusActive, RuleEventArchive, RuleStatusArchived, false},
		{RuleStatusPaused, RuleEventActivate, RuleStatusActive, false},
		{RuleStatusPaused, RuleEventPause, "", true},
		{RuleStatusPaused, RuleEventArchive, RuleStatusArchived, false},
		{RuleStatusArchived, RuleEventActivate, "", true},
		{RuleStatusArchived, RuleEventPause, "", true},
		{RuleStatusArchived, RuleEventArchive, "", true},
	}

	for _, c := range cases {
		got, err := c.from.Transition(c.event)
		if c.wantErr {
			assert.Error(t, err, "%s + %s should be rejected", c.from, c.event)
		} else {
			assert.NoError(t, err, "%s + %s", c.from, c.event)
			assert.Equal(t, c.want, got)
		}
	}
}

func TestEvaluableRequiresEnabledAndActive(t *testing.T) {
	rule := AutomationRule{Status: RuleStatusActive, Enabled: true}
	assert.True(t, rule.Evaluable())

	rule.Enabled = false
	assert.False(t, rule.Evaluable())

	rule.Enabled = true
	rule.Status = RuleStatusPaused
	assert.False(t, rule.Evaluable())
}

func TestCreateRuleInputValidate(t *testing.T) {
	input := CreateAutomationRuleInput{
		Name:     "pause on low roas",
		Priority: 50,
		Conditions: []Condition{
			{Field: "roas", Operator: OperatorLess, Value: NewScalarValue(1.5)},
		},
		Actions: []Action{{Type: ActionPauseCampaign}},
	}
	assert.NoError(t, input.Validate())

	input.Priority = 0
	assert.Error(t, input.Validate())

	input.Priority = 101
	assert.Error(t, input.Validate())

	input.Priority = 50
	input.Conditions[0].Operator = "~="
	assert.Error(t, input.Validate())

	input.Conditions[0].Operator = OperatorBetween
	assert.Error(t, input.Validate(), "between with a scalar value should be rejected")
}
