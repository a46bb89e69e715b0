package rule_eval

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmis/automation-backend/models"
)

func condition(field string, operator models.ConditionOperator, value any) models.Condition {
	return models.Condition{
		Field:    field,
		Operator: operator,
		Value:    models.NewScalarValue(value),
	}
}

func betweenCondition(field string, min, max float64) models.Condition {
	return models.Condition{
		Field:    field,
		Operator: models.OperatorBetween,
		Value:    models.NewRangeValue(min, max),
	}
}

func TestEvaluateCondition(t *testing.T) {
	data := map[string]any{
		"roas":            1.2,
		"spend":           "150.5",
		"status":          "active",
		"tags":            []any{"retargeting", "q3"},
		"metrics":         map[string]any{"ctr": 0.03},
		"conversion_rate": 2,
	}

	tests := []struct {
		name       string
		condition  models.Condition
		matched    bool
		wellFormed bool
	}{
		{"greater true", condition("roas", models.OperatorGreater, 1.0), true, true},
		{"greater false", condition("roas", models.OperatorGreater, 1.2), false, true},
		{"greater or equal boundary", condition("roas", models.OperatorGreaterOrEqual, 1.2), true, true},
		{"less true", condition("roas", models.OperatorLess, 1.5), true, true},
		{"less or equal boundary", condition("roas", models.OperatorLessOrEqual, 1.2), true, true},
		{"numeric string operand", condition("spend", models.OperatorGreater, 100), true, true},
		{"non numeric operand is false", condition("status", models.OperatorGreater, 1), false, true},
		{"equal numeric string vs number", condition("spend", models.OperatorEqual, "150.50"), true, true},
		{"equal string identity", condition("status", models.OperatorEqual, "active"), true, true},
		{"not equal", condition("status", models.OperatorNotEqual, "paused"), true, true},
		{"equal int field float value", condition("conversion_rate", models.OperatorEqual, 2.0), true, true},
		{"contains substring", condition("status", models.OperatorContains, "act"), true, true},
		{"contains membership", condition("tags", models.OperatorContains, "q3"), true, true},
		{"contains no membership", condition("tags", models.OperatorContains, "q4"), false, true},
		{"contains on number is false", condition("roas", models.OperatorContains, "1"), false, true},
		{"between inside", betweenCondition("roas", 1.0, 1.5), true, true},
		{"between lower boundary inclusive", betweenCondition("roas", 1.2, 2.0), true, true},
		{"between upper boundary inclusive", betweenCondition("roas", 0.5, 1.2), true, true},
		{"between just outside", betweenCondition("roas", 1.21, 2.0), false, true},
		{"dot path", condition("metrics.ctr", models.OperatorLess, 0.05), true, true},
		{"missing field is false not error", condition("cpc", models.OperatorGreater, 0), false, true},
		{"missing nested path", condition("metrics.cpm.avg", models.OperatorGreater, 0), false, true},
		{"unknown operator degrades", condition("roas", "~=", 1), false, false},
		{"empty field degrades", condition("", models.OperatorGreater, 1), false, false},
		{
			"between without range degrades",
			condition("roas", models.OperatorBetween, 1.5),
			false, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, wellFormed := EvaluateCondition(tt.condition, data)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.wellFormed, wellFormed)
		})
	}
}

func TestEvaluateRuleAndLogic(t *testing.T) {
	ctx := context.Background()
	rule := models.AutomationRule{
		Id:             uuid.New(),
		ConditionLogic: models.ConditionLogicAnd,
		Conditions: []models.Condition{
			condition("roas", models.OperatorLess, 1.5),
		},
		Actions: []models.Action{
			{Type: models.ActionPauseCampaign},
		},
	}

	result := EvaluateRule(ctx, rule, map[string]any{"roas": 1.2})
	assert.True(t, result.Matched)
	require.Len(t, result.MatchedConditions, 1)
	require.Len(t, result.FiredActions, 1)
	assert.Equal(t, models.ActionPauseCampaign, result.FiredActions[0].Type)

	result = EvaluateRule(ctx, rule, map[string]any{"roas": 2.0})
	assert.False(t, result.Matched)
	assert.Empty(t, result.MatchedConditions)
	assert.Empty(t, result.FiredActions)
}

func TestEvaluateRuleAndRequiresAllConditions(t *testing.T) {
	rule := models.AutomationRule{
		ConditionLogic: models.ConditionLogicAnd,
		Conditions: []models.Condition{
			condition("roas", models.OperatorLess, 1.5),
			condition("spend", models.OperatorGreater, 1000),
		},
		Actions: []models.Action{{Type: models.ActionSendNotification}},
	}

	result := EvaluateRule(context.Background(), rule, map[string]any{
		"roas":  1.2,
		"spend": 500.0,
	})
	assert.False(t, result.Matched)
	// The matching condition is still reported for explainability.
	require.Len(t, result.MatchedConditions, 1)
	assert.Equal(t, "roas", result.MatchedConditions[0].Field)
	assert.Empty(t, result.FiredActions)
}

func TestEvaluateRuleOrLogic(t *testing.T) {
	rule := models.AutomationRule{
		ConditionLogic: models.ConditionLogicOr,
		Conditions: []models.Condition{
			condition("roas", models.OperatorLess, 1.0),
			condition("spend", models.OperatorGreater, 100),
		},
		Actions: []models.Action{{Type: models.ActionAdjustBudget}},
	}

	result := EvaluateRule(context.Background(), rule, map[string]any{
		"roas":  1.2,
		"spend": 500.0,
	})
	assert.True(t, result.Matched)
	require.Len(t, result.MatchedConditions, 1)
	assert.Len(t, result.FiredActions, 1)
}

func TestEvaluateRuleEmptyConditionsNeverMatch(t *testing.T) {
	rule := models.AutomationRule{
		ConditionLogic: models.ConditionLogicAnd,
		Actions:        []models.Action{{Type: models.ActionPauseCampaign}},
	}

	result := EvaluateRule(context.Background(), rule, map[string]any{"roas": 0.1})
	assert.False(t, result.Matched)
	assert.Empty(t, result.FiredActions)
}

func TestEvaluateRuleMalformedConditionDegrades(t *testing.T) {
	rule := models.AutomationRule{
		ConditionLogic: models.ConditionLogicOr,
		Conditions: []models.Condition{
			condition("roas", "bogus", 1),
			condition("roas", models.OperatorLess, 1.5),
		},
		Actions: []models.Action{{Type: models.ActionPauseCampaign}},
	}

	result := EvaluateRule(context.Background(), rule, map[string]any{"roas": 1.2})
	assert.True(t, result.Matched, "a malformed condition must not block the rest of the rule")
	assert.True(t, result.Degraded)
	require.Len(t, result.MatchedConditions, 1)
}
