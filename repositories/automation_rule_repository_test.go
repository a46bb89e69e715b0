package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmis/automation-backend/models"
)

var automationRuleColumns = []string{
	"id", "org_id", "name", "description", "rule_type", "entity_type", "entity_id",
	"conditions", "condition_logic", "actions", "priority", "status", "enabled",
	"max_executions_per_day", "cooldown_minutes", "execution_count", "success_count",
	"failure_count", "last_executed_at", "created_at", "updated_at",
}

func automationRuleRow(mock pgxmock.PgxPoolIface, ruleId, orgId uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	return mock.NewRows(automationRuleColumns).AddRow(
		ruleId, orgId, "Pause low ROI", "", "budget_optimization", "campaign", nil,
		[]byte(`[{"field":"roi","operator":"<","value":1.5}]`), "and",
		[]byte(`[{"type":"pause_campaign","params":{}}]`), 10, "active", true,
		5, 60, 3, 3, 0, nil, now, now,
	)
}

func TestGetAutomationRuleById(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ruleId := uuid.New()
	orgId := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, org_id, name, description, rule_type, entity_type, entity_id, "+
			"conditions, condition_logic, actions, priority, status, enabled, "+
			"max_executions_per_day, cooldown_minutes, execution_count, success_count, "+
			"failure_count, last_executed_at, created_at, updated_at "+
			"FROM automation_rules WHERE id = $1")).
		WithArgs(ruleId.String()).
		WillReturnRows(automationRuleRow(mock, ruleId, orgId))

	repo := AutomationRuleRepositoryPostgresql{}
	rule, err := repo.GetAutomationRuleById(context.Background(), mock, ruleId)
	require.NoError(t, err)

	assert.Equal(t, ruleId, rule.Id)
	assert.Equal(t, orgId, rule.OrganizationId)
	assert.Equal(t, models.RuleTypeBudgetOptimization, rule.RuleType)
	assert.Equal(t, models.RuleStatusActive, rule.Status)
	require.Len(t, rule.Conditions, 1)
	assert.Equal(t, models.OperatorLess, rule.Conditions[0].Operator)
	require.Len(t, rule.Actions, 1)
	assert.Equal(t, models.ActionPauseCampaign, rule.Actions[0].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAutomationRuleByIdNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ruleId := uuid.New()
	mock.ExpectQuery("SELECT .* FROM automation_rules").
		WithArgs(ruleId.String()).
		WillReturnRows(mock.NewRows(automationRuleColumns))

	repo := AutomationRuleRepositoryPostgresql{}
	_, err = repo.GetAutomationRuleById(context.Background(), mock, ruleId)
	assert.ErrorIs(t, err, models.NotFoundError)
}

func TestListEvaluableRulesOrdersByPriority(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	orgId := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY priority, created_at")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(automationRuleRow(mock, uuid.New(), orgId))

	repo := AutomationRuleRepositoryPostgresql{}
	rules, err := repo.ListEvaluableRules(context.Background(), mock, orgId)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Evaluable())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRuleExecutionCounters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ruleId := uuid.New()
	executedAt := time.Now()

	mock.ExpectExec("UPDATE automation_rules SET .*success_count = success_count \\+ 1.*").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := AutomationRuleRepositoryPostgresql{}
	err = repo.RecordRuleExecutionCounters(context.Background(), mock, ruleId, true, executedAt)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
