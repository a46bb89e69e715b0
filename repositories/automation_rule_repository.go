package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories/dbmodels"
)

type AutomationRuleRepository interface {
	GetAutomationRuleById(ctx context.Context, exec Executor, ruleId uuid.UUID) (models.AutomationRule, error)
	ListAutomationRules(ctx context.Context, exec Executor, organizationId uuid.UUID,
		filters models.AutomationRuleFilters) ([]models.AutomationRule, error)
	ListEvaluableRules(ctx context.Context, exec Executor, organizationId uuid.UUID) ([]models.AutomationRule, error)
	CreateAutomationRule(ctx context.Context, exec Executor, input models.CreateAutomationRuleInput,
		newRuleId uuid.UUID) error
	UpdateAutomationRule(ctx context.Context, exec Executor, input models.UpdateAutomationRuleInput) error
	UpdateAutomationRuleStatus(ctx context.Context, exec Executor, ruleId uuid.UUID, status models.RuleStatus) error
	DeleteAutomationRule(ctx context.Context, exec Executor, ruleId uuid.UUID) error
	RecordRuleExecutionCounters(ctx context.Context, exec Executor, ruleId uuid.UUID,
		succeeded bool, executedAt time.Time) error
	CountRulesByStatus(ctx context.Context, exec Executor, organizationId uuid.UUID) (map[models.RuleStatus]int, error)
	CountRulesByType(ctx context.Context, exec Executor, organizationId uuid.UUID) (map[models.RuleType]int, error)
	TopPerformingRules(ctx context.Context, exec Executor, organizationId uuid.UUID,
		limit int) ([]models.RulePerformance, error)
}

type AutomationRuleRepositoryPostgresql struct{}

func (repo *AutomationRuleRepositoryPostgresql) GetAutomationRuleById(
	ctx context.Context,
	exec Executor,
	ruleId uuid.UUID,
) (models.AutomationRule, error) {
	if err := validateExecutor(exec); err != nil {
		return models.AutomationRule{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectAutomationRuleColumns...).
			From(dbmodels.TABLE_AUTOMATION_RULES).
			Where(squirrel.Eq{"id": ruleId}),
		dbmodels.AdaptAutomationRule,
	)
}

func (repo *AutomationRuleRepositoryPostgresql) ListAutomationRules(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
	filters models.AutomationRuleFilters,
) ([]models.AutomationRule, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	query := NewQueryBuilder().
		Select(dbmodels.SelectAutomationRuleColumns...).
		From(dbmodels.TABLE_AUTOMATION_RULES).
		Where(squirrel.Eq{"org_id": organizationId}).
		OrderBy("priority", "created_at DESC")

	if filters.EntityType != nil {
		query = query.Where(squirrel.Eq{"entity_type": *filters.EntityType})
	}
	if filters.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filters.Status})
	}
	if filters.RuleType != nil {
		query = query.Where(squirrel.Eq{"rule_type": *filters.RuleType})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptAutomationRule)
}

// ListEvaluableRules returns the rules an automation cycle considers, ordered
// by ascending priority then creation time so ties break deterministically.
func (repo *AutomationRuleRepositoryPostgresql) ListEvaluableRules(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
) ([]models.AutomationRule, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectAutomationRuleColumns...).
			From(dbmodels.TABLE_AUTOMATION_RULES).
			Where(squirrel.Eq{
				"org_id":  organizationId,
				"status":  models.RuleStatusActive,
				"enabled": true,
			}).
			OrderBy("priority", "created_at"),
		dbmodels.AdaptAutomationRule,
	)
}

func (repo *AutomationRuleRepositoryPostgresql) CreateAutomationRule(
	ctx context.Context,
	exec Executor,
	input models.CreateAutomationRuleInput,
	newRuleId uuid.UUID,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	conditions, err := json.Marshal(input.Conditions)
	if err != nil {
		return errors.Wrap(err, "unable to marshal rule conditions")
	}
	actions, err := json.Marshal(input.Actions)
	if err != nil {
		return errors.Wrap(err, "unable to marshal rule actions")
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_AUTOMATION_RULES).
			Columns(
				"id",
				"org_id",
				"name",
				"description",
				"rule_type",
				"entity_type",
				"entity_id",
				"conditions",
				"condition_logic",
				"actions",
				"priority",
				"status",
				"enabled",
				"max_executions_per_day",
				"cooldown_minutes",
			).
			Values(
				newRuleId,
				input.OrganizationId,
				input.Name,
				input.Description,
				input.RuleType,
				input.EntityType,
				input.EntityId,
				conditions,
				input.ConditionLogic,
				actions,
				input.Priority,
				models.RuleStatusDraft,
				input.Enabled,
				input.MaxExecutionsPerDay,
				input.CooldownMinutes,
			),
	)
}

func (repo *AutomationRuleRepositoryPostgresql) UpdateAutomationRule(
	ctx context.Context,
	exec Executor,
	input models.UpdateAutomationRuleInput,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	query := NewQueryBuilder().
		Update(dbmodels.TABLE_AUTOMATION_RULES).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": input.Id})

	if input.Name != nil {
		query = query.Set("name", *input.Name)
	}
	if input.Description != nil {
		query = query.Set("description", *input.Description)
	}
	if input.Conditions != nil {
		conditions, err := json.Marshal(input.Conditions)
		if err != nil {
			return errors.Wrap(err, "unable to marshal rule conditions")
		}
		query = query.Set("conditions", conditions)
	}
	if input.ConditionLogic != nil {
		query = query.Set("condition_logic", *input.ConditionLogic)
	}
	if input.Actions != nil {
		actions, err := json.Marshal(input.Actions)
		if err != nil {
			return errors.Wrap(err, "unable to marshal rule actions")
		}
		query = query.Set("actions", actions)
	}
	if input.Priority != nil {
		query = query.Set("priority", *input.Priority)
	}
	if input.Enabled != nil {
		query = query.Set("enabled", *input.Enabled)
	}
	if input.MaxExecutionsPerDay != nil {
		query = query.Set("max_executions_per_day", *input.MaxExecutionsPerDay)
	}
	if input.CooldownMinutes != nil {
		query = query.Set("cooldown_minutes", *input.CooldownMinutes)
	}

	return ExecBuilder(ctx, exec, query)
}

func (repo *AutomationRuleRepositoryPostgresql) UpdateAutomationRuleStatus(
	ctx context.Context,
	exec Executor,
	ruleId uuid.UUID,
	status models.RuleStatus,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_AUTOMATION_RULES).
			Set("status", status).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": ruleId}),
	)
}

func (repo *AutomationRuleRepositoryPostgresql) DeleteAutomationRule(
	ctx context.Context,
	exec Executor,
	ruleId uuid.UUID,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Delete(dbmodels.TABLE_AUTOMATION_RULES).
			Where(squirrel.Eq{"id": ruleId}),
	)
}

// RecordRuleExecutionCounters bumps the denormalized counters after an
// execution record has been written.
func (repo *AutomationRuleRepositoryPostgresql) RecordRuleExecutionCounters(
	ctx context.Context,
	exec Executor,
	ruleId uuid.UUID,
	succeeded bool,
	executedAt time.Time,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	query := NewQueryBuilder().
		Update(dbmodels.TABLE_AUTOMATION_RULES).
		Set("execution_count", squirrel.Expr("execution_count + 1")).
		Set("last_executed_at", executedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ruleId})

	if succeeded {
		query = query.Set("success_count", squirrel.Expr("success_count + 1"))
	} else {
		query = query.Set("failure_count", squirrel.Expr("failure_count + 1"))
	}

	return ExecBuilder(ctx, exec, query)
}

func (repo *AutomationRuleRepositoryPostgresql) CountRulesByStatus(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
) (map[models.RuleStatus]int, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	sql, args, err := NewQueryBuilder().
		Select("status", "COUNT(*)").
		From(dbmodels.TABLE_AUTOMATION_RULES).
		Where(squirrel.Eq{"org_id": organizationId}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}
	defer rows.Close()

	counts := make(map[models.RuleStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.Wrap(err, "error scanning rule status count")
		}
		counts[models.RuleStatus(status)] = count
	}
	return counts, rows.Err()
}

func (repo *AutomationRuleRepositoryPostgresql) CountRulesByType(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
) (map[models.RuleType]int, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	sql, args, err := NewQueryBuilder().
		Select("rule_type", "COUNT(*)").
		From(dbmodels.TABLE_AUTOMATION_RULES).
		Where(squirrel.Eq{"org_id": organizationId}).
		GroupBy("rule_type").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}
	defer rows.Close()

	counts := make(map[models.RuleType]int)
	for rows.Next() {
		var ruleType string
		var count int
		if err := rows.Scan(&ruleType, &count); err != nil {
			return nil, errors.Wrap(err, "error scanning rule type count")
		}
		counts[models.RuleType(ruleType)] = count
	}
	return counts, rows.Err()
}

func (repo *AutomationRuleRepositoryPostgresql) TopPerformingRules(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
	limit int,
) ([]models.RulePerformance, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	sql, args, err := NewQueryBuilder().
		Select("id", "name", "execution_count", "success_count", "failure_count").
		From(dbmodels.TABLE_AUTOMATION_RULES).
		Where(squirrel.Eq{"org_id": organizationId}).
		Where("execution_count > 0").
		OrderBy("success_count DESC", "execution_count DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}
	defer rows.Close()

	var performances []models.RulePerformance
	for rows.Next() {
		var perf models.RulePerformance
		if err := rows.Scan(&perf.RuleId, &perf.Name, &perf.ExecutionCount,
			&perf.SuccessCount, &perf.FailureCount); err != nil {
			return nil, errors.Wrap(err, "error scanning rule performance")
		}
		performances = append(performances, perf)
	}
	return performances, rows.Err()
}
