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

type RuleExecutionRepository interface {
	CreateRuleExecution(ctx context.Context, exec Executor, input models.CreateRuleExecutionInput,
		newExecutionId uuid.UUID) error
	ListRuleExecutions(ctx context.Context, exec Executor, ruleId uuid.UUID,
		filters models.RuleExecutionFilters) ([]models.RuleExecution, error)
	CountRuleExecutionsSince(ctx context.Context, exec Executor, ruleId uuid.UUID,
		since time.Time) (int, error)
	CountExecutionsForOrganization(ctx context.Context, exec Executor, organizationId uuid.UUID,
		since *time.Time) (int, error)
}

type RuleExecutionRepositoryPostgresql struct{}

func (repo *RuleExecutionRepositoryPostgresql) CreateRuleExecution(
	ctx context.Context,
	exec Executor,
	input models.CreateRuleExecutionInput,
	newExecutionId uuid.UUID,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	matchedConditions, err := json.Marshal(input.MatchedConditions)
	if err != nil {
		return errors.Wrap(err, "unable to marshal matched conditions")
	}
	actionsTaken, err := json.Marshal(input.ActionsTaken)
	if err != nil {
		return errors.Wrap(err, "unable to marshal actions taken")
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_RULE_EXECUTIONS).
			Columns(
				"id",
				"rule_id",
				"org_id",
				"status",
				"matched_conditions",
				"actions_taken",
				"error_detail",
				"elapsed_ms",
			).
			Values(
				newExecutionId,
				input.RuleId,
				input.OrganizationId,
				input.Status,
				matchedConditions,
				actionsTaken,
				input.ErrorDetail,
				input.ElapsedMs,
			),
	)
}

func (repo *RuleExecutionRepositoryPostgresql) ListRuleExecutions(
	ctx context.Context,
	exec Executor,
	ruleId uuid.UUID,
	filters models.RuleExecutionFilters,
) ([]models.RuleExecution, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	query := NewQueryBuilder().
		Select(dbmodels.SelectRuleExecutionColumns...).
		From(dbmodels.TABLE_RULE_EXECUTIONS).
		Where(squirrel.Eq{"rule_id": ruleId}).
		OrderBy("executed_at DESC")

	if filters.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filters.Status})
	}
	if filters.Limit > 0 {
		query = query.Limit(uint64(filters.Limit))
	}
	if filters.Offset > 0 {
		query = query.Offset(uint64(filters.Offset))
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptRuleExecution)
}

// CountRuleExecutionsSince supports the rolling daily execution cap.
func (repo *RuleExecutionRepositoryPostgresql) CountRuleExecutionsSince(
	ctx context.Context,
	exec Executor,
	ruleId uuid.UUID,
	since time.Time,
) (int, error) {
	if err := validateExecutor(exec); err != nil {
		return 0, err
	}

	sql, args, err := NewQueryBuilder().
		Select("COUNT(*)").
		From(dbmodels.TABLE_RULE_EXECUTIONS).
		Where(squirrel.Eq{"rule_id": ruleId}).
		Where(squirrel.GtOrEq{"executed_at": since}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "can't build sql query")
	}

	var count int
	if err := exec.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error counting rule executions")
	}
	return count, nil
}

func (repo *RuleExecutionRepositoryPostgresql) CountExecutionsForOrganization(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
	since *time.Time,
) (int, error) {
	if err := validateExecutor(exec); err != nil {
		return 0, err
	}

	query := NewQueryBuilder().
		Select("COUNT(*)").
		From(dbmodels.TABLE_RULE_EXECUTIONS).
		Where(squirrel.Eq{"org_id": organizationId})
	if since != nil {
		query = query.Where(squirrel.GtOrEq{"executed_at": *since})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "can't build sql query")
	}

	var count int
	if err := exec.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error counting organization executions")
	}
	return count, nil
}
