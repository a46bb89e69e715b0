package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories/dbmodels"
)

type BudgetAllocationLogRepository interface {
	CreateBudgetAllocationLog(ctx context.Context, exec Executor, allocation models.CampaignAllocation,
		reason string, newLogId uuid.UUID) error
	ListBudgetAllocationLogs(ctx context.Context, exec Executor, organizationId uuid.UUID,
		limit int) ([]models.BudgetAllocationLog, error)
}

type BudgetAllocationLogRepositoryPostgresql struct{}

func (repo *BudgetAllocationLogRepositoryPostgresql) CreateBudgetAllocationLog(
	ctx context.Context,
	exec Executor,
	allocation models.CampaignAllocation,
	reason string,
	newLogId uuid.UUID,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	changePercentage := 0.0
	if allocation.PreviousBudget > 0 {
		changePercentage = allocation.Delta / allocation.PreviousBudget * 100
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_BUDGET_ALLOCATION_LOG).
			Columns(
				"id",
				"campaign_id",
				"old_budget",
				"new_budget",
				"change_amount",
				"change_percentage",
				"reason",
			).
			Values(
				newLogId,
				allocation.CampaignId,
				allocation.PreviousBudget,
				allocation.NewBudget,
				allocation.Delta,
				changePercentage,
				reason,
			),
	)
}

func (repo *BudgetAllocationLogRepositoryPostgresql) ListBudgetAllocationLogs(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
	limit int,
) ([]models.BudgetAllocationLog, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	query := NewQueryBuilder().
		Select(dbmodels.SelectBudgetAllocationLogColumns...).
		From(dbmodels.TABLE_BUDGET_ALLOCATION_LOG + " AS log").
		Join(dbmodels.TABLE_CAMPAIGNS + " AS c ON c.id = log.campaign_id").
		Where(squirrel.Eq{"c.org_id": organizationId}).
		OrderBy("log.allocated_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptBudgetAllocationLog)
}
