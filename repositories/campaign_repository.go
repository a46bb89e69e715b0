package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories/dbmodels"
)

type CampaignRepository interface {
	GetCampaignById(ctx context.Context, exec Executor, campaignId uuid.UUID) (models.Campaign, error)
	ListCampaigns(ctx context.Context, exec Executor, organizationId uuid.UUID) ([]models.Campaign, error)
	ListAllocatableCampaigns(ctx context.Context, exec Executor, organizationId uuid.UUID) ([]models.Campaign, error)
	UpdateCampaignBudget(ctx context.Context, exec Executor, campaignId uuid.UUID, budget float64) error
	UpdateCampaignStatus(ctx context.Context, exec Executor, campaignId uuid.UUID,
		status models.CampaignStatus) error
}

type CampaignRepositoryPostgresql struct{}

func (repo *CampaignRepositoryPostgresql) GetCampaignById(
	ctx context.Context,
	exec Executor,
	campaignId uuid.UUID,
) (models.Campaign, error) {
	if err := validateExecutor(exec); err != nil {
		return models.Campaign{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectCampaignColumns...).
			From(dbmodels.TABLE_CAMPAIGNS).
			Where(squirrel.Eq{"id": campaignId}),
		dbmodels.AdaptCampaign,
	)
}

func (repo *CampaignRepositoryPostgresql) ListCampaigns(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
) ([]models.Campaign, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectCampaignColumns...).
			From(dbmodels.TABLE_CAMPAIGNS).
			Where(squirrel.Eq{"org_id": organizationId}).
			OrderBy("created_at DESC"),
		dbmodels.AdaptCampaign,
	)
}

// ListAllocatableCampaigns returns the campaigns a budget reallocation spreads
// over. Only active and scheduled campaigns take part.
func (repo *CampaignRepositoryPostgresql) ListAllocatableCampaigns(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
) ([]models.Campaign, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectCampaignColumns...).
			From(dbmodels.TABLE_CAMPAIGNS).
			Where(squirrel.Eq{"org_id": organizationId}).
			Where(squirrel.Eq{"status": []models.CampaignStatus{
				models.CampaignStatusActive,
				models.CampaignStatusScheduled,
			}}).
			OrderBy("created_at"),
		dbmodels.AdaptCampaign,
	)
}

func (repo *CampaignRepositoryPostgresql) UpdateCampaignBudget(
	ctx context.Context,
	exec Executor,
	campaignId uuid.UUID,
	budget float64,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_CAMPAIGNS).
			Set("budget", budget).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": campaignId}),
	)
}

func (repo *CampaignRepositoryPostgresql) UpdateCampaignStatus(
	ctx context.Context,
	exec Executor,
	campaignId uuid.UUID,
	status models.CampaignStatus,
) error {
	if err := validateExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_CAMPAIGNS).
			Set("status", status).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": campaignId}),
	)
}
