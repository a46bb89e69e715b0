package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories/dbmodels"
)

type OrganizationRepository interface {
	GetOrganizationById(ctx context.Context, exec Executor, organizationId uuid.UUID) (models.Organization, error)
	AllOrganizations(ctx context.Context, exec Executor) ([]models.Organization, error)
}

type OrganizationRepositoryPostgresql struct{}

func (repo *OrganizationRepositoryPostgresql) GetOrganizationById(
	ctx context.Context,
	exec Executor,
	organizationId uuid.UUID,
) (models.Organization, error) {
	if err := validateExecutor(exec); err != nil {
		return models.Organization{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectOrganizationColumns...).
			From(dbmodels.TABLE_ORGANIZATIONS).
			Where(squirrel.Eq{"id": organizationId}),
		dbmodels.AdaptOrganization,
	)
}

func (repo *OrganizationRepositoryPostgresql) AllOrganizations(
	ctx context.Context,
	exec Executor,
) ([]models.Organization, error) {
	if err := validateExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectOrganizationColumns...).
			From(dbmodels.TABLE_ORGANIZATIONS).
			OrderBy("created_at"),
		dbmodels.AdaptOrganization,
	)
}
