package usecases

import (
	"context"

	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
)

type OrganizationUsecase struct {
	executorFactory executor_factory.ExecutorFactory
	repository      repositories.OrganizationRepository
}

func (usecase OrganizationUsecase) GetOrganization(
	ctx context.Context,
	organizationId uuid.UUID,
) (models.Organization, error) {
	exec := usecase.executorFactory.NewExecutor()
	return usecase.repository.GetOrganizationById(ctx, exec, organizationId)
}

func (usecase OrganizationUsecase) AllOrganizations(ctx context.Context) ([]models.Organization, error) {
	exec := usecase.executorFactory.NewExecutor()
	return usecase.repository.AllOrganizations(ctx, exec)
}
