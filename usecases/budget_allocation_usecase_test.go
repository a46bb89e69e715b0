package usecases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
)

type allocationLogRepositoryFake struct {
	logs []models.CampaignAllocation
}

func (fake *allocationLogRepositoryFake) CreateBudgetAllocationLog(ctx context.Context,
	exec repositories.Executor, allocation models.CampaignAllocation, reason string,
	newLogId uuid.UUID,
) error {
	fake.logs = append(fake.logs, allocation)
	return nil
}

func (fake *allocationLogRepositoryFake) ListBudgetAllocationLogs(ctx context.Context,
	exec repositories.Executor, organizationId uuid.UUID, limit int,
) ([]models.BudgetAllocationLog, error) {
	return nil, nil
}

func buildBudgetAllocationUsecase(campaignRepo *campaignRepositoryFake) (
	*BudgetAllocationUsecase, *allocationLogRepositoryFake, *repositories.PlatformRepositoryFake,
) {
	logRepo := &allocationLogRepositoryFake{}
	platformRepo := repositories.NewPlatformRepositoryFake()
	usecase := &BudgetAllocationUsecase{
		executorFactory:         executor_factory.NewExecutorFactoryStub(),
		campaignRepository:      campaignRepo,
		allocationLogRepository: logRepo,
		platformRepository:      platformRepo,
	}
	return usecase, logRepo, platformRepo
}

func newBudgetsByCampaign(result models.BudgetAllocationResult) map[uuid.UUID]float64 {
	budgets := make(map[uuid.UUID]float64, len(result.Allocations))
	for _, allocation := range result.Allocations {
		budgets[allocation.CampaignId] = allocation.NewBudget
	}
	return budgets
}

// Simulation and application must compute the same split: only the side
// effects differ.
func TestSimulateAndAllocateComputeTheSameSplit(t *testing.T) {
	orgId := uuid.New()
	campaigns := []models.Campaign{
		{Id: uuid.New(), OrganizationId: orgId, Name: "A", Budget: 10,
			Status: models.CampaignStatusActive, Metrics: models.CampaignMetrics{Roi: 1}},
		{Id: uuid.New(), OrganizationId: orgId, Name: "B", Budget: 10,
			Status: models.CampaignStatusActive, Metrics: models.CampaignMetrics{Roi: 2}},
		{Id: uuid.New(), OrganizationId: orgId, Name: "C", Budget: 10,
			Status: models.CampaignStatusActive, Metrics: models.CampaignMetrics{Roi: 3}},
	}
	request := models.BudgetAllocationRequest{
		OrganizationId: orgId,
		TotalBudget:    600,
		Strategy:       models.StrategyPerformanceWeighted,
	}

	usecase, logRepo, platformRepo := buildBudgetAllocationUsecase(
		newCampaignRepositoryFake(campaigns...))

	simulated, err := usecase.SimulateBudgetAllocation(context.Background(), request)
	require.NoError(t, err)
	assert.True(t, simulated.Simulated)
	// Simulation writes nothing and calls no platform.
	assert.Empty(t, logRepo.logs)
	assert.Empty(t, platformRepo.Budgets)

	applied, err := usecase.AllocateBudget(context.Background(), request)
	require.NoError(t, err)
	assert.False(t, applied.Simulated)

	assert.Equal(t, newBudgetsByCampaign(simulated), newBudgetsByCampaign(applied))

	// Application persisted and synced exactly the simulated numbers.
	require.Len(t, logRepo.logs, 3)
	assert.Equal(t, newBudgetsByCampaign(simulated), platformRepo.Budgets)
}
