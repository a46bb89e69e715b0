package usecases

import (
	"context"
	"math"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/budget"
	"github.com/cmis/automation-backend/usecases/executor_factory"
	"github.com/cmis/automation-backend/utils"
)

const (
	// Budget changes below one percent are noise: not worth a platform call
	// or an audit line.
	budgetChangeThreshold = 0.01

	platformSyncMaxParallelism = 4
	allocationHistoryLimit     = 50
)

type BudgetAllocationUsecase struct {
	executorFactory         executor_factory.ExecutorFactory
	campaignRepository      repositories.CampaignRepository
	allocationLogRepository repositories.BudgetAllocationLogRepository
	platformRepository      repositories.PlatformRepository
}

// SimulateBudgetAllocation runs the allocation math without writing anything
// or touching the platform.
func (usecase *BudgetAllocationUsecase) SimulateBudgetAllocation(
	ctx context.Context,
	request models.BudgetAllocationRequest,
) (models.BudgetAllocationResult, error) {
	result, err := usecase.computeAllocation(ctx, request)
	if err != nil {
		return models.BudgetAllocationResult{}, err
	}
	result.Simulated = true
	return result, nil
}

// AllocateBudget computes the split, persists the new budgets and the audit
// log in one transaction, then syncs the changed budgets to the platform.
// The persisted state is the source of truth: a platform sync failure is
// reported but does not roll the allocation back.
func (usecase *BudgetAllocationUsecase) AllocateBudget(
	ctx context.Context,
	request models.BudgetAllocationRequest,
) (models.BudgetAllocationResult, error) {
	result, err := usecase.computeAllocation(ctx, request)
	if err != nil {
		return models.BudgetAllocationResult{}, err
	}

	changed := make([]models.CampaignAllocation, 0, len(result.Allocations))
	for _, allocation := range result.Allocations {
		if isSignificantBudgetChange(allocation) {
			changed = append(changed, allocation)
		}
	}

	err = usecase.executorFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		for _, allocation := range changed {
			err := usecase.campaignRepository.UpdateCampaignBudget(ctx, tx,
				allocation.CampaignId, allocation.NewBudget)
			if err != nil {
				return err
			}
			err = usecase.allocationLogRepository.CreateBudgetAllocationLog(ctx, tx,
				allocation, allocation.Rationale, uuid.New())
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.BudgetAllocationResult{}, err
	}

	if err := usecase.syncBudgetsToPlatform(ctx, changed); err != nil {
		return result, err
	}
	return result, nil
}

func (usecase *BudgetAllocationUsecase) AllocationHistory(
	ctx context.Context,
	organizationId uuid.UUID,
	limit int,
) ([]models.BudgetAllocationLog, error) {
	if limit <= 0 {
		limit = allocationHistoryLimit
	}
	exec := usecase.executorFactory.NewExecutor()
	return usecase.allocationLogRepository.ListBudgetAllocationLogs(ctx, exec, organizationId, limit)
}

func (usecase *BudgetAllocationUsecase) computeAllocation(
	ctx context.Context,
	request models.BudgetAllocationRequest,
) (models.BudgetAllocationResult, error) {
	exec := usecase.executorFactory.NewExecutor()
	campaigns, err := usecase.campaignRepository.ListAllocatableCampaigns(ctx, exec,
		request.OrganizationId)
	if err != nil {
		return models.BudgetAllocationResult{}, err
	}
	return budget.Allocate(campaigns, request.TotalBudget, request.Strategy, request.Constraints)
}

// syncBudgetsToPlatform pushes the applied budgets out with bounded
// parallelism, retrying retryable failures per campaign.
func (usecase *BudgetAllocationUsecase) syncBudgetsToPlatform(
	ctx context.Context,
	allocations []models.CampaignAllocation,
) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(platformSyncMaxParallelism)

	for _, allocation := range allocations {
		group.Go(func() error {
			err := retry.Do(
				func() error {
					return usecase.platformRepository.UpdateCampaignBudget(groupCtx,
						allocation.CampaignId, allocation.NewBudget)
				},
				retry.Context(groupCtx),
				retry.Attempts(platformCallRetries),
				retry.Delay(platformRetryBaseWait),
				retry.DelayType(retry.BackOffDelay),
				retry.LastErrorOnly(true),
				retry.RetryIf(func(err error) bool {
					return errors.Is(err, models.ErrPlatformCallRetryable)
				}),
			)
			if err != nil {
				utils.LoggerFromContext(ctx).ErrorContext(ctx,
					"Failed to sync campaign budget to platform",
					"campaign_id", allocation.CampaignId, "error", err.Error())
				return errors.Wrapf(err, "syncing budget for campaign %s", allocation.CampaignId)
			}
			return nil
		})
	}
	return group.Wait()
}

func isSignificantBudgetChange(allocation models.CampaignAllocation) bool {
	base := math.Max(allocation.PreviousBudget, 1)
	return math.Abs(allocation.Delta)/base > budgetChangeThreshold
}
