package usecases

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
	"github.com/cmis/automation-backend/utils"
)

const numberWorkersPerQueue = 5

// QueuesFromOrgs builds the river queue configuration, one queue per
// organization so a noisy tenant cannot starve the others.
func QueuesFromOrgs(
	ctx context.Context,
	orgsRepo repositories.OrganizationRepository,
	execGetter repositories.ExecutorGetter,
) (map[string]river.QueueConfig, error) {
	executorFactory := executor_factory.NewDbExecutorFactory(execGetter)
	orgs, err := orgsRepo.AllOrganizations(ctx, executorFactory.NewExecutor())
	if err != nil {
		return nil, err
	}

	queues := make(map[string]river.QueueConfig, len(orgs))
	for _, org := range orgs {
		queues[org.Id.String()] = river.QueueConfig{
			MaxWorkers: numberWorkersPerQueue,
		}
	}
	return queues, nil
}

// AutomationScheduler periodically enqueues one automation cycle job per
// organization. Deduplication of overlapping ticks is handled by the job
// uniqueness options, and per-rule overlap by the advisory locks.
type AutomationScheduler struct {
	interval            time.Duration
	organizationUsecase OrganizationUsecase
	taskQueueRepository repositories.TaskQueueRepository
}

func (usecases Usecases) NewAutomationScheduler(interval time.Duration) AutomationScheduler {
	return AutomationScheduler{
		interval:            interval,
		organizationUsecase: usecases.NewOrganizationUsecase(),
		taskQueueRepository: usecases.Repositories.TaskQueueRepository,
	}
}

func (s AutomationScheduler) Run(ctx context.Context) {
	logger := utils.LoggerFromContext(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		orgs, err := s.organizationUsecase.AllOrganizations(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to list organizations for scheduling",
				"error", err.Error())
			continue
		}
		for _, org := range orgs {
			if err := s.taskQueueRepository.EnqueueAutomationCycleTask(ctx, org.Id); err != nil {
				logger.ErrorContext(ctx, "Failed to enqueue automation cycle",
					"org_id", org.Id, "error", err.Error())
			}
		}
	}
}
