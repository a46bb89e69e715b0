package worker_jobs

import (
	"context"

	"github.com/riverqueue/river"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/usecases"
	"github.com/cmis/automation-backend/utils"
)

type AutomationCycleWorker struct {
	river.WorkerDefaults[models.AutomationCycleArgs]

	cycleUsecase usecases.AutomationCycleUsecase
}

func NewAutomationCycleWorker(cycleUsecase usecases.AutomationCycleUsecase) *AutomationCycleWorker {
	return &AutomationCycleWorker{
		cycleUsecase: cycleUsecase,
	}
}

func (w AutomationCycleWorker) Work(ctx context.Context, job *river.Job[models.AutomationCycleArgs]) error {
	summaries, err := w.cycleUsecase.RunAutomationCycle(ctx, job.Args.OrgId)
	if err != nil {
		return err
	}

	applied, skipped, failed := 0, 0, 0
	for _, summary := range summaries {
		switch summary.Outcome {
		case models.CycleOutcomeApplied, models.CycleOutcomePartiallyFailed:
			applied++
		case models.CycleOutcomeSkippedLock, models.CycleOutcomeSkippedLimit,
			models.CycleOutcomeCancelled:
			skipped++
		case models.CycleOutcomeFailed:
			failed++
		}
	}
	utils.LoggerFromContext(ctx).InfoContext(ctx, "Automation cycle done",
		"org_id", job.Args.OrgId, "rules", len(summaries),
		"applied", applied, "skipped", skipped, "failed", failed)
	return nil
}
