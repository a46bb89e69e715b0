package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/utils"
)

const (
	nbRetriesAutomationCycle = 3
	priorityAutomationCycle  = 2 // nb: higher number is lower priority (between 1 and 4)
	nbRetriesNotification    = 5
	priorityNotification     = 3
)

type TaskQueueRepository interface {
	EnqueueAutomationCycleTask(ctx context.Context, organizationId uuid.UUID) error
	EnqueueRuleNotificationTask(ctx context.Context, tx Transaction, args models.RuleNotificationArgs) error
}

type riverRepository struct {
	client *river.Client[pgx.Tx]
}

func NewTaskQueueRepository(client *river.Client[pgx.Tx]) TaskQueueRepository {
	return riverRepository{client: client}
}

func (r riverRepository) EnqueueAutomationCycleTask(
	ctx context.Context,
	organizationId uuid.UUID,
) error {
	res, err := r.client.Insert(ctx, models.AutomationCycleArgs{
		OrgId: organizationId,
	}, &river.InsertOpts{
		MaxAttempts: nbRetriesAutomationCycle,
		Priority:    priorityAutomationCycle,
		Queue:       organizationId.String(),
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		return err
	}
	logger := utils.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Enqueued automation cycle task",
		"org_id", organizationId, "job_id", res.Job.ID)
	return nil
}

func (r riverRepository) EnqueueRuleNotificationTask(
	ctx context.Context,
	tx Transaction,
	args models.RuleNotificationArgs,
) error {
	res, err := r.client.InsertTx(ctx, tx.RawTx(), args, &river.InsertOpts{
		MaxAttempts: nbRetriesNotification,
		Priority:    priorityNotification,
		Queue:       args.OrgId.String(),
	})
	if err != nil {
		return err
	}
	logger := utils.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Enqueued rule notification task",
		"rule_id", args.RuleId, "job_id", res.Job.ID)
	return nil
}
