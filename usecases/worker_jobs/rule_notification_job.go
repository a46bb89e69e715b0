package worker_jobs

import (
	"context"

	"github.com/riverqueue/river"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/utils"
)

// RuleNotificationWorker delivers "rule fired" events to the configured
// channels. Delivery is fire-and-forget from the rule's point of view: the
// action succeeded once the job was enqueued.
type RuleNotificationWorker struct {
	river.WorkerDefaults[models.RuleNotificationArgs]
}

func NewRuleNotificationWorker() *RuleNotificationWorker {
	return &RuleNotificationWorker{}
}

func (w RuleNotificationWorker) Work(ctx context.Context, job *river.Job[models.RuleNotificationArgs]) error {
	channels := job.Args.Channels
	if len(channels) == 0 {
		channels = []string{"email"}
	}

	// Channel delivery integrations plug in here. The event is logged so the
	// downstream alerting pipeline can pick it up.
	utils.LoggerFromContext(ctx).InfoContext(ctx, "Rule fired notification",
		"org_id", job.Args.OrgId,
		"rule_id", job.Args.RuleId,
		"rule_name", job.Args.RuleName,
		"channels", channels)
	return nil
}
