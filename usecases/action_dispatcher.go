package usecases

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
	"github.com/cmis/automation-backend/utils"
)

const (
	platformCallRetries   = 4
	platformRetryBaseWait = 500 * time.Millisecond
)

// actionDispatcher turns fired actions into effects on the platform and in
// the database. Actions run sequentially in rule order; a failing action is
// recorded and the next one still runs. Cancellation is honored between
// actions, never mid-action.
type actionDispatcher struct {
	executorFactory     executor_factory.ExecutorFactory
	campaignRepository  repositories.CampaignRepository
	platformRepository  repositories.PlatformRepository
	taskQueueRepository repositories.TaskQueueRepository
	budgetUsecase       *BudgetAllocationUsecase
}

func (dispatcher actionDispatcher) DispatchActions(
	ctx context.Context,
	rule models.AutomationRule,
	campaign models.Campaign,
	actions []models.Action,
) []models.ActionOutcome {
	outcomes := make([]models.ActionOutcome, 0, len(actions))

	for _, action := range actions {
		if ctx.Err() != nil {
			outcomes = append(outcomes, models.ActionOutcome{
				Action: action,
				Status: models.ActionOutcomeSkipped,
				Error:  "evaluation cycle cancelled",
			})
			continue
		}

		if err := dispatcher.dispatchOne(ctx, rule, campaign, action); err != nil {
			utils.LoggerFromContext(ctx).WarnContext(ctx, "Rule action failed",
				"rule_id", rule.Id, "action_type", action.Type, "error", err.Error())
			outcomes = append(outcomes, models.ActionOutcome{
				Action: action,
				Status: models.ActionOutcomeFailure,
				Error:  err.Error(),
			})
			continue
		}
		outcomes = append(outcomes, models.ActionOutcome{
			Action: action,
			Status: models.ActionOutcomeSuccess,
		})
	}
	return outcomes
}

func (dispatcher actionDispatcher) dispatchOne(
	ctx context.Context,
	rule models.AutomationRule,
	campaign models.Campaign,
	action models.Action,
) error {
	switch action.Type {
	case models.ActionPauseCampaign:
		if err := dispatcher.callPlatform(ctx, func() error {
			return dispatcher.platformRepository.PauseCampaign(ctx, campaign.Id)
		}); err != nil {
			return err
		}
		return dispatcher.campaignRepository.UpdateCampaignStatus(ctx,
			dispatcher.executorFactory.NewExecutor(), campaign.Id, models.CampaignStatusPaused)

	case models.ActionResumeCampaign:
		if err := dispatcher.callPlatform(ctx, func() error {
			return dispatcher.platformRepository.ResumeCampaign(ctx, campaign.Id)
		}); err != nil {
			return err
		}
		return dispatcher.campaignRepository.UpdateCampaignStatus(ctx,
			dispatcher.executorFactory.NewExecutor(), campaign.Id, models.CampaignStatusActive)

	case models.ActionAdjustBudget:
		newBudget, err := adjustedBudget(campaign.Budget, action.Params)
		if err != nil {
			return err
		}
		if err := dispatcher.callPlatform(ctx, func() error {
			return dispatcher.platformRepository.UpdateCampaignBudget(ctx, campaign.Id, newBudget)
		}); err != nil {
			return err
		}
		return dispatcher.campaignRepository.UpdateCampaignBudget(ctx,
			dispatcher.executorFactory.NewExecutor(), campaign.Id, newBudget)

	case models.ActionReallocateBudget:
		return dispatcher.reallocateBudget(ctx, rule, action.Params)

	case models.ActionSendNotification:
		return dispatcher.sendNotification(ctx, rule, action.Params)

	default:
		return errors.Wrapf(models.ErrUnknownActionType, "action type %q", action.Type)
	}
}

// callPlatform retries retryable platform failures with exponential backoff.
// Non-retryable failures surface immediately.
func (dispatcher actionDispatcher) callPlatform(ctx context.Context, call func() error) error {
	return retry.Do(
		call,
		retry.Context(ctx),
		retry.Attempts(platformCallRetries),
		retry.Delay(platformRetryBaseWait),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, models.ErrPlatformCallRetryable)
		}),
	)
}

// adjustedBudget resolves the adjust_budget params: either an absolute
// "budget" or a "change_percentage" relative to the current budget.
func adjustedBudget(currentBudget float64, params map[string]any) (float64, error) {
	if raw, ok := params["budget"]; ok {
		budget, ok := toPositiveFloat(raw)
		if !ok {
			return 0, errors.Wrap(models.BadParameterError, "budget param must be a positive number")
		}
		return budget, nil
	}
	if raw, ok := params["change_percentage"]; ok {
		pct, ok := toFloat(raw)
		if !ok {
			return 0, errors.Wrap(models.BadParameterError, "change_percentage param must be a number")
		}
		newBudget := currentBudget * (1 + pct/100)
		if newBudget < 0 {
			newBudget = 0
		}
		return newBudget, nil
	}
	return 0, errors.Wrap(models.BadParameterError,
		"adjust_budget requires a budget or change_percentage param")
}

func (dispatcher actionDispatcher) reallocateBudget(
	ctx context.Context,
	rule models.AutomationRule,
	params map[string]any,
) error {
	strategyName := models.StrategyPerformanceWeighted
	if raw, ok := params["strategy"].(string); ok {
		parsed, err := models.AllocationStrategyFrom(raw)
		if err != nil {
			return err
		}
		strategyName = parsed
	}
	totalBudget, ok := toPositiveFloat(params["total_budget"])
	if !ok {
		return errors.Wrap(models.BadParameterError,
			"reallocate_budget requires a positive total_budget param")
	}

	_, err := dispatcher.budgetUsecase.AllocateBudget(ctx, models.BudgetAllocationRequest{
		OrganizationId: rule.OrganizationId,
		TotalBudget:    totalBudget,
		Strategy:       strategyName,
	})
	return err
}

func (dispatcher actionDispatcher) sendNotification(
	ctx context.Context,
	rule models.AutomationRule,
	params map[string]any,
) error {
	if dispatcher.taskQueueRepository == nil {
		return errors.New("task queue is not configured")
	}

	var channels []string
	if raw, ok := params["channels"].([]any); ok {
		for _, channel := range raw {
			if s, ok := channel.(string); ok {
				channels = append(channels, s)
			}
		}
	}

	return dispatcher.executorFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		return dispatcher.taskQueueRepository.EnqueueRuleNotificationTask(ctx, tx,
			models.RuleNotificationArgs{
				OrgId:    rule.OrganizationId,
				RuleId:   rule.Id,
				RuleName: rule.Name,
				Channels: channels,
				Payload:  params,
			})
	})
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	}
	return 0, false
}

func toPositiveFloat(v any) (float64, bool) {
	f, ok := toFloat(v)
	return f, ok && f > 0
}
