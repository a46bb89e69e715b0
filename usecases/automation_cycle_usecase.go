package usecases

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
	"github.com/cmis/automation-backend/usecases/rule_eval"
	"github.com/cmis/automation-backend/utils"
)

// AutomationCycleUsecase is the orchestration sequencer: it owns the effects
// around the pure evaluator, the per-rule mutual exclusion, the rate limits
// and the execution audit trail.
type AutomationCycleUsecase struct {
	executorFactory     executor_factory.ExecutorFactory
	ruleRepository      repositories.AutomationRuleRepository
	executionRepository repositories.RuleExecutionRepository
	campaignRepository  repositories.CampaignRepository
	ruleLockRepository  repositories.RuleLockRepository
	dispatcher          actionDispatcher
}

// RunAutomationCycle processes one org: lifecycle sweep over campaigns, then
// every evaluable rule in priority order. Rules never abort each other; each
// contributes one summary.
func (usecase *AutomationCycleUsecase) RunAutomationCycle(
	ctx context.Context,
	organizationId uuid.UUID,
) ([]models.ExecutionSummary, error) {
	logger := utils.LoggerFromContext(ctx)
	exec := usecase.executorFactory.NewExecutor()

	campaigns, err := usecase.campaignRepository.ListCampaigns(ctx, exec, organizationId)
	if err != nil {
		return nil, err
	}

	campaigns = usecase.sweepCampaignLifecycles(ctx, campaigns)

	rules, err := usecase.ruleRepository.ListEvaluableRules(ctx, exec, organizationId)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Starting automation cycle",
		"org_id", organizationId, "rules", len(rules), "campaigns", len(campaigns))

	summaries := make([]models.ExecutionSummary, 0, len(rules))
	for _, rule := range rules {
		summaries = append(summaries, usecase.runRuleCycle(ctx, rule, campaigns))
	}
	return summaries, nil
}

// sweepCampaignLifecycles applies schedule-driven transitions before rules
// run: scheduled campaigns whose start date passed go active, active
// campaigns past their end date complete, active campaigns with exhausted
// budgets pause. Returns the campaign list with the new statuses so rules
// evaluate fresh state.
func (usecase *AutomationCycleUsecase) sweepCampaignLifecycles(
	ctx context.Context,
	campaigns []models.Campaign,
) []models.Campaign {
	logger := utils.LoggerFromContext(ctx)
	now := time.Now()
	exec := usecase.executorFactory.NewExecutor()

	for i, campaign := range campaigns {
		var newStatus models.CampaignStatus
		var reason string

		switch {
		case campaign.Status == models.CampaignStatusScheduled &&
			campaign.StartDate != nil && !campaign.StartDate.After(now):
			newStatus, reason = models.CampaignStatusActive, "scheduled start date reached"
		case campaign.Status == models.CampaignStatusActive &&
			campaign.EndDate != nil && campaign.EndDate.Before(now):
			newStatus, reason = models.CampaignStatusCompleted, "end date passed"
		case campaign.Status == models.CampaignStatusActive &&
			campaign.Budget > 0 && campaign.Metrics.Spend >= campaign.Budget:
			newStatus, reason = models.CampaignStatusPaused, "budget exhausted"
		default:
			continue
		}

		if err := usecase.campaignRepository.UpdateCampaignStatus(ctx, exec, campaign.Id, newStatus); err != nil {
			logger.ErrorContext(ctx, "Campaign lifecycle transition failed",
				"campaign_id", campaign.Id, "to", newStatus, "error", err.Error())
			continue
		}
		logger.InfoContext(ctx, "Campaign lifecycle transition",
			"campaign_id", campaign.Id, "from", campaign.Status, "to", newStatus, "reason", reason)
		campaigns[i].Status = newStatus
	}
	return campaigns
}

func (usecase *AutomationCycleUsecase) runRuleCycle(
	ctx context.Context,
	rule models.AutomationRule,
	campaigns []models.Campaign,
) models.ExecutionSummary {
	logger := utils.LoggerFromContext(ctx)
	summary := models.ExecutionSummary{RuleId: rule.Id, RuleName: rule.Name}

	lock, acquired, err := usecase.ruleLockRepository.TryLockRule(ctx, rule.Id)
	if err != nil {
		summary.Outcome = models.CycleOutcomeFailed
		summary.Detail = err.Error()
		return summary
	}
	if !acquired {
		// Another cycle is already working this rule, e.g. a manual trigger
		// overlapping a scheduler tick. Not an error.
		logger.InfoContext(ctx, "Rule execution skipped, lock already held",
			"rule_id", rule.Id, "error", models.ErrConcurrentExecutionSkipped)
		summary.Outcome = models.CycleOutcomeSkippedLock
		return summary
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to release rule lock",
				"rule_id", rule.Id, "error", err.Error())
		}
	}()

	now := time.Now()
	canExecute, err := usecase.canExecuteNow(ctx, rule, now)
	if err != nil {
		summary.Outcome = models.CycleOutcomeFailed
		summary.Detail = err.Error()
		return summary
	}
	if !canExecute {
		summary.Outcome = models.CycleOutcomeSkippedLimit
		return summary
	}

	startedAt := time.Now()
	var matchedConditions []models.Condition
	var outcomes []models.ActionOutcome
	degraded := false

	for _, campaign := range targetCampaigns(rule, campaigns) {
		evaluation := rule_eval.EvaluateRule(ctx, rule, campaign.MetricsSnapshot())
		degraded = degraded || evaluation.Degraded
		if !evaluation.Matched {
			continue
		}
		matchedConditions = append(matchedConditions, evaluation.MatchedConditions...)
		outcomes = append(outcomes,
			usecase.dispatcher.DispatchActions(ctx, rule, campaign, evaluation.FiredActions)...)
	}

	if len(outcomes) == 0 {
		if degraded {
			summary.Outcome = models.CycleOutcomeDegraded
			return summary
		}
		summary.Outcome = models.CycleOutcomeNotMatched
		return summary
	}

	status := aggregateExecutionStatus(outcomes)
	executionId := uuid.New()
	err = usecase.executorFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		err := usecase.executionRepository.CreateRuleExecution(ctx, tx,
			models.CreateRuleExecutionInput{
				RuleId:            rule.Id,
				OrganizationId:    rule.OrganizationId,
				Status:            status,
				MatchedConditions: matchedConditions,
				ActionsTaken:      outcomes,
				ErrorDetail:       firstActionError(outcomes),
				ElapsedMs:         time.Since(startedAt).Milliseconds(),
			}, executionId)
		if err != nil {
			return err
		}
		return usecase.ruleRepository.RecordRuleExecutionCounters(ctx, tx, rule.Id,
			status == models.ExecutionStatusApplied, now)
	})
	if err != nil {
		summary.Outcome = models.CycleOutcomeFailed
		summary.Detail = errors.Wrap(err, "writing execution record").Error()
		return summary
	}

	summary.ExecutionId = &executionId
	switch status {
	case models.ExecutionStatusApplied:
		summary.Outcome = models.CycleOutcomeApplied
	case models.ExecutionStatusPartiallyFailed:
		summary.Outcome = models.CycleOutcomePartiallyFailed
	case models.ExecutionStatusCancelled:
		summary.Outcome = models.CycleOutcomeCancelled
	default:
		summary.Outcome = models.CycleOutcomeFailed
		summary.Detail = firstActionError(outcomes)
	}
	return summary
}

func (usecase *AutomationCycleUsecase) canExecuteNow(
	ctx context.Context,
	rule models.AutomationRule,
	now time.Time,
) (bool, error) {
	if rule.CooldownMinutes > 0 && rule.LastExecutedAt != nil {
		cooldownEnd := rule.LastExecutedAt.Add(time.Duration(rule.CooldownMinutes) * time.Minute)
		if now.Before(cooldownEnd) {
			return false, nil
		}
	}
	if rule.MaxExecutionsPerDay > 0 {
		exec := usecase.executorFactory.NewExecutor()
		count, err := usecase.executionRepository.CountRuleExecutionsSince(ctx, exec,
			rule.Id, now.Add(-24*time.Hour))
		if err != nil {
			return false, err
		}
		if count >= rule.MaxExecutionsPerDay {
			return false, nil
		}
	}
	return true, nil
}

// targetCampaigns narrows the org's campaigns to what the rule is scoped to:
// a single entity when entity_id is set, every evaluable campaign otherwise.
func targetCampaigns(rule models.AutomationRule, campaigns []models.Campaign) []models.Campaign {
	if rule.EntityId != nil {
		for _, campaign := range campaigns {
			if campaign.Id == *rule.EntityId {
				return []models.Campaign{campaign}
			}
		}
		return nil
	}

	eligible := make([]models.Campaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		if campaign.Status == models.CampaignStatusActive ||
			campaign.Status == models.CampaignStatusScheduled {
			eligible = append(eligible, campaign)
		}
	}
	return eligible
}

// aggregateExecutionStatus folds per-action outcomes into the execution
// status. Applied means every action succeeded; a skipped action (cancellation
// between actions) is never a success, so a cycle with any skips is at best
// partially failed, and one where nothing ran at all is cancelled.
func aggregateExecutionStatus(outcomes []models.ActionOutcome) models.ExecutionStatus {
	succeeded, failed, skipped := 0, 0, 0
	for _, outcome := range outcomes {
		switch outcome.Status {
		case models.ActionOutcomeSuccess:
			succeeded++
		case models.ActionOutcomeFailure:
			failed++
		case models.ActionOutcomeSkipped:
			skipped++
		}
	}
	switch {
	case failed == 0 && skipped == 0:
		return models.ExecutionStatusApplied
	case succeeded == 0 && failed == 0:
		return models.ExecutionStatusCancelled
	case succeeded == 0:
		return models.ExecutionStatusFailed
	default:
		return models.ExecutionStatusPartiallyFailed
	}
}

func firstActionError(outcomes []models.ActionOutcome) string {
	for _, outcome := range outcomes {
		if outcome.Status == models.ActionOutcomeFailure {
			return outcome.Error
		}
	}
	return ""
}
