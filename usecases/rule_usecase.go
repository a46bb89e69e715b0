package usecases

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/pure_utils"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
	"github.com/cmis/automation-backend/usecases/rule_eval"
)

const topPerformingRulesLimit = 5

type RuleUsecase struct {
	executorFactory     executor_factory.ExecutorFactory
	repository          repositories.AutomationRuleRepository
	executionRepository repositories.RuleExecutionRepository
}

// getRuleForOrganization loads a rule and hides other tenants' rules behind
// NotFoundError.
func (usecase *RuleUsecase) getRuleForOrganization(
	ctx context.Context,
	exec repositories.Executor,
	organizationId, ruleId uuid.UUID,
) (models.AutomationRule, error) {
	rule, err := usecase.repository.GetAutomationRuleById(ctx, exec, ruleId)
	if err != nil {
		return models.AutomationRule{}, err
	}
	if rule.OrganizationId != organizationId {
		return models.AutomationRule{}, errors.Wrapf(models.NotFoundError,
			"rule %s does not belong to organization %s", ruleId, organizationId)
	}
	return rule, nil
}

func (usecase *RuleUsecase) CreateRule(
	ctx context.Context,
	input models.CreateAutomationRuleInput,
) (models.AutomationRule, error) {
	if err := input.Validate(); err != nil {
		return models.AutomationRule{}, err
	}
	if input.ConditionLogic == "" {
		input.ConditionLogic = models.ConditionLogicAnd
	}

	return executor_factory.TransactionReturnValue(ctx, usecase.executorFactory,
		func(tx repositories.Transaction) (models.AutomationRule, error) {
			newRuleId := uuid.New()
			if err := usecase.repository.CreateAutomationRule(ctx, tx, input, newRuleId); err != nil {
				return models.AutomationRule{}, err
			}
			return usecase.repository.GetAutomationRuleById(ctx, tx, newRuleId)
		})
}

func (usecase *RuleUsecase) GetRule(
	ctx context.Context,
	organizationId, ruleId uuid.UUID,
) (models.AutomationRule, error) {
	exec := usecase.executorFactory.NewExecutor()
	return usecase.getRuleForOrganization(ctx, exec, organizationId, ruleId)
}

func (usecase *RuleUsecase) ListRules(
	ctx context.Context,
	organizationId uuid.UUID,
	filters models.AutomationRuleFilters,
) ([]models.AutomationRule, error) {
	exec := usecase.executorFactory.NewExecutor()
	return usecase.repository.ListAutomationRules(ctx, exec, organizationId, filters)
}

func (usecase *RuleUsecase) UpdateRule(
	ctx context.Context,
	organizationId uuid.UUID,
	input models.UpdateAutomationRuleInput,
) (models.AutomationRule, error) {
	for _, condition := range input.Conditions {
		if err := condition.Validate(); err != nil {
			return models.AutomationRule{}, err
		}
	}
	for _, action := range input.Actions {
		if err := action.Validate(); err != nil {
			return models.AutomationRule{}, err
		}
	}
	if input.Priority != nil && (*input.Priority < 1 || *input.Priority > 100) {
		return models.AutomationRule{}, errors.Wrap(models.BadParameterError,
			"priority must be between 1 and 100")
	}

	return executor_factory.TransactionReturnValue(ctx, usecase.executorFactory,
		func(tx repositories.Transaction) (models.AutomationRule, error) {
			rule, err := usecase.getRuleForOrganization(ctx, tx, organizationId, input.Id)
			if err != nil {
				return models.AutomationRule{}, err
			}
			if rule.Status == models.RuleStatusArchived {
				return models.AutomationRule{}, errors.Wrap(models.ErrRuleArchived,
					"archived rules cannot be updated")
			}
			if err := usecase.repository.UpdateAutomationRule(ctx, tx, input); err != nil {
				return models.AutomationRule{}, err
			}
			return usecase.repository.GetAutomationRuleById(ctx, tx, input.Id)
		})
}

// TransitionRule applies a lifecycle event through the pure state machine
// before anything is persisted, so illegal transitions never reach the
// database. Activation re-enables the rule, archiving disables it.
func (usecase *RuleUsecase) TransitionRule(
	ctx context.Context,
	organizationId, ruleId uuid.UUID,
	event models.RuleEvent,
) (models.AutomationRule, error) {
	return executor_factory.TransactionReturnValue(ctx, usecase.executorFactory,
		func(tx repositories.Transaction) (models.AutomationRule, error) {
			rule, err := usecase.getRuleForOrganization(ctx, tx, organizationId, ruleId)
			if err != nil {
				return models.AutomationRule{}, err
			}

			newStatus, err := rule.Status.Transition(event)
			if err != nil {
				return models.AutomationRule{}, err
			}
			if err := usecase.repository.UpdateAutomationRuleStatus(ctx, tx, ruleId, newStatus); err != nil {
				return models.AutomationRule{}, err
			}

			var enabled *bool
			switch event {
			case models.RuleEventActivate:
				enabled = pure_utils.Ptr(true)
			case models.RuleEventArchive:
				enabled = pure_utils.Ptr(false)
			}
			if enabled != nil {
				err = usecase.repository.UpdateAutomationRule(ctx, tx, models.UpdateAutomationRuleInput{
					Id:      ruleId,
					Enabled: enabled,
				})
				if err != nil {
					return models.AutomationRule{}, err
				}
			}
			return usecase.repository.GetAutomationRuleById(ctx, tx, ruleId)
		})
}

// DuplicateRule copies a rule as a disabled draft named "<name> (Copy)".
func (usecase *RuleUsecase) DuplicateRule(
	ctx context.Context,
	organizationId, ruleId uuid.UUID,
) (models.AutomationRule, error) {
	return executor_factory.TransactionReturnValue(ctx, usecase.executorFactory,
		func(tx repositories.Transaction) (models.AutomationRule, error) {
			rule, err := usecase.getRuleForOrganization(ctx, tx, organizationId, ruleId)
			if err != nil {
				return models.AutomationRule{}, err
			}

			newRuleId := uuid.New()
			input := models.CreateAutomationRuleInput{
				OrganizationId:      organizationId,
				Name:                rule.Name + " (Copy)",
				Description:         rule.Description,
				RuleType:            rule.RuleType,
				EntityType:          rule.EntityType,
				EntityId:            rule.EntityId,
				Conditions:          rule.Conditions,
				ConditionLogic:      rule.ConditionLogic,
				Actions:             rule.Actions,
				Priority:            rule.Priority,
				Enabled:             false,
				MaxExecutionsPerDay: rule.MaxExecutionsPerDay,
				CooldownMinutes:     rule.CooldownMinutes,
			}
			if err := usecase.repository.CreateAutomationRule(ctx, tx, input, newRuleId); err != nil {
				return models.AutomationRule{}, err
			}
			return usecase.repository.GetAutomationRuleById(ctx, tx, newRuleId)
		})
}

// DeleteRule archives a rule. Drafts never ran, so there is no audit trail to
// preserve and they are removed outright.
func (usecase *RuleUsecase) DeleteRule(
	ctx context.Context,
	organizationId, ruleId uuid.UUID,
) error {
	return usecase.executorFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		rule, err := usecase.getRuleForOrganization(ctx, tx, organizationId, ruleId)
		if err != nil {
			return err
		}
		if rule.Status == models.RuleStatusDraft {
			return usecase.repository.DeleteAutomationRule(ctx, tx, ruleId)
		}

		newStatus, err := rule.Status.Transition(models.RuleEventArchive)
		if err != nil {
			return err
		}
		if err := usecase.repository.UpdateAutomationRuleStatus(ctx, tx, ruleId, newStatus); err != nil {
			return err
		}
		return usecase.repository.UpdateAutomationRule(ctx, tx, models.UpdateAutomationRuleInput{
			Id:      ruleId,
			Enabled: pure_utils.Ptr(false),
		})
	})
}

type BulkTransitionResult struct {
	UpdatedCount int
	Failed       map[uuid.UUID]string
}

// BulkTransitionRules applies one lifecycle event to many rules. Rules that
// reject the transition are reported, not fatal.
func (usecase *RuleUsecase) BulkTransitionRules(
	ctx context.Context,
	organizationId uuid.UUID,
	ruleIds []uuid.UUID,
	event models.RuleEvent,
) (BulkTransitionResult, error) {
	if len(ruleIds) == 0 {
		return BulkTransitionResult{}, errors.Wrap(models.BadParameterError, "rule_ids is required")
	}

	result := BulkTransitionResult{Failed: make(map[uuid.UUID]string)}
	for _, ruleId := range ruleIds {
		if _, err := usecase.TransitionRule(ctx, organizationId, ruleId, event); err != nil {
			result.Failed[ruleId] = err.Error()
			continue
		}
		result.UpdatedCount++
	}
	return result, nil
}

// TestRule evaluates a rule against caller-provided data without dispatching
// anything and without writing an execution record.
func (usecase *RuleUsecase) TestRule(
	ctx context.Context,
	organizationId, ruleId uuid.UUID,
	testData map[string]any,
) (models.RuleEvaluation, error) {
	exec := usecase.executorFactory.NewExecutor()
	rule, err := usecase.getRuleForOrganization(ctx, exec, organizationId, ruleId)
	if err != nil {
		return models.RuleEvaluation{}, err
	}
	return rule_eval.EvaluateRule(ctx, rule, testData), nil
}

func (usecase *RuleUsecase) ListRuleExecutions(
	ctx context.Context,
	organizationId, ruleId uuid.UUID,
	filters models.RuleExecutionFilters,
) ([]models.RuleExecution, error) {
	exec := usecase.executorFactory.NewExecutor()
	if _, err := usecase.getRuleForOrganization(ctx, exec, organizationId, ruleId); err != nil {
		return nil, err
	}
	return usecase.executionRepository.ListRuleExecutions(ctx, exec, ruleId, filters)
}

// RuleAnalytics aggregates rule activity for the org. days > 0 limits the
// execution count to a trailing window; rule counts are always current state.
func (usecase *RuleUsecase) RuleAnalytics(
	ctx context.Context,
	organizationId uuid.UUID,
	days int,
) (models.RuleAnalytics, error) {
	exec := usecase.executorFactory.NewExecutor()

	byStatus, err := usecase.repository.CountRulesByStatus(ctx, exec, organizationId)
	if err != nil {
		return models.RuleAnalytics{}, err
	}
	byType, err := usecase.repository.CountRulesByType(ctx, exec, organizationId)
	if err != nil {
		return models.RuleAnalytics{}, err
	}

	var since *time.Time
	if days > 0 {
		since = pure_utils.Ptr(time.Now().AddDate(0, 0, -days))
	}
	totalExecutions, err := usecase.executionRepository.CountExecutionsForOrganization(ctx, exec,
		organizationId, since)
	if err != nil {
		return models.RuleAnalytics{}, err
	}
	topPerforming, err := usecase.repository.TopPerformingRules(ctx, exec, organizationId,
		topPerformingRulesLimit)
	if err != nil {
		return models.RuleAnalytics{}, err
	}

	totalRules := 0
	for _, count := range byStatus {
		totalRules += count
	}
	return models.RuleAnalytics{
		TotalRules:      totalRules,
		ActiveRules:     byStatus[models.RuleStatusActive],
		PausedRules:     byStatus[models.RuleStatusPaused],
		ArchivedRules:   byStatus[models.RuleStatusArchived],
		DraftRules:      byStatus[models.RuleStatusDraft],
		TotalExecutions: totalExecutions,
		ByType:          byType,
		TopPerforming:   topPerforming,
	}, nil
}

