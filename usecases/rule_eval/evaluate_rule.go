package rule_eval

import (
	"context"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/utils"
)

// EvaluateRule decides whether a rule fires against an entity metrics
// snapshot. It is a pure function of its inputs: no persistence, no dispatch.
// MatchedConditions always lists every condition that individually evaluated
// true, so a dry run stays explainable even when the rule as a whole does not
// match.
//
// An empty condition list never matches: an unconfigured rule must not fire.
func EvaluateRule(ctx context.Context, rule models.AutomationRule, entityData map[string]any) models.RuleEvaluation {
	evaluation := models.RuleEvaluation{}
	if len(rule.Conditions) == 0 {
		return evaluation
	}

	logger := utils.LoggerFromContext(ctx)

	allMatched := true
	anyMatched := false
	for i, condition := range rule.Conditions {
		matched, wellFormed := EvaluateCondition(condition, entityData)
		if !wellFormed {
			evaluation.Degraded = true
			logger.WarnContext(ctx, "Malformed rule condition treated as false",
				"rule_id", rule.Id, "condition_index", i)
		}
		if matched {
			anyMatched = true
			evaluation.MatchedConditions = append(evaluation.MatchedConditions, condition)
		} else {
			allMatched = false
		}
	}

	switch rule.ConditionLogic {
	case models.ConditionLogicOr:
		evaluation.Matched = anyMatched
	default:
		evaluation.Matched = allMatched
	}

	if evaluation.Matched {
		evaluation.FiredActions = rule.Actions
	}
	return evaluation
}
