package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

type RuleExecutionDto struct {
	Id                uuid.UUID              `json:"id"`
	RuleId            uuid.UUID              `json:"rule_id"`
	OrganizationId    uuid.UUID              `json:"organization_id"`
	Status            string                 `json:"status"`
	MatchedConditions []models.Condition     `json:"matched_conditions"`
	ActionsTaken      []models.ActionOutcome `json:"actions_taken"`
	ErrorDetail       string                 `json:"error_detail,omitempty"`
	ElapsedMs         int64                  `json:"elapsed_ms"`
	ExecutedAt        time.Time              `json:"executed_at"`
}

func AdaptRuleExecutionDto(execution models.RuleExecution) RuleExecutionDto {
	return RuleExecutionDto{
		Id:                execution.Id,
		RuleId:            execution.RuleId,
		OrganizationId:    execution.OrganizationId,
		Status:            string(execution.Status),
		MatchedConditions: execution.MatchedConditions,
		ActionsTaken:      execution.ActionsTaken,
		ErrorDetail:       execution.ErrorDetail,
		ElapsedMs:         execution.ElapsedMs,
		ExecutedAt:        execution.ExecutedAt,
	}
}

type TestRuleBody struct {
	TestData map[string]any `json:"test_data" binding:"required"`
}

// RuleEvaluationDto is the dry-run response: what the rule would do against
// the submitted data, without dispatching anything.
type RuleEvaluationDto struct {
	WouldTrigger      bool               `json:"would_trigger"`
	MatchedConditions []models.Condition `json:"matched_conditions"`
	FiredActions      []models.Action    `json:"fired_actions"`
	Degraded          bool               `json:"degraded"`
}

func AdaptRuleEvaluationDto(evaluation models.RuleEvaluation) RuleEvaluationDto {
	return RuleEvaluationDto{
		WouldTrigger:      evaluation.Matched,
		MatchedConditions: evaluation.MatchedConditions,
		FiredActions:      evaluation.FiredActions,
		Degraded:          evaluation.Degraded,
	}
}

type ExecutionSummaryDto struct {
	RuleId      uuid.UUID  `json:"rule_id"`
	RuleName    string     `json:"rule_name"`
	Outcome     string     `json:"outcome"`
	ExecutionId *uuid.UUID `json:"execution_id,omitempty"`
	Detail      string     `json:"detail,omitempty"`
}

func AdaptExecutionSummaryDto(summary models.ExecutionSummary) ExecutionSummaryDto {
	return ExecutionSummaryDto{
		RuleId:      summary.RuleId,
		RuleName:    summary.RuleName,
		Outcome:     string(summary.Outcome),
		ExecutionId: summary.ExecutionId,
		Detail:      summary.Detail,
	}
}
