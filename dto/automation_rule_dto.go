package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/pure_utils"
)

type AutomationRuleDto struct {
	Id                  uuid.UUID          `json:"id"`
	OrganizationId      uuid.UUID          `json:"organization_id"`
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	RuleType            string             `json:"rule_type"`
	EntityType          string             `json:"entity_type"`
	EntityId            *uuid.UUID         `json:"entity_id,omitempty"`
	Conditions          []models.Condition `json:"conditions"`
	ConditionLogic      string             `json:"condition_logic"`
	Actions             []models.Action    `json:"actions"`
	Priority            int                `json:"priority"`
	Status              string             `json:"status"`
	Enabled             bool               `json:"enabled"`
	MaxExecutionsPerDay int                `json:"max_executions_per_day"`
	CooldownMinutes     int                `json:"cooldown_minutes"`
	ExecutionCount      int                `json:"execution_count"`
	SuccessCount        int                `json:"success_count"`
	FailureCount        int                `json:"failure_count"`
	LastExecutedAt      *time.Time         `json:"last_executed_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func AdaptAutomationRuleDto(rule models.AutomationRule) AutomationRuleDto {
	return AutomationRuleDto{
		Id:                  rule.Id,
		OrganizationId:      rule.OrganizationId,
		Name:                rule.Name,
		Description:         rule.Description,
		RuleType:            string(rule.RuleType),
		EntityType:          string(rule.EntityType),
		EntityId:            rule.EntityId,
		Conditions:          rule.Conditions,
		ConditionLogic:      string(rule.ConditionLogic),
		Actions:             rule.Actions,
		Priority:            rule.Priority,
		Status:              string(rule.Status),
		Enabled:             rule.Enabled,
		MaxExecutionsPerDay: rule.MaxExecutionsPerDay,
		CooldownMinutes:     rule.CooldownMinutes,
		ExecutionCount:      rule.ExecutionCount,
		SuccessCount:        rule.SuccessCount,
		FailureCount:        rule.FailureCount,
		LastExecutedAt:      rule.LastExecutedAt,
		CreatedAt:           rule.CreatedAt,
		UpdatedAt:           rule.UpdatedAt,
	}
}

type CreateAutomationRuleBody struct {
	Name                string             `json:"name" binding:"required"`
	Description         string             `json:"description"`
	RuleType            string             `json:"rule_type" binding:"required"`
	EntityType          string             `json:"entity_type" binding:"required"`
	EntityId            *uuid.UUID         `json:"entity_id"`
	Conditions          []models.Condition `json:"conditions"`
	ConditionLogic      string             `json:"condition_logic"`
	Actions             []models.Action    `json:"actions"`
	Priority            *int               `json:"priority"`
	Enabled             *bool              `json:"enabled"`
	MaxExecutionsPerDay int                `json:"max_executions_per_day"`
	CooldownMinutes     int                `json:"cooldown_minutes"`
}

const defaultRulePriority = 50

func AdaptCreateAutomationRuleInput(body CreateAutomationRuleBody, organizationId uuid.UUID) (
	models.CreateAutomationRuleInput, error,
) {
	ruleType, err := models.RuleTypeFrom(body.RuleType)
	if err != nil {
		return models.CreateAutomationRuleInput{}, err
	}
	entityType, err := models.EntityTypeFrom(body.EntityType)
	if err != nil {
		return models.CreateAutomationRuleInput{}, err
	}

	conditionLogic := models.ConditionLogicAnd
	if body.ConditionLogic != "" {
		conditionLogic, err = models.ConditionLogicFrom(body.ConditionLogic)
		if err != nil {
			return models.CreateAutomationRuleInput{}, err
		}
	}

	return models.CreateAutomationRuleInput{
		OrganizationId:      organizationId,
		Name:                body.Name,
		Description:         body.Description,
		RuleType:            ruleType,
		EntityType:          entityType,
		EntityId:            body.EntityId,
		Conditions:          body.Conditions,
		ConditionLogic:      conditionLogic,
		Actions:             body.Actions,
		Priority:            pure_utils.PtrValueOrDefault(body.Priority, defaultRulePriority),
		Enabled:             pure_utils.PtrValueOrDefault(body.Enabled, true),
		MaxExecutionsPerDay: body.MaxExecutionsPerDay,
		CooldownMinutes:     body.CooldownMinutes,
	}, nil
}

type UpdateAutomationRuleBody struct {
	Name                *string            `json:"name"`
	Description         *string            `json:"description"`
	Conditions          []models.Condition `json:"conditions"`
	ConditionLogic      *string            `json:"condition_logic"`
	Actions             []models.Action    `json:"actions"`
	Priority            *int               `json:"priority"`
	Enabled             *bool              `json:"enabled"`
	MaxExecutionsPerDay *int               `json:"max_executions_per_day"`
	CooldownMinutes     *int               `json:"cooldown_minutes"`
}

func AdaptUpdateAutomationRuleInput(body UpdateAutomationRuleBody, ruleId uuid.UUID) (
	models.UpdateAutomationRuleInput, error,
) {
	input := models.UpdateAutomationRuleInput{
		Id:                  ruleId,
		Name:                body.Name,
		Description:         body.Description,
		Conditions:          body.Conditions,
		Actions:             body.Actions,
		Priority:            body.Priority,
		Enabled:             body.Enabled,
		MaxExecutionsPerDay: body.MaxExecutionsPerDay,
		CooldownMinutes:     body.CooldownMinutes,
	}
	if body.ConditionLogic != nil {
		conditionLogic, err := models.ConditionLogicFrom(*body.ConditionLogic)
		if err != nil {
			return models.UpdateAutomationRuleInput{}, err
		}
		input.ConditionLogic = &conditionLogic
	}
	return input, nil
}

type BulkRuleActionBody struct {
	Action  string      `json:"action" binding:"required"`
	RuleIds []uuid.UUID `json:"rule_ids" binding:"required"`
}

type BulkTransitionResultDto struct {
	UpdatedCount int               `json:"updated_count"`
	Failed       map[string]string `json:"failed,omitempty"`
}

type RuleAnalyticsDto struct {
	TotalRules      int                  `json:"total_rules"`
	ActiveRules     int                  `json:"active_rules"`
	PausedRules     int                  `json:"paused_rules"`
	ArchivedRules   int                  `json:"archived_rules"`
	DraftRules      int                  `json:"draft_rules"`
	TotalExecutions int                  `json:"total_executions"`
	ByType          map[string]int       `json:"by_type"`
	TopPerforming   []RulePerformanceDto `json:"top_performing"`
}

type RulePerformanceDto struct {
	RuleId         uuid.UUID `json:"rule_id"`
	Name           string    `json:"name"`
	ExecutionCount int       `json:"execution_count"`
	SuccessCount   int       `json:"success_count"`
	FailureCount   int       `json:"failure_count"`
}

func AdaptRuleAnalyticsDto(analytics models.RuleAnalytics) RuleAnalyticsDto {
	byType := make(map[string]int, len(analytics.ByType))
	for ruleType, count := range analytics.ByType {
		byType[string(ruleType)] = count
	}
	topPerforming := make([]RulePerformanceDto, len(analytics.TopPerforming))
	for i, perf := range analytics.TopPerforming {
		topPerforming[i] = RulePerformanceDto{
			RuleId:         perf.RuleId,
			Name:           perf.Name,
			ExecutionCount: perf.ExecutionCount,
			SuccessCount:   perf.SuccessCount,
			FailureCount:   perf.FailureCount,
		}
	}
	return RuleAnalyticsDto{
		TotalRules:      analytics.TotalRules,
		ActiveRules:     analytics.ActiveRules,
		PausedRules:     analytics.PausedRules,
		ArchivedRules:   analytics.ArchivedRules,
		DraftRules:      analytics.DraftRules,
		TotalExecutions: analytics.TotalExecutions,
		ByType:          byType,
		TopPerforming:   topPerforming,
	}
}
