package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/dto"
	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/pure_utils"
	"github.com/cmis/automation-backend/usecases"
	"github.com/cmis/automation-backend/utils"
)

type RuleUriInput struct {
	RuleId string `uri:"rule_id" binding:"required,uuid"`
}

func handleListAutomationRules(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}

		params := struct {
			EntityType string `form:"entity_type" binding:"omitempty,oneof=campaign ad_set ad"`
			Status     string `form:"status" binding:"omitempty,oneof=draft active paused archived"`
			RuleType   string `form:"rule_type"`
		}{}
		if err := c.ShouldBind(&params); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		filters := models.AutomationRuleFilters{}
		if params.EntityType != "" {
			filters.EntityType = pure_utils.Ptr(models.EntityType(params.EntityType))
		}
		if params.Status != "" {
			filters.Status = pure_utils.Ptr(models.RuleStatus(params.Status))
		}
		if params.RuleType != "" {
			ruleType, err := models.RuleTypeFrom(params.RuleType)
			if presentError(ctx, c, err) {
				return
			}
			filters.RuleType = &ruleType
		}

		usecase := uc.NewRuleUsecase()
		rules, err := usecase.ListRules(ctx, organizationId, filters)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"automation_rules": pure_utils.Map(rules, dto.AdaptAutomationRuleDto)})
	}
}

func handlePostAutomationRule(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}

		var body dto.CreateAutomationRuleBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		input, err := dto.AdaptCreateAutomationRuleInput(body, organizationId)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewRuleUsecase()
		rule, err := usecase.CreateRule(ctx, input)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"automation_rule": dto.AdaptAutomationRuleDto(rule)})
	}
}

func handleGetAutomationRule(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var ruleInput RuleUriInput
		if err := c.ShouldBindUri(&ruleInput); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		usecase := uc.NewRuleUsecase()
		rule, err := usecase.GetRule(ctx, organizationId, uuid.MustParse(ruleInput.RuleId))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"automation_rule": dto.AdaptAutomationRuleDto(rule)})
	}
}

func handlePatchAutomationRule(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var ruleInput RuleUriInput
		if err := c.ShouldBindUri(&ruleInput); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		var body dto.UpdateAutomationRuleBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		input, err := dto.AdaptUpdateAutomationRuleInput(body, uuid.MustParse(ruleInput.RuleId))
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewRuleUsecase()
		rule, err := usecase.UpdateRule(ctx, organizationId, input)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"automation_rule": dto.AdaptAutomationRuleDto(rule)})
	}
}

func handleDeleteAutomationRule(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var ruleInput RuleUriInput
		if err := c.ShouldBindUri(&ruleInput); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		usecase := uc.NewRuleUsecase()
		if presentError(ctx, c, usecase.DeleteRule(ctx, organizationId, uuid.MustParse(ruleInput.RuleId))) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleTransitionAutomationRule(uc usecases.Usecases, action string) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var ruleInput RuleUriInput
		if err := c.ShouldBindUri(&ruleInput); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		event, err := models.BulkRuleActionFrom(action)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewRuleUsecase()
		rule, err := usecase.TransitionRule(ctx, organizationId, uuid.MustParse(ruleInput.RuleId), event)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"automation_rule": dto.AdaptAutomationRuleDto(rule)})
	}
}

func handleDuplicateAutomationRule(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var ruleInput RuleUriInput
		if err := c.ShouldBindUri(&ruleInput); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		usecase := uc.NewRuleUsecase()
		rule, err := usecase.DuplicateRule(ctx, organizationId, uuid.MustParse(ruleInput.RuleId))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"automation_rule": dto.AdaptAutomationRuleDto(rule)})
	}
}

func handleBulkRuleAction(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var body dto.BulkRuleActionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		event, err := models.BulkRuleActionFrom(body.Action)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}

		usecase := uc.NewRuleUsecase()
		result, err := usecase.BulkTransitionRules(ctx, organizationId, body.RuleIds, event)
		if presentError(ctx, c, err) {
			return
		}

		failed := make(map[string]string, len(result.Failed))
		for ruleId, reason := range result.Failed {
			failed[ruleId.String()] = reason
		}
		c.JSON(http.StatusOK, dto.BulkTransitionResultDto{
			UpdatedCount: result.UpdatedCount,
			Failed:       failed,
		})
	}
}

func handleTestAutomationRule(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var ruleInput RuleUriInput
		if err := c.ShouldBindUri(&ruleInput); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		var body dto.TestRuleBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		usecase := uc.NewRuleUsecase()
		evaluation, err := usecase.TestRule(ctx, organizationId, uuid.MustParse(ruleInput.RuleId), body.TestData)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptRuleEvaluationDto(evaluation))
	}
}

func handleListRuleExecutions(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var ruleInput RuleUriInput
		if err := c.ShouldBindUri(&ruleInput); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		params := struct {
			Status string `form:"status" binding:"omitempty,oneof=applied partially_failed failed cancelled"`
			Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
			Offset int    `form:"offset" binding:"omitempty,min=0"`
		}{}
		if err := c.ShouldBind(&params); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		filters := models.RuleExecutionFilters{Limit: params.Limit, Offset: params.Offset}
		if params.Status != "" {
			filters.Status = pure_utils.Ptr(models.ExecutionStatus(params.Status))
		}

		usecase := uc.NewRuleUsecase()
		executions, err := usecase.ListRuleExecutions(ctx, organizationId, uuid.MustParse(ruleInput.RuleId), filters)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"executions": pure_utils.Map(executions, dto.AdaptRuleExecutionDto)})
	}
}

func handleRuleAnalytics(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}

		params := struct {
			Days int `form:"days" binding:"omitempty,min=1,max=365"`
		}{}
		if err := c.ShouldBind(&params); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		usecase := uc.NewRuleUsecase()
		analytics, err := usecase.RuleAnalytics(ctx, organizationId, params.Days)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"analytics": dto.AdaptRuleAnalyticsDto(analytics)})
	}
}
