package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmis/automation-backend/dto"
	"github.com/cmis/automation-backend/pure_utils"
	"github.com/cmis/automation-backend/usecases"
	"github.com/cmis/automation-backend/utils"
)

func handlePostBudgetAllocation(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var body dto.BudgetAllocationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		request, err := dto.AdaptBudgetAllocationRequest(body, organizationId)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewBudgetAllocationUsecase()
		result, err := usecase.AllocateBudget(ctx, request)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"budget_allocation": dto.AdaptBudgetAllocationResultDto(result)})
	}
}

func handleSimulateBudgetAllocation(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}
		var body dto.BudgetAllocationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		request, err := dto.AdaptBudgetAllocationRequest(body, organizationId)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewBudgetAllocationUsecase()
		result, err := usecase.SimulateBudgetAllocation(ctx, request)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"budget_allocation": dto.AdaptBudgetAllocationResultDto(result)})
	}
}

func handleBudgetAllocationHistory(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}

		params := struct {
			Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
		}{}
		if err := c.ShouldBind(&params); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		usecase := uc.NewBudgetAllocationUsecase()
		logs, err := usecase.AllocationHistory(ctx, organizationId, params.Limit)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": pure_utils.Map(logs, dto.AdaptBudgetAllocationLogDto)})
	}
}
