package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmis/automation-backend/dto"
	"github.com/cmis/automation-backend/pure_utils"
	"github.com/cmis/automation-backend/usecases"
	"github.com/cmis/automation-backend/utils"
)

// handleRunAutomationCycle triggers one evaluation cycle for the calling org,
// synchronously. The scheduled path goes through the task queue instead.
func handleRunAutomationCycle(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, err := utils.OrganizationIdFromContext(ctx)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAutomationCycleUsecase()
		summaries, err := usecase.RunAutomationCycle(ctx, organizationId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": pure_utils.Map(summaries, dto.AdaptExecutionSummaryDto)})
	}
}
