package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cmis/automation-backend/usecases"
	"github.com/cmis/automation-backend/utils"
)

func addRoutes(r *gin.Engine, uc usecases.Usecases) {
	r.GET("/liveness", handleLivenessProbe(uc))

	router := r.Group("/", utils.OrganizationMiddleware())

	router.GET("/automation-rules", handleListAutomationRules(uc))
	router.POST("/automation-rules", handlePostAutomationRule(uc))
	router.GET("/automation-rules/analytics", handleRuleAnalytics(uc))
	router.POST("/automation-rules/bulk", handleBulkRuleAction(uc))
	router.GET("/automation-rules/:rule_id", handleGetAutomationRule(uc))
	router.PATCH("/automation-rules/:rule_id", handlePatchAutomationRule(uc))
	router.DELETE("/automation-rules/:rule_id", handleDeleteAutomationRule(uc))
	router.POST("/automation-rules/:rule_id/activate", handleTransitionAutomationRule(uc, "activate"))
	router.POST("/automation-rules/:rule_id/pause", handleTransitionAutomationRule(uc, "pause"))
	router.POST("/automation-rules/:rule_id/duplicate", handleDuplicateAutomationRule(uc))
	router.POST("/automation-rules/:rule_id/test", handleTestAutomationRule(uc))
	router.GET("/automation-rules/:rule_id/executions", handleListRuleExecutions(uc))

	router.POST("/budget-allocations", handlePostBudgetAllocation(uc))
	router.POST("/budget-allocations/simulate", handleSimulateBudgetAllocation(uc))
	router.GET("/budget-allocations/history", handleBudgetAllocationHistory(uc))

	router.POST("/automation-cycle/run", handleRunAutomationCycle(uc))
}
