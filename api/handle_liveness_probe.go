package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmis/automation-backend/usecases"
)

func handleLivenessProbe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"app_name":    uc.AppName(),
			"api_version": uc.ApiVersion(),
		})
	}
}
