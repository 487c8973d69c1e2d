package routes

import (
	"github.com/BerniceZTT/works_end/controllers"
	"github.com/BerniceZTT/works_end/middleware"
	"github.com/BerniceZTT/works_end/models"

	"github.com/gin-gonic/gin"
)

// RegisterProposalRoutes 工程提案路由
func RegisterProposalRoutes(router *gin.Engine, pc *controllers.ProposalController) {
	proposalGroup := router.Group("/api/proposals")

	proposalGroup.Use(middleware.AuthMiddleware())

	proposalGroup.POST("/", middleware.RequireRole(models.UserRoleSDO), pc.Create)
	proposalGroup.GET("/:id", pc.Get)
	proposalGroup.PUT("/:id/status", middleware.RequireRole(models.UserRoleENGINEER, models.UserRoleSDO), pc.SetStatus)

	proposalGroup.POST("/:id/progress", middleware.RequireRole(models.UserRoleENGINEER), pc.AppendProgress)
	proposalGroup.DELETE("/:id/progress/:entryId", middleware.RequireRole(models.UserRoleENGINEER), pc.RemoveProgress)

	proposalGroup.POST("/:id/approvals/:stage/:action", middleware.RequireRole(models.UserRoleAPPROVER), pc.Decide)
	proposalGroup.POST("/:id/tender", middleware.RequireRole(models.UserRoleSDO), pc.RecordTender)
	proposalGroup.POST("/:id/work-order", middleware.RequireRole(models.UserRoleSDO), pc.RecordWorkOrder)
}
