package routes

import (
	"github.com/BerniceZTT/works_end/controllers"
	"github.com/BerniceZTT/works_end/repository"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, proposals *controllers.ProposalController) {
	RegisterAuthRoutes(router)
	RegisterProposalRoutes(router, proposals)

	// 健康检查路由
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 数据库状态检查路由
	router.GET("/api/db-status", func(c *gin.Context) {
		if !repository.Connected() {
			utils.ErrorResponse(c, "数据库未连接", 503)
			return
		}
		status, err := repository.GetDatabaseStatus()
		if err != nil {
			utils.ErrorResponse(c, "获取数据库状态失败: "+err.Error(), 500)
			return
		}
		c.JSON(200, status)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
