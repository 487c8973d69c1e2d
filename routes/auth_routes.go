package routes

import (
	"github.com/BerniceZTT/works_end/controllers"
	"github.com/BerniceZTT/works_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证路由，登录由统一身份平台负责，这里只校验令牌
func RegisterAuthRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")

	auth.GET("/validate", middleware.AuthMiddleware(), controllers.ValidateToken)
}
