package middleware

import (
	"net/http"
	"strings"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证中间件，验证通过后把 *models.CurrentUser 写入上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从请求头获取token
		authHeader := c.GetHeader("Authorization")

		utils.Logger.Debug().
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("authorization", getShortAuthHeader(authHeader)).
			Msg("验证请求")

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || token == "" {
			utils.Logger.Info().Msg("缺少Authorization头或格式错误")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "未授权访问",
				"code":    "MISSING_TOKEN",
			})
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Logger.Warn().Err(err).Msg("Token验证失败")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "无效的token: " + err.Error(),
				"code":    "INVALID_TOKEN",
			})
			return
		}

		user, err := utils.UserFromClaims(claims)
		if err != nil {
			utils.Logger.Warn().Interface("claims", claims).Msg("Token负载缺少必要字段")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Token缺少必要字段",
				"code":    "INVALID_TOKEN",
			})
			return
		}

		c.Set(utils.ContextUserKey, user)
		c.Next()
	}
}

// RequireRole 角色校验，超级管理员始终放行
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := utils.GetUser(c)
		if err != nil {
			utils.HandleError(c, utils.CreateUnauthorizedError())
			c.Abort()
			return
		}

		if !utils.HasRole(user.Role, roles...) {
			utils.Logger.Info().
				Str("username", user.Username).
				Str("role", string(user.Role)).
				Str("path", c.FullPath()).
				Msg("权限不足")
			utils.HandleError(c, utils.CreateForbiddenError(""))
			c.Abort()
			return
		}
		c.Next()
	}
}

// getShortAuthHeader 获取截断的授权头，保护敏感信息
func getShortAuthHeader(header string) string {
	if len(header) > 15 {
		return header[:15] + "..."
	}
	return header
}
