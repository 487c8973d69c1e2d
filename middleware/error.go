package middleware

import (
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 全局错误处理中间件，处理控制器通过 c.Error 上报但未响应的错误
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 已经写出响应的不重复处理
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		utils.HandleError(c, c.Errors.Last().Err)
	}
}
