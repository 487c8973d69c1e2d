package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// bodyLogWriter 用于记录响应内容
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现 ResponseWriter 接口
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Logger 日志中间件
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		headers := make(map[string]string)
		for k, v := range c.Request.Header {
			if len(v) > 0 {
				headers[k] = v[0]
			}
		}

		// 文件上传请求体很大，只记录JSON请求体
		var requestBody interface{}
		if isJSONRequest(c) && c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			requestBody = string(raw)
		} else if c.Request.ContentLength > 0 {
			requestBody = "<" + c.ContentType() + ">"
		}

		blw := &bodyLogWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBufferString(""),
		}
		c.Writer = blw

		utils.LogApiRequest(method, path, c.Request.URL.Query(), requestBody, headers)

		c.Next()

		utils.LogApiResponse(method, path, c.Writer.Status(), time.Since(start), blw.body.String())
	}
}

// Recovery 恢复中间件
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.Logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("服务崩溃")

		c.AbortWithStatusJSON(500, gin.H{
			"success": false,
			"error":   "服务器内部错误",
		})
	})
}

func isJSONRequest(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), "application/json")
}
