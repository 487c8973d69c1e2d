package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/repository"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// 需要记录的HTTP方法
var loggedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// 不需要记录的路径
var excludedPaths = map[string]bool{
	"/api/health":    true,
	"/api/db-status": true,
	"/metrics":       true,
}

// OperationLoggerMiddleware 操作日志记录中间件，写操作落库到 apiOperationLogs
func OperationLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldLogOperation(c) {
			c.Next()
			return
		}

		startTime := time.Now()

		blw := &bodyLogWriter{
			body:           bytes.NewBufferString(""),
			ResponseWriter: c.Writer,
		}
		c.Writer = blw

		requestBody := captureRequestBody(c)
		sanitizedHeaders := sanitizeHeaders(c.Request.Header)

		c.Next()

		operationLog := newOperationLog(c, startTime, requestBody, sanitizedHeaders, blw.body.Bytes())

		// 未连接数据库时（测试、降级运行）只写日志
		if !repository.Connected() {
			utils.Logger.Debug().
				Str("method", operationLog.Method).
				Str("route", operationLog.Route).
				Int("status", operationLog.Response.StatusCode).
				Msg("数据库未连接，跳过操作日志落库")
			return
		}

		if err := saveOperationLog(c.Request.Context(), &operationLog); err != nil {
			utils.Logger.Error().Err(err).Msg("保存操作日志失败")
			minimalLog := operationLog
			minimalLog.Request.Body = nil
			minimalLog.Request.Headers = nil
			minimalLog.Response.Data = nil
			minimalLog.Response.ErrorMessage = fmt.Sprintf("保存详细日志失败: %v", err)

			if saveErr := saveOperationLog(c.Request.Context(), &minimalLog); saveErr != nil {
				utils.Logger.Error().Err(saveErr).Msg("保存最小日志失败")
			}
		}
	}
}

// newOperationLog 根据请求上下文和响应内容组装审计记录
func newOperationLog(c *gin.Context, startTime time.Time, requestBody interface{}, headers map[string]interface{}, responseBody []byte) models.ApiOperationLog {
	var responseData interface{}
	if strings.Contains(c.Writer.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(responseBody, &responseData); err != nil {
			responseData = string(responseBody)
		}
	} else if len(responseBody) > 0 {
		responseData = string(responseBody)
	}

	status := c.Writer.Status()
	response := models.OperationResponse{
		StatusCode: status,
		Success:    status < http.StatusBadRequest,
		Data:       sanitizeData(responseData),
	}
	if body, ok := responseData.(map[string]interface{}); ok && !response.Success {
		response.ErrorCode, _ = body["code"].(string)
		response.ErrorMessage, _ = body["error"].(string)
	}
	if len(c.Errors) > 0 {
		response.ErrorMessage = c.Errors.String()
	}

	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}

	log := models.ApiOperationLog{
		ProposalID: c.Param("id"),
		EntryID:    c.Param("entryId"),
		Stage:      c.Param("stage"),
		Action:     c.Param("action"),
		Route:      route,
		Method:     c.Request.Method,
		Operator:   models.UserRef{ID: "anonymous", Name: "匿名用户"},
		Request: models.OperationRequest{
			Path:    c.Request.URL.Path,
			Query:   c.Request.URL.RawQuery,
			Body:    sanitizeData(requestBody),
			Headers: headers,
			Files:   uploadedFileNames(c),
		},
		Response:   response,
		OccurredAt: startTime,
		DurationMs: time.Since(startTime).Milliseconds(),
		ClientIP:   getClientIP(c),
		UserAgent:  c.Request.UserAgent(),
	}
	if user, err := utils.GetUser(c); err == nil {
		log.Operator = user.Ref()
		log.Role = user.Role
	}
	// 招标、工作令路由没有 :stage 参数，按路由末段归类
	if log.Stage == "" {
		switch {
		case strings.HasSuffix(route, "/tender"):
			log.Stage = "tender"
		case strings.HasSuffix(route, "/work-order"):
			log.Stage = "work-order"
		}
	}
	return log
}

// uploadedFileNames 控制器解析过的上传文件，记录为 字段/文件名
func uploadedFileNames(c *gin.Context) []string {
	form := c.Request.MultipartForm
	if form == nil {
		return nil
	}
	var names []string
	for field, files := range form.File {
		for _, fh := range files {
			names = append(names, field+"/"+fh.Filename)
		}
	}
	sort.Strings(names)
	return names
}

// shouldLogOperation 检查是否需要记录此操作
func shouldLogOperation(c *gin.Context) bool {
	if excludedPaths[c.Request.URL.Path] {
		return false
	}
	return loggedMethods[c.Request.Method]
}

// captureRequestBody 读取并重置JSON请求体；文件上传只记录表单字段名
func captureRequestBody(c *gin.Context) interface{} {
	if c.Request.Body == nil {
		return nil
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return "<multipart upload>"
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("读取请求体失败")
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))

	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return body
}

// sanitizeData 清理数据中的敏感信息
func sanitizeData(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		sanitized := make(map[string]interface{}, len(v))
		for k, val := range v {
			switch strings.ToLower(k) {
			case "password", "token", "authorization", "secret", "key":
				sanitized[k] = "******"
			default:
				sanitized[k] = sanitizeData(val)
			}
		}
		return sanitized
	case []interface{}:
		sanitized := make([]interface{}, len(v))
		for i, val := range v {
			sanitized[i] = sanitizeData(val)
		}
		return sanitized
	default:
		return data
	}
}

// sanitizeHeaders 清理请求头中的敏感信息
func sanitizeHeaders(headers http.Header) map[string]interface{} {
	sanitized := make(map[string]interface{})
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization":
			if len(v) > 0 {
				sanitized[k] = getShortAuthHeader(v[0])
			}
		case "cookie", "x-api-key":
			sanitized[k] = "******"
		default:
			sanitized[k] = v
		}
	}
	return sanitized
}

// getClientIP 获取客户端IP地址
func getClientIP(c *gin.Context) string {
	if ip := c.Request.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.Request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// saveOperationLog 保存操作日志到数据库
func saveOperationLog(ctx context.Context, log *models.ApiOperationLog) error {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_, err := repository.Collection(repository.ApiOperationLogsCollection).InsertOne(saveCtx, *log)
	return err
}
