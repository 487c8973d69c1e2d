package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码，前端据此展示具体提示
const (
	CodeNotFound          = "RESOURCE_NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeConflict          = "CONFLICT"
	CodeUpstreamStorage   = "UPSTREAM_STORAGE_ERROR"
)

// ApiError 自定义API错误
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
	Field      string
	Err        error
}

// Error 实现error接口
func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *ApiError) Unwrap() error {
	return e.Err
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// CreateNotFoundError 创建资源不存在错误
func CreateNotFoundError(resource string) *ApiError {
	return NewApiError(resource+"不存在", http.StatusNotFound, CodeNotFound)
}

// CreateUnauthorizedError 创建未授权错误
func CreateUnauthorizedError() *ApiError {
	return NewApiError("未授权访问", http.StatusUnauthorized, CodeUnauthorized)
}

// CreateForbiddenError 创建权限不足错误
func CreateForbiddenError(message string) *ApiError {
	if message == "" {
		message = "权限不足"
	}
	return NewApiError(message, http.StatusForbidden, CodeForbidden)
}

// CreateValidationError 创建字段校验错误，Field 为缺失或非法的字段名
func CreateValidationError(field, message string) *ApiError {
	e := NewApiError(message, http.StatusBadRequest, CodeValidation)
	e.Field = field
	return e
}

// CreateMissingFieldError 创建必填字段缺失错误
func CreateMissingFieldError(field string) *ApiError {
	return CreateValidationError(field, "缺少必填字段: "+field)
}

// CreateInvalidArgumentError 创建参数非法错误
func CreateInvalidArgumentError(message string) *ApiError {
	return NewApiError(message, http.StatusBadRequest, CodeInvalidArgument)
}

// CreateInvalidTransitionError 创建非法状态迁移错误
func CreateInvalidTransitionError(from, to string) *ApiError {
	return NewApiError(
		fmt.Sprintf("不允许从 %q 变更为 %q", from, to),
		http.StatusUnprocessableEntity,
		CodeInvalidTransition,
	)
}

// CreateConflictError 创建并发冲突错误
func CreateConflictError() *ApiError {
	return NewApiError("数据已被其他请求修改，请刷新后重试", http.StatusConflict, CodeConflict)
}

// CreateUpstreamStorageError 创建对象存储错误
func CreateUpstreamStorageError(err error) *ApiError {
	e := NewApiError("文件上传失败", http.StatusBadGateway, CodeUpstreamStorage)
	e.Err = err
	return e
}

// ErrorCodeOf 取出错误码，非 ApiError 返回空字符串
func ErrorCodeOf(err error) string {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode
	}
	return ""
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil {
		return
	}
	LogError(err, map[string]interface{}{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}, "API错误")

	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		response := gin.H{"success": false, "error": apiErr.Message}
		if apiErr.ErrorCode != "" {
			response["code"] = apiErr.ErrorCode
		}
		if apiErr.Field != "" {
			response["field"] = apiErr.Field
		}
		c.JSON(apiErr.StatusCode, response)
		return
	}

	// 其他未预期的错误
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   err.Error(),
		"success": false,
	})
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}, message string, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := gin.H{"success": true}
	if data != nil {
		response["data"] = data
	}
	if message != "" {
		response["message"] = message
	}

	c.JSON(code, response)
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, message string, statusCode int) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}
