package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger 全局日志对象
var Logger = zerolog.New(io.Discard)

// InitLogger 初始化日志系统
func InitLogger() {
	// 配置日志输出
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	// 创建日志记录器
	Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(zerolog.InfoLevel)

	// 设置日志级别
	if os.Getenv("GIN_MODE") == "debug" {
		Logger = Logger.Level(zerolog.DebugLevel)
	}

	Logger.Info().Msg("日志系统初始化完成")
}

// LogApiRequest 记录API请求
func LogApiRequest(method, url string, params, body interface{}, headers map[string]string) {
	// 过滤敏感信息
	if headers != nil && headers["Authorization"] != "" {
		if len(headers["Authorization"]) > 15 {
			headers["Authorization"] = headers["Authorization"][:15] + "..."
		}
	}

	Logger.Info().
		Str("method", method).
		Str("url", url).
		Interface("params", params).
		Interface("body", body).
		Interface("headers", headers).
		Msg("API请求")
}

// LogApiResponse 记录API响应
func LogApiResponse(method, url string, statusCode int, responseTime time.Duration, responseBody interface{}) {
	event := Logger.Info()
	if statusCode >= 400 {
		event = Logger.Error()
	}
	if url == "/metrics" {
		return
	}
	// 提案详情包含全部图片地址，响应体太大，只记状态
	if strings.HasPrefix(url, "/api/proposals/") && method == "GET" && statusCode < 400 {
		responseBody = nil
	}
	event.
		Str("method", method).
		Str("url", url).
		Int("statusCode", statusCode).
		Dur("responseTime", responseTime).
		Interface("body", responseBody).
		Msg("API响应")
}

// LogInfo 记录
func LogInfo(context map[string]interface{}, message string) {
	Logger.Info().
		Interface("context", context).
		Msg(message)
}

// LogWarn 记录警告
func LogWarn(context map[string]interface{}, message string) {
	Logger.Warn().
		Interface("context", context).
		Msg(message)
}

// LogError 记录错误
func LogError(err error, context map[string]interface{}, message string) {
	Logger.Error().
		Err(err).
		Interface("context", context).
		Msg(message)
}

// LogDbOperation 记录数据库操作
func LogDbOperation(operation string, collection string, query interface{}, result interface{}) {
	Logger.Debug().
		Str("operation", operation).
		Str("collection", collection).
		Interface("query", query).
		Interface("result", result).
		Msg("数据库操作")
}
