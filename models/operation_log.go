package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApiOperationLog 写接口审计记录，按提案归档
type ApiOperationLog struct {
	ID primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`

	// 操作对象
	ProposalID string `json:"proposalId,omitempty" bson:"proposalId,omitempty"`
	EntryID    string `json:"entryId,omitempty" bson:"entryId,omitempty"`
	Stage      string `json:"stage,omitempty" bson:"stage,omitempty"`
	Action     string `json:"action,omitempty" bson:"action,omitempty"`

	Route    string   `json:"route" bson:"route"` // gin 路由模板
	Method   string   `json:"method" bson:"method"`
	Operator UserRef  `json:"operator" bson:"operator"`
	Role     UserRole `json:"role,omitempty" bson:"role,omitempty"`

	Request  OperationRequest  `json:"request" bson:"request"`
	Response OperationResponse `json:"response" bson:"response"`

	OccurredAt time.Time `json:"occurredAt" bson:"occurredAt"`
	DurationMs int64     `json:"durationMs" bson:"durationMs"`
	ClientIP   string    `json:"clientIp" bson:"clientIp"`
	UserAgent  string    `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
}

// OperationRequest 脱敏后的请求内容
type OperationRequest struct {
	Path    string      `json:"path" bson:"path"`
	Query   string      `json:"query,omitempty" bson:"query,omitempty"`
	Body    interface{} `json:"body,omitempty" bson:"body,omitempty"`
	Headers interface{} `json:"headers,omitempty" bson:"headers,omitempty"`
	Files   []string    `json:"files,omitempty" bson:"files,omitempty"`
}

// OperationResponse 响应摘要，错误时带错误码
type OperationResponse struct {
	StatusCode   int         `json:"statusCode" bson:"statusCode"`
	Success      bool        `json:"success" bson:"success"`
	ErrorCode    string      `json:"errorCode,omitempty" bson:"errorCode,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	Data         interface{} `json:"data,omitempty" bson:"data,omitempty"`
}
