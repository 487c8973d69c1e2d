package models

import "errors"

var (
	// ErrProposalNotFound 提案不存在
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrVersionConflict 保存时版本号不一致，说明文档已被其他请求修改
	ErrVersionConflict = errors.New("proposal version conflict")
)
