package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Attachment 外部对象存储中的文件引用
type Attachment struct {
	URL          string `json:"url" bson:"url"`
	StorageID    string `json:"storageId" bson:"storageId"`
	MimeType     string `json:"mimeType" bson:"mimeType"`
	Size         int64  `json:"size" bson:"size"`
	OriginalName string `json:"originalName,omitempty" bson:"originalName,omitempty"`
}

// Valid 附件至少要有可访问的地址
func (a Attachment) Valid() bool {
	return strings.TrimSpace(a.URL) != ""
}

// IsImage 根据MIME类型判断是否为图片
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.MimeType), "image/")
}

// AttachmentList 附件序列
//
// 历史数据里 progressImages 可能是单个对象、数组或缺失，
// 解码时统一成序列，业务代码不再区分形态。
type AttachmentList []Attachment

// UnmarshalJSON 兼容单对象/数组/null 三种形态
func (l *AttachmentList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*l = nil
	case trimmed[0] == '[':
		var items []Attachment
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = compactAttachments(items)
	case trimmed[0] == '{':
		var one Attachment
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*l = compactAttachments([]Attachment{one})
	default:
		return fmt.Errorf("无法识别的附件格式: %s", string(trimmed))
	}
	return nil
}

// UnmarshalBSONValue 兼容单文档/数组/null 三种形态
func (l *AttachmentList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*l = nil
	case bsontype.Array:
		var items []Attachment
		if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&items); err != nil {
			return err
		}
		*l = compactAttachments(items)
	case bsontype.EmbeddedDocument:
		var one Attachment
		if err := bson.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = compactAttachments([]Attachment{one})
	default:
		return fmt.Errorf("无法识别的附件BSON类型: %s", t)
	}
	return nil
}

// compactAttachments 丢弃没有地址的空附件
func compactAttachments(items []Attachment) AttachmentList {
	out := make(AttachmentList, 0, len(items))
	for _, item := range items {
		if item.Valid() {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// StoredObject 对象存储写入结果
type StoredObject struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Upload 待上传的文件
type Upload struct {
	Field    string
	Name     string
	MimeType string
	Data     []byte
}
