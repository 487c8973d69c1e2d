package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// 单个文件大小上限（20MB）
const maxFileSize = 20 * 1024 * 1024

// multipart 表单中承载JSON字段的表单项
const dataField = "data"

// readSubmission 读取请求内容
//
// multipart 请求：data 表单项为JSON字段，其余文件项按表单字段名收集；
// 其他请求按JSON请求体解析，空请求体视为没有字段。
func readSubmission(c *gin.Context, target interface{}) ([]models.Upload, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return readMultipart(c, target)
	}

	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, nil
	}
	if err := c.ShouldBindJSON(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, utils.CreateInvalidArgumentError("无效的请求数据: " + err.Error())
	}
	return nil, nil
}

func readMultipart(c *gin.Context, target interface{}) ([]models.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, utils.CreateInvalidArgumentError("无效的表单数据: " + err.Error())
	}

	if values := form.Value[dataField]; len(values) > 0 && strings.TrimSpace(values[0]) != "" {
		if err := json.Unmarshal([]byte(values[0]), target); err != nil {
			return nil, utils.CreateInvalidArgumentError("无效的data字段: " + err.Error())
		}
	}

	// 表单字段按名称排序，保证上传顺序稳定
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var uploads []models.Upload
	for _, field := range fields {
		for _, header := range form.File[field] {
			upload, err := readFile(field, header)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, upload)
		}
	}
	return uploads, nil
}

func readFile(field string, header *multipart.FileHeader) (models.Upload, error) {
	if header.Size > maxFileSize {
		return models.Upload{}, utils.CreateValidationError(field,
			fmt.Sprintf("文件大小超出限制，最大支持 %dMB: %s", maxFileSize/1024/1024, header.Filename))
	}

	f, err := header.Open()
	if err != nil {
		return models.Upload{}, utils.CreateInvalidArgumentError("读取上传文件失败: " + header.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return models.Upload{}, utils.CreateInvalidArgumentError("读取上传文件失败: " + header.Filename)
	}
	if len(data) > maxFileSize {
		return models.Upload{}, utils.CreateValidationError(field,
			fmt.Sprintf("文件大小超出限制，最大支持 %dMB: %s", maxFileSize/1024/1024, header.Filename))
	}

	return models.Upload{
		Field:    field,
		Name:     header.Filename,
		MimeType: detectMimeType(header, data),
		Data:     data,
	}, nil
}

// detectMimeType 优先使用客户端声明的类型，其次扩展名，最后按内容嗅探
func detectMimeType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
