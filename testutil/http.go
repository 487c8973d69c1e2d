package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// JWTSecret 测试使用的签名密钥
const JWTSecret = "works-test-secret"

// SetupRouter 创建测试用 gin 路由
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret(JWTSecret)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// Token 为测试用户签发令牌
func Token(t *testing.T, user models.CurrentUser) string {
	t.Helper()
	utils.SetJWTSecret(JWTSecret)
	token, err := utils.GenerateToken(user, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// DoRequest 发送JSON请求，body 为 nil 时不带请求体
func DoRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// FormFile multipart 请求中的一个文件
type FormFile struct {
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// DoMultipart 发送 multipart 请求，data 序列化为 data 表单项
func DoMultipart(t *testing.T, r http.Handler, method, path string, data interface{}, files []FormFile, token string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal data: %v", err)
		}
		if err := writer.WriteField("data", string(raw)); err != nil {
			t.Fatalf("write data field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		part, err := writer.CreatePart(h)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(f.Content)
	}
	writer.Close()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeResponse 解析统一响应结构
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}
