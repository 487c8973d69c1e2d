package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperationLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	approver := models.CurrentUser{ID: "apr-1", Role: models.UserRoleAPPROVER, Username: "approver"}

	var got models.ApiOperationLog
	r := gin.New()
	r.POST("/api/proposals/:id/approvals/:stage/:action", func(c *gin.Context) {
		c.Set(utils.ContextUserKey, &approver)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "状态不允许", "code": "INVALID_STATUS_TRANSITION"})
		body := `{"success":false,"error":"状态不允许","code":"INVALID_STATUS_TRANSITION"}`
		got = newOperationLog(c, time.Now(), map[string]interface{}{"approvalNumber": "TA-1", "token": "abc"}, nil, []byte(body))
	})
	r.POST("/api/proposals/:id/tender", func(c *gin.Context) {
		c.Status(http.StatusCreated)
		got = newOperationLog(c, time.Now(), nil, nil, nil)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/proposals/p-1/approvals/technical/approve?debug=1", strings.NewReader("{}"))
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "p-1", got.ProposalID)
	assert.Equal(t, "technical", got.Stage)
	assert.Equal(t, "approve", got.Action)
	assert.Equal(t, "/api/proposals/:id/approvals/:stage/:action", got.Route)
	assert.Equal(t, "debug=1", got.Request.Query)
	assert.Equal(t, approver.Ref(), got.Operator)
	assert.Equal(t, models.UserRoleAPPROVER, got.Role)
	assert.False(t, got.Response.Success)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", got.Response.ErrorCode)
	assert.Equal(t, "状态不允许", got.Response.ErrorMessage)
	body, ok := got.Request.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "******", body["token"])

	req = httptest.NewRequest(http.MethodPost, "/api/proposals/p-2/tender", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "tender", got.Stage)
	assert.Equal(t, "anonymous", got.Operator.ID)
	assert.True(t, got.Response.Success)
	assert.Empty(t, got.Response.ErrorCode)
}
