package routes

import (
	"net/http"
	"strings"
	"testing"

	"github.com/BerniceZTT/works_end/controllers"
	"github.com/BerniceZTT/works_end/middleware"
	"github.com/BerniceZTT/works_end/service"
	"github.com/BerniceZTT/works_end/testutil"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	router := testutil.SetupRouter()
	router.Use(middleware.Metrics())
	svc := service.NewProposalService(testutil.NewMemoryProposalStore(), testutil.NewFakeObjectStore())
	RegisterRoutes(router, controllers.NewProposalController(svc))

	w := testutil.DoRequest(router, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// 测试环境未连接数据库
	w = testutil.DoRequest(router, http.MethodGet, "/api/db-status", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = testutil.DoRequest(router, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "works_http_requests_total"), "request metrics exported")

	w = testutil.DoRequest(router, http.MethodGet, "/api/proposals/abc", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
