package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-test-secret")
	r := gin.New()
	r.Use(Metrics())
	g := r.Group("/api", AuthMiddleware())
	g.GET("/me", func(c *gin.Context) {
		u, err := utils.GetUser(c)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	g.POST("/approve", RequireRole(models.UserRoleAPPROVER), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func bearer(t *testing.T, user models.CurrentUser) string {
	t.Helper()
	token, err := utils.GenerateToken(user, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", bearer(t, models.CurrentUser{ID: "u1", Role: models.UserRoleVIEWER, Username: "v"}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		role   models.UserRole
		status int
	}{
		{models.UserRoleAPPROVER, http.StatusNoContent},
		{models.UserRoleSUPER_ADMIN, http.StatusNoContent},
		{models.UserRoleENGINEER, http.StatusForbidden},
		{models.UserRoleVIEWER, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/approve", nil)
			req.Header.Set("Authorization", bearer(t, models.CurrentUser{ID: "u1", Role: tt.role, Username: "u"}))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSanitizeData(t *testing.T) {
	in := map[string]interface{}{
		"desc":  "ok",
		"token": "abc",
		"nested": []interface{}{
			map[string]interface{}{"password": "p", "amount": 1.0},
		},
	}
	out := sanitizeData(in).(map[string]interface{})
	assert.Equal(t, "ok", out["desc"])
	assert.Equal(t, "******", out["token"])
	nested := out["nested"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "******", nested["password"])
	assert.Equal(t, 1.0, nested["amount"])
}
