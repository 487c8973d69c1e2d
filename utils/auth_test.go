package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BerniceZTT/works_end/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")
	user := models.CurrentUser{ID: "eng-1", Role: models.UserRoleENGINEER, Username: "engineer"}

	token, err := GenerateToken(user, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	got, err := UserFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, user, *got)
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	SetJWTSecret("unit-test-secret")
	user := models.CurrentUser{ID: "eng-1", Role: models.UserRoleENGINEER, Username: "engineer"}

	expired, err := GenerateToken(user, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "x", "role": "SDO", "username": "x"})
	signed, err := foreign.SignedString([]byte("someone-else"))
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)
}

func TestUserFromClaims(t *testing.T) {
	_, err := UserFromClaims(jwt.MapClaims{"role": "SDO", "username": "x"})
	assert.Error(t, err)

	_, err = UserFromClaims(jwt.MapClaims{"id": "1", "username": "x"})
	assert.Error(t, err)

	u, err := UserFromClaims(jwt.MapClaims{"id": "1", "role": "SDO", "name": "fallback"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", u.Username)
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(models.UserRoleSUPER_ADMIN))
	assert.True(t, HasRole(models.UserRoleSDO, models.UserRoleENGINEER, models.UserRoleSDO))
	assert.False(t, HasRole(models.UserRoleVIEWER, models.UserRoleENGINEER))
	assert.False(t, HasRole(models.UserRoleENGINEER))
}

func TestGetUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUser(c)
	assert.Error(t, err)

	c.Set(ContextUserKey, &models.CurrentUser{ID: "1", Role: models.UserRoleSDO})
	u, err := GetUser(c)
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	c.Set(ContextUserKey, jwt.MapClaims{"id": "2", "role": "ENGINEER", "username": "e"})
	u, err = GetUser(c)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleENGINEER, u.Role)

	c.Set(ContextUserKey, 42)
	_, err = GetUser(c)
	assert.Error(t, err)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", CreateMissingFieldError("approvedAmount"), http.StatusBadRequest, CodeValidation},
		{"not found", CreateNotFoundError("提案"), http.StatusNotFound, CodeNotFound},
		{"transition", CreateInvalidTransitionError("a", "b"), http.StatusUnprocessableEntity, CodeInvalidTransition},
		{"conflict", CreateConflictError(), http.StatusConflict, CodeConflict},
		{"storage", CreateUpstreamStorageError(assert.AnError), http.StatusBadGateway, CodeUpstreamStorage},
		{"unexpected", assert.AnError, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/proposals/x", nil)

			HandleError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, ErrorCodeOf(tt.err))
			if tt.code != "" {
				assert.Contains(t, w.Body.String(), `"code":"`+tt.code+`"`)
			}
		})
	}
}

func TestUpstreamStorageErrorUnwraps(t *testing.T) {
	err := CreateUpstreamStorageError(assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
}
