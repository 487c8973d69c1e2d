package controllers_test

import (
	"net/http"
	"testing"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/routes"
	"github.com/BerniceZTT/works_end/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken(t *testing.T) {
	router := testutil.SetupRouter()
	routes.RegisterAuthRoutes(router)

	w := testutil.DoRequest(router, http.MethodGet, "/api/auth/validate", nil, testutil.Token(t, engineerUser))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := testutil.DecodeResponse(t, w)["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, engineerUser.ID, user["id"])
	assert.ElementsMatch(t, []interface{}{"appendProgress", "removeProgress", "setStatus"}, data["capabilities"])

	admin := models.CurrentUser{ID: "root", Role: models.UserRoleSUPER_ADMIN, Username: "admin"}
	w = testutil.DoRequest(router, http.MethodGet, "/api/auth/validate", nil, testutil.Token(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	caps := testutil.DecodeResponse(t, w)["data"].(map[string]interface{})["capabilities"].([]interface{})
	assert.Contains(t, caps, "decide")
	assert.Contains(t, caps, "createProposal")

	w = testutil.DoRequest(router, http.MethodGet, "/api/auth/validate", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
