package handlers

import (
	"net/http"
	"testing"

	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginApp(t *testing.T) *testApp {
	t.Helper()
	app := newTestApp(t)

	var pw models.Password
	require.NoError(t, pw.Set("pa55word!"))
	app.Users = fakeUsers{byEmail: map[string]models.User{
		"aina@taptoeat.my": {ID: 4, Role: models.RoleDriver, Email: "aina@taptoeat.my", PasswordHash: pw.Hash, IsActive: true},
		"ravi@taptoeat.my": {ID: 5, Role: models.RoleDriver, Email: "ravi@taptoeat.my", PasswordHash: pw.Hash},
	}}
	app.router.POST("/v1/auth/login", app.Login)
	return app
}

func TestLogin(t *testing.T) {
	app := newLoginApp(t)

	w := app.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "aina@taptoeat.my", "password": "pa55word!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](t, w)
	s, err := app.issuer.ValidateToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.UserID)
	assert.Equal(t, models.RoleDriver, s.Role)
	assert.NotContains(t, w.Body.String(), "password")

	require.Len(t, app.audit.entries, 1)
	assert.Equal(t, models.ActionLogin, app.audit.entries[0].Action)
	assert.Equal(t, int64(4), app.audit.entries[0].ActorID)
}

func TestLoginRejections(t *testing.T) {
	tests := []struct {
		name   string
		body   gin.H
		status int
		msg    string
	}{
		{"wrong password", gin.H{"email": "aina@taptoeat.my", "password": "guess"}, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", gin.H{"email": "nobody@taptoeat.my", "password": "pa55word!"}, http.StatusUnauthorized, "Invalid credentials"},
		{"deactivated", gin.H{"email": "ravi@taptoeat.my", "password": "pa55word!"}, http.StatusForbidden, "Your account has been deactivated. Please contact support."},
		{"deactivated with wrong password", gin.H{"email": "ravi@taptoeat.my", "password": "guess"}, http.StatusUnauthorized, "Invalid credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newLoginApp(t)

			w := app.do(t, http.MethodPost, "/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, errorOf(t, w))
			assert.Empty(t, app.audit.entries)
		})
	}

	t.Run("malformed email", func(t *testing.T) {
		app := newLoginApp(t)
		w := app.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "aina", "password": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginSucceedsWhenAuditFails(t *testing.T) {
	app := newLoginApp(t)
	app.audit.err = assertErr("activity_logs unavailable")

	w := app.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "aina@taptoeat.my", "password": "pa55word!"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), app.Audit.Failures())
}
