package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/docbook/docbook-api/internal/service/auth"
	pkgauth "github.com/docbook/docbook-api/pkg/auth"
	"github.com/docbook/docbook-api/pkg/security"
)

func newTestRouter(t *testing.T) (*gin.Engine, *pkgauth.TokenService, *AuthMiddleware) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := pkgauth.NewTokenService("test-secret")
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	authSvc := auth.NewService(nil, nil, tokens, hasher, "admin@docbook.dev", "adminpass")

	mw := NewAuthMiddleware(authSvc)
	return gin.New(), tokens, mw
}

func TestAuthenticateUser(t *testing.T) {
	r, tokens, mw := newTestRouter(t)

	var gotID uuid.UUID
	r.GET("/me", mw.AuthenticateUser(), func(c *gin.Context) {
		gotID = c.MustGet(ContextUserID).(uuid.UUID)
		c.Status(http.StatusOK)
	})

	userID := uuid.New()
	token, err := tokens.Generate(pkgauth.PrincipalUser, userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserToken, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotID)
}

func TestAuthenticateUserMissingToken(t *testing.T) {
	r, _, mw := newTestRouter(t)
	r.GET("/me", mw.AuthenticateUser(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not authorized, please login again", body["message"])
}

func TestAuthenticateUserRejectsDoctorToken(t *testing.T) {
	r, tokens, mw := newTestRouter(t)
	r.GET("/me", mw.AuthenticateUser(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := tokens.Generate(pkgauth.PrincipalDoctor, uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserToken, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateAdmin(t *testing.T) {
	r, tokens, mw := newTestRouter(t)
	r.GET("/admin", mw.AuthenticateAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := tokens.GenerateAdmin("admin@docbook.dev", "adminpass")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(HeaderAdminToken, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateAdminWrongCredentialToken(t *testing.T) {
	r, tokens, mw := newTestRouter(t)
	r.GET("/admin", mw.AuthenticateAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Signed with stale credentials, so verification must fail.
	token, err := tokens.GenerateAdmin("admin@docbook.dev", "oldpass")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(HeaderAdminToken, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
