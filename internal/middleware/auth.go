package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docbook/docbook-api/internal/service/auth"
	"github.com/docbook/docbook-api/pkg/httputil"
)

// Context keys under which the resolved principal id is stored.
const (
	ContextUserID   = "userID"
	ContextDoctorID = "docID"
)

// Token header names. Each principal kind has its own header rather than
// a shared Authorization scheme; the clients depend on these names.
const (
	HeaderUserToken   = "token"
	HeaderDoctorToken = "dtoken"
	HeaderAdminToken  = "atoken"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// AuthenticateUser verifies the user token and sets the user id in context.
func (m *AuthMiddleware) AuthenticateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderUserToken)
		if token == "" {
			httputil.FailStatus(c, http.StatusUnauthorized, "not authorized, please login again")
			c.Abort()
			return
		}

		id, err := m.authService.VerifyUserToken(token)
		if err != nil {
			httputil.Fail(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, id)
		c.Next()
	}
}

// AuthenticateDoctor verifies the doctor token and sets the doctor id in context.
func (m *AuthMiddleware) AuthenticateDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderDoctorToken)
		if token == "" {
			httputil.FailStatus(c, http.StatusUnauthorized, "not authorized, please login again")
			c.Abort()
			return
		}

		id, err := m.authService.VerifyDoctorToken(token)
		if err != nil {
			httputil.Fail(c, err)
			c.Abort()
			return
		}

		c.Set(ContextDoctorID, id)
		c.Next()
	}
}

// AuthenticateAdmin verifies the admin token. There is no admin identity
// beyond the credential pair, so nothing is stored in context.
func (m *AuthMiddleware) AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderAdminToken)
		if token == "" {
			httputil.FailStatus(c, http.StatusUnauthorized, "not authorized, please login again")
			c.Abort()
			return
		}

		if err := m.authService.VerifyAdminToken(token); err != nil {
			httputil.Fail(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
