package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/service/auth"
)

const (
	sessionKey      = "session"
	deviceKeyHeader = "X-Device-Key"
)

// Authenticator resolves bearer tokens and device keys.
type Authenticator interface {
	Authenticate(token string) (auth.Session, error)
	VerifyDeviceKey(key string) error
}

// RequireRole rejects requests without a live bearer session of role.
func RequireRole(authn Authenticator, role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := authn.Authenticate(bearerToken(c))
		if err != nil || session.Role != role {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": models.ErrUnauthorized.Error()})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireDeviceKey guards the quantity reporter endpoints.
func RequireDeviceKey(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authn.VerifyDeviceKey(c.GetHeader(deviceKeyHeader)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": models.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentSession(c *gin.Context) auth.Session {
	v, _ := c.Get(sessionKey)
	session, _ := v.(auth.Session)
	return session
}
