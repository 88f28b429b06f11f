package middleware

import (
	"context"
	"net/http"
	"strings"

	"medibot/models"
	"medibot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by SessionAuth.
const (
	ContextUserID  = "userID"
	ContextSession = "session"
)

// Authorizer resolves a bearer token to its session.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*models.Session, error)
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// SessionAuth only lets requests with a live session through.
func SessionAuth(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header", "")
			return
		}

		sess, err := auth.Authorize(c.Request.Context(), token)
		if err != nil {
			utils.GetLogger().Debug("session rejected", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired session", "")
			return
		}

		c.Set(ContextUserID, sess.User.ID)
		c.Set(ContextSession, sess)
		c.Next()
	}
}

// SessionFrom returns the session stored by SessionAuth.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok
}
