package handlers

import (
	"context"
	"errors"
	"net/http"

	"medibot/middleware"
	"medibot/models"
	"medibot/services/conversation"
	"medibot/services/session"
	"medibot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionService is the session provider the assistant is handed.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	Authorize(ctx context.Context, token string) (*models.Session, error)
}

// AuthHandler signs users in and out of the assistant.
type AuthHandler struct {
	Sessions      SessionService
	Conversations *conversation.Registry
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": session.ErrInvalidCredentials.Error()})
		return
	}

	sess, err := h.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo iniciar sesión"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     sess.Token,
		"user":      sess.User,
		"expiresAt": sess.ExpiresAt,
	})
}

// LogoutHandler handles POST /api/auth/logout and drops the user's conversation.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	logger := utils.GetLogger()
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.Sessions.Logout(c.Request.Context(), sess.Token); err != nil {
		logger.Error("Logout failed", zap.String("userId", sess.User.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo cerrar sesión"})
		return
	}
	h.Conversations.Drop(sess.User.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
}
