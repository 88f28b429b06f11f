package handlers

import (
	"context"
	"net/http"
	"time"

	"medibot/models"
	ai "medibot/services/intelligence"
	"medibot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the reference Intent Classification Service.
type ChatHandler struct {
	Classifier ai.Classifier
	Timeout    time.Duration
}

// ClassifyHandler handles POST /api/chat. Failures are still answered with the
// {success:false} envelope so clients can tell them apart from transport errors.
func (h *ChatHandler) ClassifyHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Classification{Success: false, Error: "Mensaje requerido"})
		return
	}

	ctx := c.Request.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	out, err := h.Classifier.Classify(ctx, req.Message)
	if err != nil {
		logger.Error("Classification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Classification{
			Success: false,
			Error:   "Error al procesar el mensaje",
		})
		return
	}
	out.Success = true
	if out.Action == "" {
		out.Action = string(out.Intent)
	}
	c.JSON(http.StatusOK, out)
}
