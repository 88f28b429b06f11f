package handlers

import (
	"errors"
	"net/http"

	"medibot/middleware"
	"medibot/models"
	"medibot/services/appointments"
	"medibot/services/conversation"
	"medibot/services/editor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistantHandler exposes the signed-in user's conversation.
type AssistantHandler struct {
	Conversations *conversation.Registry
}

func (h *AssistantHandler) conversation(c *gin.Context) (*conversation.Orchestrator, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return h.Conversations.Get(userID), true
}

// statusFor maps conversation and cache errors to HTTP statuses.
func statusFor(err error) int {
	var verr *appointments.ValidationError
	var opErr *appointments.OperationError
	switch {
	case errors.Is(err, conversation.ErrMessageNotFound), errors.Is(err, conversation.ErrRecordNotCached):
		return http.StatusNotFound
	case errors.Is(err, conversation.ErrNoAffordance):
		return http.StatusBadRequest
	case errors.Is(err, conversation.ErrBusy), errors.Is(err, editor.ErrSubmitting):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, appointments.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &opErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *AssistantHandler) fail(c *gin.Context, o *conversation.Orchestrator, err error, extra gin.H) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("Assistant request failed", zap.Error(err))
	}
	body := gin.H{"error": err.Error(), "transcript": o.Render()}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// TranscriptHandler handles GET /api/assistant/transcript.
func (h *AssistantHandler) TranscriptHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o.Render())
}

// SendMessageHandler handles POST /api/assistant/messages.
func (h *AssistantHandler) SendMessageHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := o.Submit(c.Request.Context(), req.Message)
	if err != nil {
		h.fail(c, o, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "transcript": o.Render()})
}

// ViewHandler handles POST /api/assistant/messages/:id/view.
func (h *AssistantHandler) ViewHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	if err := o.ActivateView(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, o, err, nil)
		return
	}
	view, err := o.RenderMessage(c.Param("id"))
	if err != nil {
		h.fail(c, o, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": view, "transcript": o.Render()})
}

// BookingFormHandler handles GET /api/assistant/messages/:id/booking: the create
// editor as it opens, pre-filled from the message.
func (h *AssistantHandler) BookingFormHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	ed, err := o.OpenCreateEditor(c.Param("id"))
	if err != nil {
		h.fail(c, o, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"editor": ed.State(), "specialties": models.Specialties})
}

// SubmitBookingHandler handles POST /api/assistant/messages/:id/booking. Fields in
// the body override the pre-filled ones.
func (h *AssistantHandler) SubmitBookingHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	var form editor.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ed, err := o.OpenCreateEditor(c.Param("id"))
	if err != nil {
		h.fail(c, o, err, nil)
		return
	}
	ed.SetForm(ed.State().Form.Merge(form))

	saved, err := ed.Submit(c.Request.Context())
	if err != nil {
		h.fail(c, o, err, gin.H{"editor": ed.State()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": saved, "transcript": o.Render()})
}

// GetAppointmentHandler handles GET /api/assistant/appointments/:id.
func (h *AssistantHandler) GetAppointmentHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	a, err := o.Cache().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, o, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

// UpdateAppointmentHandler handles PUT /api/assistant/appointments/:id, the inline
// edit control.
func (h *AssistantHandler) UpdateAppointmentHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	var update models.AppointmentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := o.UpdateRecord(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.fail(c, o, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated, "transcript": o.Render()})
}

// EditAppointmentHandler handles POST /api/assistant/appointments/:id/edit, the edit
// editor. Fields present in the body override the record's current values; an empty
// "notas" clears the notes.
func (h *AssistantHandler) EditAppointmentHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	var changes models.AppointmentUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ed, err := o.OpenEditEditor(c.Param("id"))
	if err != nil {
		h.fail(c, o, err, nil)
		return
	}
	ed.SetForm(ed.State().Form.Apply(changes))

	saved, err := ed.Submit(c.Request.Context())
	if err != nil {
		h.fail(c, o, err, gin.H{"editor": ed.State()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved, "transcript": o.Render()})
}

// CancelAppointmentHandler handles DELETE /api/assistant/appointments/:id, the inline
// cancel control.
func (h *AssistantHandler) CancelAppointmentHandler(c *gin.Context) {
	o, ok := h.conversation(c)
	if !ok {
		return
	}
	if err := o.CancelRecord(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, o, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": o.Render()})
}
