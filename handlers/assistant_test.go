package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"medibot/middleware"
	"medibot/models"
	"medibot/services/appointments"
	"medibot/services/conversation"
	ai "medibot/services/intelligence"
	"medibot/services/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assistantFixture struct {
	router   *gin.Engine
	store    *fakeStore
	registry *conversation.Registry
}

func newAssistantFixture(t *testing.T) *assistantFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth, err := session.NewAuthenticator(session.NewMemoryStore(), session.DemoCredentials, time.Hour, nil)
	require.NoError(t, err)

	store := &fakeStore{}
	registry := conversation.NewRegistry(func(userID string) *conversation.Orchestrator {
		return conversation.New(appointments.NewCache(store, nil), ai.KeywordClassifier{}, conversation.Options{UserID: userID})
	}, nil)

	authH := &AuthHandler{Sessions: auth, Conversations: registry}
	h := &AssistantHandler{Conversations: registry}

	r := gin.New()
	r.POST("/api/auth/login", authH.LoginHandler)
	r.POST("/api/auth/logout", middleware.SessionAuth(auth), authH.LogoutHandler)
	api := r.Group("/api/assistant", middleware.SessionAuth(auth))
	api.GET("/transcript", h.TranscriptHandler)
	api.POST("/messages", h.SendMessageHandler)
	api.POST("/messages/:id/view", h.ViewHandler)
	api.GET("/messages/:id/booking", h.BookingFormHandler)
	api.POST("/messages/:id/booking", h.SubmitBookingHandler)
	api.GET("/appointments/:id", h.GetAppointmentHandler)
	api.PUT("/appointments/:id", h.UpdateAppointmentHandler)
	api.POST("/appointments/:id/edit", h.EditAppointmentHandler)
	api.DELETE("/appointments/:id", h.CancelAppointmentHandler)

	return &assistantFixture{router: r, store: store, registry: registry}
}

func (f *assistantFixture) login(t *testing.T) string {
	t.Helper()
	w := do(f.router, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "usuario@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Usuario", out.User.Name)
	return out.Token
}

type sendResponse struct {
	Reply      models.Message          `json:"reply"`
	Transcript conversation.Transcript `json:"transcript"`
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAssistantFixture(t)

	w := do(f.router, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "usuario@example.com", Password: "nope"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Email o contraseña inválidos")
}

func TestAssistant_RequiresSession(t *testing.T) {
	f := newAssistantFixture(t)

	w := do(f.router, http.MethodGet, "/api/assistant/transcript", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssistant_BookingFlow(t *testing.T) {
	f := newAssistantFixture(t)
	token := f.login(t)
	bearer := []string{"Authorization", "Bearer " + token}

	w := do(f.router, http.MethodPost, "/api/assistant/messages", models.ChatRequest{Message: "Quiero agendar una cita"}, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	var sent sendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	require.NotNil(t, sent.Reply.Action)
	assert.Equal(t, models.ActionCreateAppointment, sent.Reply.Action.Kind)
	require.Len(t, sent.Transcript.Messages, 3)

	w = do(f.router, http.MethodPost, "/api/assistant/messages/"+sent.Reply.ID+"/booking", map[string]string{
		"paciente": "Juan Pérez", "especialidad": "General", "fecha": "2024-12-25", "hora": "14:30",
	}, bearer...)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "doctor")
	assert.Empty(t, f.store.records)

	w = do(f.router, http.MethodPost, "/api/assistant/messages/"+sent.Reply.ID+"/booking", map[string]string{
		"paciente": "Juan Pérez", "especialidad": "General", "fecha": "2024-12-25", "hora": "14:30", "doctor": "Dr. García",
	}, bearer...)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, f.store.records, 1)
	assert.Equal(t, models.StatusPending, f.store.records[0].Status)

	var booked struct {
		Transcript conversation.Transcript `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	last := booked.Transcript.Messages[len(booked.Transcript.Messages)-1]
	assert.Equal(t, conversation.BookingConfirmedText, last.Text)
}

func TestAssistant_ViewAndCancel(t *testing.T) {
	f := newAssistantFixture(t)
	f.store.records = []models.Appointment{
		{ID: "a1", Patient: "Ana", Specialty: "General", Date: "2024-12-01", Time: "09:00", Doctor: "Dr. Paz", Status: models.StatusPending},
		{ID: "a2", Patient: "Luis", Specialty: "Cirugía", Date: "2024-12-02", Time: "10:00", Doctor: "Dra. Soto", Status: models.StatusPending},
	}
	bearer := []string{"Authorization", "Bearer " + f.login(t)}

	w := do(f.router, http.MethodPost, "/api/assistant/messages", models.ChatRequest{Message: "quiero ver mis citas"}, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	var sent sendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	require.NotNil(t, sent.Reply.Action)
	assert.Equal(t, models.ActionViewAppointments, sent.Reply.Action.Kind)

	w = do(f.router, http.MethodPost, "/api/assistant/messages/"+sent.Reply.ID+"/view", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	var viewed struct {
		Message conversation.MessageView `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &viewed))
	assert.Len(t, viewed.Message.Records, 2)

	w = do(f.router, http.MethodDelete, "/api/assistant/appointments/a1", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(f.router, http.MethodGet, "/api/assistant/transcript", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	var tr conversation.Transcript
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	for _, m := range tr.Messages {
		if m.Expanded {
			require.Len(t, m.Records, 1)
			assert.Equal(t, "a2", m.Records[0].ID)
		}
	}
	assert.Equal(t, conversation.CancelConfirmedText, tr.Messages[len(tr.Messages)-1].Text)

	w = do(f.router, http.MethodPost, "/api/assistant/messages/"+sent.Reply.ID+"/booking", map[string]string{}, bearer...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistant_EditClearsNotes(t *testing.T) {
	f := newAssistantFixture(t)
	f.store.records = []models.Appointment{
		{ID: "a1", Patient: "Ana", Specialty: "General", Date: "2024-12-01", Time: "09:00", Doctor: "Dr. Paz", Notes: "en ayunas", Status: models.StatusPending},
	}
	bearer := []string{"Authorization", "Bearer " + f.login(t)}

	w := do(f.router, http.MethodPost, "/api/assistant/messages", models.ChatRequest{Message: "quiero ver mis citas"}, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	var sent sendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	w = do(f.router, http.MethodPost, "/api/assistant/messages/"+sent.Reply.ID+"/view", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(f.router, http.MethodPost, "/api/assistant/appointments/a1/edit", map[string]string{"notas": "", "estado": "confirmada"}, bearer...)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.store.records[0].Notes)
	assert.Equal(t, models.StatusConfirmed, f.store.records[0].Status)
	assert.Equal(t, "Dr. Paz", f.store.records[0].Doctor)
}

func TestAssistant_LogoutDropsConversation(t *testing.T) {
	f := newAssistantFixture(t)
	bearer := []string{"Authorization", "Bearer " + f.login(t)}
	do(f.router, http.MethodPost, "/api/assistant/messages", models.ChatRequest{Message: "ayuda"}, bearer...)
	require.Equal(t, 1, f.registry.Len())

	w := do(f.router, http.MethodPost, "/api/auth/logout", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 0, f.registry.Len())
	w = do(f.router, http.MethodGet, "/api/assistant/transcript", nil, bearer...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
