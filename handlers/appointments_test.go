package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medibot/models"
	ai "medibot/services/intelligence"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackendRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &AppointmentHandler{Store: store}
	r.GET("/api/appointments", h.ListAppointmentsHandler)
	r.POST("/api/appointments", h.CreateAppointmentHandler)
	r.GET("/api/appointments/:id", h.GetAppointmentHandler)
	r.PUT("/api/appointments/:id", h.UpdateAppointmentHandler)
	r.DELETE("/api/appointments/:id", h.DeleteAppointmentHandler)
	chat := &ChatHandler{Classifier: ai.KeywordClassifier{}}
	r.POST("/api/chat", chat.ClassifyHandler)
	return r
}

func do(r http.Handler, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordStore_CreateListFilter(t *testing.T) {
	r := newBackendRouter(&fakeStore{})

	w := do(r, http.MethodPost, "/api/appointments", models.AppointmentInput{
		Patient: "Juan Pérez", Specialty: "General", Date: "2024-12-25", Time: "14:30", Doctor: "Dr. García",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Data.Status)
	assert.NotEmpty(t, created.Data.ID)

	do(r, http.MethodPost, "/api/appointments", models.AppointmentInput{
		Patient: "Ana", Specialty: "Cirugía", Date: "2024-12-26", Time: "10:00", Doctor: "Dra. Soto",
	})

	w = do(r, http.MethodGet, "/api/appointments?doctor=Dra.+Soto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []models.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Ana", list.Data[0].Patient)
}

func TestRecordStore_CreateRejectsMissingFields(t *testing.T) {
	store := &fakeStore{}
	r := newBackendRouter(store)

	w := do(r, http.MethodPost, "/api/appointments", map[string]string{"paciente": "Juan"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "especialidad")
	assert.Empty(t, store.records)
}

func TestRecordStore_UpdateDeleteNotFound(t *testing.T) {
	store := &fakeStore{records: []models.Appointment{{ID: "a1", Patient: "Ana", Status: models.StatusPending}}}
	r := newBackendRouter(store)

	w := do(r, http.MethodPut, "/api/appointments/a1", map[string]string{"estado": "confirmada"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"estado":"confirmada"`)

	w = do(r, http.MethodPut, "/api/appointments/a1", map[string]string{"estado": "perdida"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/api/appointments/a1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, http.MethodDelete, "/api/appointments/a1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/appointments/a1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClassifyHandler(t *testing.T) {
	r := newBackendRouter(&fakeStore{})

	w := do(r, http.MethodPost, "/api/chat", models.ChatRequest{Message: "Quiero agendar una cita"})

	require.Equal(t, http.StatusOK, w.Code)
	var out models.Classification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, models.IntentCreate, out.Intent)
	assert.NotEmpty(t, out.Response)

	w = do(r, http.MethodPost, "/api/chat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
