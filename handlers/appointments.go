package handlers

import (
	"errors"
	"net/http"

	"medibot/models"
	"medibot/services/appointments"
	"medibot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the reference Record Store.
type AppointmentHandler struct {
	Store appointments.RecordStore
}

// storeError answers a failed store call; unknown ids are 404.
func storeError(c *gin.Context, msg string, err error) {
	logger := utils.GetLogger()
	if errors.Is(err, appointments.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cita no encontrada"})
		return
	}
	logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// ListAppointmentsHandler handles GET /api/appointments?doctor&especialidad&fecha&paciente.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	var filter models.AppointmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := h.Store.List(c.Request.Context(), &filter)
	if err != nil {
		storeError(c, "Error al obtener las citas", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GetAppointmentHandler handles GET /api/appointments/:id.
func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	a, err := h.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, "Error al obtener la cita", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

// CreateAppointmentHandler handles POST /api/appointments.
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	var input models.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input = appointments.NormalizeInput(input)
	if err := appointments.ValidateInput(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.Store.Create(c.Request.Context(), input)
	if err != nil {
		storeError(c, "Error al crear la cita", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": a})
}

// UpdateAppointmentHandler handles PUT /api/appointments/:id. Only the fields present
// in the body change.
func (h *AppointmentHandler) UpdateAppointmentHandler(c *gin.Context) {
	var update models.AppointmentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update = appointments.NormalizeUpdate(update)
	if err := appointments.ValidateUpdate(update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.Store.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		storeError(c, "Error al actualizar la cita", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

// DeleteAppointmentHandler handles DELETE /api/appointments/:id.
func (h *AppointmentHandler) DeleteAppointmentHandler(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, "Error al eliminar la cita", err)
		return
	}
	c.Status(http.StatusNoContent)
}
