package appointmentRepo

import (
	"strings"
	"time"

	"medibot/models"

	"go.mongodb.org/mongo-driver/bson"
)

// NewRecord builds the stored document for a booking.
func NewRecord(input models.AppointmentInput, id string, now time.Time) models.Appointment {
	return models.Appointment{
		ID:        id,
		Patient:   strings.TrimSpace(input.Patient),
		Specialty: strings.TrimSpace(input.Specialty),
		Date:      strings.TrimSpace(input.Date),
		Time:      strings.TrimSpace(input.Time),
		Doctor:    strings.TrimSpace(input.Doctor),
		Notes:     input.Notes,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FilterDoc turns a listing filter into an exact-match query.
func FilterDoc(filter *models.AppointmentFilter) bson.M {
	doc := bson.M{}
	if filter == nil {
		return doc
	}
	if filter.Doctor != "" {
		doc["doctor"] = filter.Doctor
	}
	if filter.Specialty != "" {
		doc["especialidad"] = filter.Specialty
	}
	if filter.Date != "" {
		doc["fecha"] = filter.Date
	}
	if filter.Patient != "" {
		doc["paciente"] = filter.Patient
	}
	return doc
}

// UpdateDoc sets only the provided fields, plus updatedAt.
func UpdateDoc(update models.AppointmentUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("paciente", update.Patient)
	put("especialidad", update.Specialty)
	put("fecha", update.Date)
	put("hora", update.Time)
	put("doctor", update.Doctor)
	put("notas", update.Notes)
	if update.Status != nil {
		set["estado"] = *update.Status
	}
	return bson.M{"$set": set}
}
