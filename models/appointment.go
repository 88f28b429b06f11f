package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment as the Record Store spells it.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pendiente"
	StatusConfirmed AppointmentStatus = "confirmada"
	StatusCancelled AppointmentStatus = "cancelada"
	StatusCompleted AppointmentStatus = "completada"
)

// AppointmentStatuses lists every status the edit editor can select.
var AppointmentStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
}

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	for _, known := range AppointmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Specialties is the fixed set offered by the booking form.
var Specialties = []string{
	"Cardiología",
	"Dermatología",
	"Oftalmología",
	"Neurología",
	"General",
	"Pediatría",
	"Cirugía",
}

// IsSpecialty reports whether name is one of Specialties.
func IsSpecialty(name string) bool {
	for _, s := range Specialties {
		if s == name {
			return true
		}
	}
	return false
}

// Appointment is a record owned by the Record Store. ID and the timestamps are never
// written by clients.
type Appointment struct {
	ID        string            `bson:"id" json:"id"`
	Patient   string            `bson:"paciente" json:"paciente"`
	Specialty string            `bson:"especialidad" json:"especialidad"`
	Date      string            `bson:"fecha" json:"fecha"` // YYYY-MM-DD
	Time      string            `bson:"hora" json:"hora"`   // HH:MM
	Doctor    string            `bson:"doctor" json:"doctor"`
	Notes     string            `bson:"notas,omitempty" json:"notas,omitempty"`
	Status    AppointmentStatus `bson:"estado" json:"estado"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentInput carries the fields required to book an appointment.
type AppointmentInput struct {
	Patient   string `json:"paciente" validate:"required"`
	Specialty string `json:"especialidad" validate:"required,specialty"`
	Date      string `json:"fecha" validate:"required"`
	Time      string `json:"hora" validate:"required"`
	Doctor    string `json:"doctor" validate:"required"`
	Notes     string `json:"notas,omitempty"`
}

// AppointmentUpdate is a partial update; nil fields are left untouched by the store.
type AppointmentUpdate struct {
	Patient   *string            `json:"paciente,omitempty" bson:"paciente,omitempty" validate:"omitnil,min=1"`
	Specialty *string            `json:"especialidad,omitempty" bson:"especialidad,omitempty" validate:"omitnil,min=1,specialty"`
	Date      *string            `json:"fecha,omitempty" bson:"fecha,omitempty" validate:"omitnil,min=1"`
	Time      *string            `json:"hora,omitempty" bson:"hora,omitempty" validate:"omitnil,min=1"`
	Doctor    *string            `json:"doctor,omitempty" bson:"doctor,omitempty" validate:"omitnil,min=1"`
	Notes     *string            `json:"notas,omitempty" bson:"notas,omitempty"`
	Status    *AppointmentStatus `json:"estado,omitempty" bson:"estado,omitempty" validate:"omitnil,status"`
}

// Empty reports whether the update carries no field at all.
func (u AppointmentUpdate) Empty() bool {
	return u.Patient == nil && u.Specialty == nil && u.Date == nil && u.Time == nil &&
		u.Doctor == nil && u.Notes == nil && u.Status == nil
}

// AppointmentFilter narrows a listing. Empty fields are ignored; the rest must all
// match exactly.
type AppointmentFilter struct {
	Doctor    string `form:"doctor" json:"doctor,omitempty"`
	Specialty string `form:"especialidad" json:"especialidad,omitempty"`
	Date      string `form:"fecha" json:"fecha,omitempty"`
	Patient   string `form:"paciente" json:"paciente,omitempty"`
}

// Matches reports whether a satisfies every non-empty field of f.
func (f AppointmentFilter) Matches(a Appointment) bool {
	if f.Doctor != "" && f.Doctor != a.Doctor {
		return false
	}
	if f.Specialty != "" && f.Specialty != a.Specialty {
		return false
	}
	if f.Date != "" && f.Date != a.Date {
		return false
	}
	if f.Patient != "" && f.Patient != a.Patient {
		return false
	}
	return true
}

// StringPtr is a small helper for building partial updates.
func StringPtr(s string) *string { return &s }

// StatusPtr is the AppointmentStatus counterpart of StringPtr.
func StatusPtr(s AppointmentStatus) *AppointmentStatus { return &s }
