package editor

import (
	"errors"
	"fmt"
	"strings"

	"medibot/models"
	"medibot/services/appointments"

	"github.com/go-playground/validator/v10"
)

// Form field names, as used by Set and by classifier payloads.
const (
	FieldPatient   = "paciente"
	FieldSpecialty = "especialidad"
	FieldDate      = "fecha"
	FieldTime      = "hora"
	FieldDoctor    = "doctor"
	FieldNotes     = "notas"
	FieldStatus    = "estado"
)

// fieldAliases lets payloads written with English keys pre-fill the form too.
var fieldAliases = map[string]string{
	"patient":     FieldPatient,
	"patientname": FieldPatient,
	"specialty":   FieldSpecialty,
	"date":        FieldDate,
	"time":        FieldTime,
	"doctorname":  FieldDoctor,
	"notes":       FieldNotes,
	"status":      FieldStatus,
}

// ErrUnknownField is returned by Set for a name outside the form.
var ErrUnknownField = errors.New("unknown form field")

// Form is the editable state behind both editors.
type Form struct {
	Patient   string                   `json:"paciente" validate:"required"`
	Specialty string                   `json:"especialidad" validate:"required,specialty"`
	Date      string                   `json:"fecha" validate:"required"`
	Time      string                   `json:"hora" validate:"required"`
	Doctor    string                   `json:"doctor" validate:"required"`
	Notes     string                   `json:"notas"`
	Status    models.AppointmentStatus `json:"estado" validate:"omitempty,status"`
}

// FormFromRecord pre-fills a form with an existing appointment.
func FormFromRecord(a models.Appointment) Form {
	return Form{
		Patient:   a.Patient,
		Specialty: a.Specialty,
		Date:      a.Date,
		Time:      a.Time,
		Doctor:    a.Doctor,
		Notes:     a.Notes,
		Status:    a.Status,
	}
}

// FormFromPayload pre-fills a form from extracted classifier fields. Unknown keys
// are ignored.
func FormFromPayload(payload map[string]string) Form {
	var f Form
	for k, v := range payload {
		_ = f.Set(k, v)
	}
	return f
}

// Set assigns one field by name.
func (f *Form) Set(name, value string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := fieldAliases[key]; ok {
		key = alias
	}
	switch key {
	case FieldPatient:
		f.Patient = value
	case FieldSpecialty:
		f.Specialty = value
	case FieldDate:
		f.Date = value
	case FieldTime:
		f.Time = value
	case FieldDoctor:
		f.Doctor = value
	case FieldNotes:
		f.Notes = value
	case FieldStatus:
		f.Status = models.AppointmentStatus(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// Input converts the form to booking fields.
func (f Form) Input() models.AppointmentInput {
	return models.AppointmentInput{
		Patient:   strings.TrimSpace(f.Patient),
		Specialty: strings.TrimSpace(f.Specialty),
		Date:      strings.TrimSpace(f.Date),
		Time:      strings.TrimSpace(f.Time),
		Doctor:    strings.TrimSpace(f.Doctor),
		Notes:     f.Notes,
	}
}

// Update converts the form to a full update, status included.
func (f Form) Update() models.AppointmentUpdate {
	in := f.Input()
	status := f.Status
	return models.AppointmentUpdate{
		Patient:   &in.Patient,
		Specialty: &in.Specialty,
		Date:      &in.Date,
		Time:      &in.Time,
		Doctor:    &in.Doctor,
		Notes:     &in.Notes,
		Status:    &status,
	}
}

// Validate checks field presence (and the enumerated selectors). requireStatus is
// set by the edit flow, where the status selector always carries a value.
func (f Form) Validate(requireStatus bool) error {
	trimmed := f
	in := f.Input()
	trimmed.Patient, trimmed.Specialty, trimmed.Date, trimmed.Time, trimmed.Doctor =
		in.Patient, in.Specialty, in.Date, in.Time, in.Doctor

	var fields []string
	err := appointments.Validator().Struct(trimmed)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	} else if err != nil {
		return err
	}
	if requireStatus && f.Status == "" {
		fields = append(fields, FieldStatus)
	}
	if len(fields) > 0 {
		return &appointments.ValidationError{Fields: fields}
	}
	return nil
}

// Merge returns f with every non-empty field of other written over it.
func (f Form) Merge(other Form) Form {
	pick := func(base, over string) string {
		if strings.TrimSpace(over) != "" {
			return over
		}
		return base
	}
	f.Patient = pick(f.Patient, other.Patient)
	f.Specialty = pick(f.Specialty, other.Specialty)
	f.Date = pick(f.Date, other.Date)
	f.Time = pick(f.Time, other.Time)
	f.Doctor = pick(f.Doctor, other.Doctor)
	f.Notes = pick(f.Notes, other.Notes)
	f.Status = models.AppointmentStatus(pick(string(f.Status), string(other.Status)))
	return f
}

// Apply returns f with every field present in u written over it. A present empty
// value clears the field, so optional notes can be removed; clearing a required field
// fails at Validate.
func (f Form) Apply(u models.AppointmentUpdate) Form {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&f.Patient, u.Patient)
	set(&f.Specialty, u.Specialty)
	set(&f.Date, u.Date)
	set(&f.Time, u.Time)
	set(&f.Doctor, u.Doctor)
	set(&f.Notes, u.Notes)
	if u.Status != nil {
		f.Status = *u.Status
	}
	return f
}
