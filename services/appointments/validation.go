package appointments

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"medibot/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the appointment rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("specialty", func(fl validator.FieldLevel) bool {
			return models.IsSpecialty(fl.Field().String())
		})
		_ = validate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return models.AppointmentStatus(fl.Field().String()).Valid()
		})
	})
	return validate
}

// NormalizeInput trims every field of input.
func NormalizeInput(input models.AppointmentInput) models.AppointmentInput {
	input.Patient = strings.TrimSpace(input.Patient)
	input.Specialty = strings.TrimSpace(input.Specialty)
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	input.Doctor = strings.TrimSpace(input.Doctor)
	input.Notes = strings.TrimSpace(input.Notes)
	return input
}

// NormalizeUpdate trims every present field of update. The caller's strings are not
// touched; the result points at fresh copies.
func NormalizeUpdate(update models.AppointmentUpdate) models.AppointmentUpdate {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	update.Patient = trim(update.Patient)
	update.Specialty = trim(update.Specialty)
	update.Date = trim(update.Date)
	update.Time = trim(update.Time)
	update.Doctor = trim(update.Doctor)
	update.Notes = trim(update.Notes)
	if update.Status != nil {
		st := models.AppointmentStatus(strings.TrimSpace(string(*update.Status)))
		update.Status = &st
	}
	return update
}

// ValidateInput checks the fields required to book. Whitespace-only values count as
// missing.
func ValidateInput(input models.AppointmentInput) error {
	return toValidationError(Validator().Struct(NormalizeInput(input)))
}

// ValidateUpdate rejects updates that blank out a required field or carry an unknown
// specialty or status. Nil fields are not checked.
func ValidateUpdate(update models.AppointmentUpdate) error {
	return toValidationError(Validator().Struct(NormalizeUpdate(update)))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}
