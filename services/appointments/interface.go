package appointments

import (
	"context"

	"medibot/models"
)

// RecordStore is the CRUD contract of the authoritative appointment store.
type RecordStore interface {
	List(ctx context.Context, filter *models.AppointmentFilter) ([]models.Appointment, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error)
	Update(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// Cache is the client-side mirror of the Record Store. See DefaultCache.
type Cache interface {
	FetchAll(ctx context.Context, filter *models.AppointmentFilter) error
	Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error)
	Update(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)

	Records() []models.Appointment
	Lookup(id string) (models.Appointment, bool)
	IsLoading() bool
	LastError() error
}
