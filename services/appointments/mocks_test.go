package appointments

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"medibot/models"
)

// Compile-time check to ensure memStore implements RecordStore
var _ RecordStore = (*memStore)(nil)

// memStore is an in-memory RecordStore. Any XxxFunc that is set overrides the
// built-in behaviour.
type memStore struct {
	mu      sync.Mutex
	records []models.Appointment
	nextID  int

	ListFunc   func(ctx context.Context, filter *models.AppointmentFilter) ([]models.Appointment, error)
	CreateFunc func(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error)
	UpdateFunc func(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error)
	DeleteFunc func(ctx context.Context, id string) error

	ListCallCount   int32
	CreateCallCount int32
	UpdateCallCount int32
	DeleteCallCount int32
}

func newMemStore(seed ...models.Appointment) *memStore {
	return &memStore{records: append([]models.Appointment(nil), seed...), nextID: len(seed)}
}

func (m *memStore) List(ctx context.Context, filter *models.AppointmentFilter) ([]models.Appointment, error) {
	atomic.AddInt32(&m.ListCallCount, 1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range m.records {
		if filter == nil || filter.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.records {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	a := models.Appointment{
		ID:        fmt.Sprintf("apt-%d", m.nextID),
		Patient:   input.Patient,
		Specialty: input.Specialty,
		Date:      input.Date,
		Time:      input.Time,
		Doctor:    input.Doctor,
		Notes:     input.Notes,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.records = append(m.records, a)
	return &a, nil
}

func (m *memStore) Update(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error) {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, update)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID != id {
			continue
		}
		a := &m.records[i]
		if update.Patient != nil {
			a.Patient = *update.Patient
		}
		if update.Specialty != nil {
			a.Specialty = *update.Specialty
		}
		if update.Date != nil {
			a.Date = *update.Date
		}
		if update.Time != nil {
			a.Time = *update.Time
		}
		if update.Doctor != nil {
			a.Doctor = *update.Doctor
		}
		if update.Notes != nil {
			a.Notes = *update.Notes
		}
		if update.Status != nil {
			a.Status = *update.Status
		}
		a.UpdatedAt = a.UpdatedAt.Add(time.Minute)
		out := *a
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func validInput() models.AppointmentInput {
	return models.AppointmentInput{
		Patient:   "Juan Pérez",
		Specialty: "General",
		Date:      "2024-12-25",
		Time:      "14:30",
		Doctor:    "Dr. García",
	}
}
