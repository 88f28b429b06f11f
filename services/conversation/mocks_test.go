package conversation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"medibot/models"
	"medibot/services/appointments"
)

var _ appointments.RecordStore = (*stubStore)(nil)

// stubStore is a minimal in-memory Record Store.
type stubStore struct {
	mu      sync.Mutex
	records []models.Appointment
	nextID  int

	ListErr   error
	DeleteErr error

	ListCallCount   int32
	CreateCallCount int32
}

func (s *stubStore) List(_ context.Context, filter *models.AppointmentFilter) ([]models.Appointment, error) {
	atomic.AddInt32(&s.ListCallCount, 1)
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range s.records {
		if filter == nil || filter.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.records {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, appointments.ErrNotFound
}

func (s *stubStore) Create(_ context.Context, in models.AppointmentInput) (*models.Appointment, error) {
	atomic.AddInt32(&s.CreateCallCount, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a := models.Appointment{
		ID:        fmt.Sprintf("apt-%d", s.nextID),
		Patient:   in.Patient,
		Specialty: in.Specialty,
		Date:      in.Date,
		Time:      in.Time,
		Doctor:    in.Doctor,
		Notes:     in.Notes,
		Status:    models.StatusPending,
	}
	s.records = append(s.records, a)
	return &a, nil
}

func (s *stubStore) Update(_ context.Context, id string, u models.AppointmentUpdate) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if u.Status != nil {
			s.records[i].Status = *u.Status
		}
		if u.Time != nil {
			s.records[i].Time = *u.Time
		}
		out := s.records[i]
		return &out, nil
	}
	return nil, appointments.ErrNotFound
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return appointments.ErrNotFound
}

func (s *stubStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type recordingScheduler struct {
	mu    sync.Mutex
	calls []models.Appointment
	users []string
}

func (r *recordingScheduler) ScheduleReminder(_ context.Context, userID string, a models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, a)
	r.users = append(r.users, userID)
	return nil
}
