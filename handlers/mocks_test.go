package handlers

import (
	"context"
	"fmt"
	"sync"

	"medibot/models"
	"medibot/services/appointments"
)

var _ appointments.RecordStore = (*fakeStore)(nil)

// fakeStore is an in-memory RecordStore shared by the backend and assistant tests.
type fakeStore struct {
	mu      sync.Mutex
	records []models.Appointment
	nextID  int

	ListErr error
}

func (s *fakeStore) List(_ context.Context, filter *models.AppointmentFilter) ([]models.Appointment, error) {
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

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Appointment, error) {
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

func (s *fakeStore) Create(_ context.Context, in models.AppointmentInput) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a := models.Appointment{
		ID: fmt.Sprintf("apt-%d", s.nextID), Patient: in.Patient, Specialty: in.Specialty,
		Date: in.Date, Time: in.Time, Doctor: in.Doctor, Notes: in.Notes, Status: models.StatusPending,
	}
	s.records = append(s.records, a)
	return &a, nil
}

func (s *fakeStore) Update(_ context.Context, id string, u models.AppointmentUpdate) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		a := &s.records[i]
		if u.Patient != nil {
			a.Patient = *u.Patient
		}
		if u.Specialty != nil {
			a.Specialty = *u.Specialty
		}
		if u.Date != nil {
			a.Date = *u.Date
		}
		if u.Time != nil {
			a.Time = *u.Time
		}
		if u.Doctor != nil {
			a.Doctor = *u.Doctor
		}
		if u.Notes != nil {
			a.Notes = *u.Notes
		}
		if u.Status != nil {
			a.Status = *u.Status
		}
		out := *a
		return &out, nil
	}
	return nil, appointments.ErrNotFound
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
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
