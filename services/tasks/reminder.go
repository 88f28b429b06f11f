package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medibot/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSendReminder = "reminder:send"

// ErrUnschedulable is returned when the appointment's date and time cannot be read.
var ErrUnschedulable = errors.New("appointment date/time cannot be scheduled")

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}

	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues a reminder some lead time before each booked appointment.
type ReminderScheduler struct {
	queue    Enqueuer
	lead     time.Duration
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminderScheduler(queue Enqueuer, lead time.Duration, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{queue: queue, lead: lead, location: time.UTC, logger: logger, now: time.Now}
}

// WithLocation sets the zone appointment dates and times are read in. The default is
// UTC.
func (s *ReminderScheduler) WithLocation(loc *time.Location) *ReminderScheduler {
	if loc != nil {
		s.location = loc
	}
	return s
}

// FireTime is when the reminder for a should go out.
func (s *ReminderScheduler) FireTime(a models.Appointment) (time.Time, error) {
	at, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnschedulable, err)
	}
	return at.Add(-s.lead), nil
}

// ScheduleReminder enqueues the reminder. Appointments whose reminder time has
// already passed are skipped.
func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, userID string, a models.Appointment) error {
	fireAt, err := s.FireTime(a)
	if err != nil {
		return err
	}
	if !fireAt.After(s.now()) {
		s.logger.Debug("reminder time already passed, skipping", zap.String("appointment", a.ID))
		return nil
	}

	payload := models.ReminderPayload{
		ReminderID:    uuid.New().String(),
		UserID:        userID,
		AppointmentID: a.ID,
		Patient:       a.Patient,
		Doctor:        a.Doctor,
		FireDate:      fireAt.Format(time.RFC3339),
		Title:         "Recordatorio de cita",
		Body:          fmt.Sprintf("%s, tienes cita de %s con %s el %s a las %s.", a.Patient, a.Specialty, a.Doctor, a.Date, a.Time),
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	info, err := s.queue.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	s.logger.Info("reminder scheduled",
		zap.String("appointment", a.ID),
		zap.String("task", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}
