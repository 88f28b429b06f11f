package conversation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"medibot/models"
	"medibot/services/appointments"
	"medibot/services/editor"
	ai "medibot/services/intelligence"
	"medibot/utils"

	"go.uber.org/zap"
)

// Fixed bot texts.
const (
	GreetingText         = "¡Hola! Soy tu asistente médico. Puedo ayudarte a agendar, ver, modificar o cancelar tus citas. ¿En qué te puedo ayudar?"
	ClassifierErrorText  = "Lo siento, hubo un error al procesar tu mensaje. Por favor, intenta de nuevo."
	BookingConfirmedText = "¡Perfecto! Tu cita ha sido agendada exitosamente. Te enviaremos un recordatorio antes de la consulta."
	UpdateConfirmedText  = "La cita ha sido actualizada correctamente."
	CancelConfirmedText  = "La cita ha sido cancelada correctamente."
	updateFailedFormat   = "No se pudo actualizar la cita: %s"
	cancelFailedFormat   = "No se pudo cancelar la cita: %s"
	viewFailedFormat     = "No se pudieron cargar tus citas: %s"
)

var (
	// ErrBusy is returned by Submit while the previous message is still being classified.
	ErrBusy = errors.New("conversation is waiting for the classifier")
	// ErrMessageNotFound is returned for an unknown message id.
	ErrMessageNotFound = errors.New("message not found")
	// ErrNoAffordance is returned when a message does not carry the requested action.
	ErrNoAffordance = errors.New("message has no such action")
	// ErrRecordNotCached is returned when editing an appointment the cache does not hold.
	ErrRecordNotCached = errors.New("appointment is not in the current list")
)

// ReminderScheduler queues a reminder for a freshly booked appointment.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, userID string, a models.Appointment) error
}

// Options configures an Orchestrator. Every field is optional.
type Options struct {
	UserID    string
	Logger    *zap.Logger
	Reminders ReminderScheduler
	Clock     func() time.Time
}

// Orchestrator owns one conversation: the transcript, the busy flag and the set of
// expanded list views. Classification and record changes go through the injected
// classifier and cache; no lock is held while they run.
type Orchestrator struct {
	cache      appointments.Cache
	classifier ai.Classifier
	reminders  ReminderScheduler
	userID     string
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.RWMutex
	messages []models.Message
	seq      uint64
	busy     bool
	expanded map[string]bool
}

// New starts a conversation with the greeting already in the transcript.
func New(cache appointments.Cache, classifier ai.Classifier, opts Options) *Orchestrator {
	o := &Orchestrator{
		cache:      cache,
		classifier: classifier,
		reminders:  opts.Reminders,
		userID:     opts.UserID,
		logger:     opts.Logger,
		now:        opts.Clock,
		expanded:   map[string]bool{},
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.mu.Lock()
	o.appendLocked(GreetingText, models.SenderBot, nil)
	o.mu.Unlock()
	return o
}

// Cache is the appointment cache this conversation reads from.
func (o *Orchestrator) Cache() appointments.Cache {
	return o.cache
}

// Messages returns a copy of the transcript in insertion order.
func (o *Orchestrator) Messages() []models.Message {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]models.Message, len(o.messages))
	for i, m := range o.messages {
		out[i] = m.Clone()
	}
	return out
}

// Busy reports whether a message is waiting for the classifier.
func (o *Orchestrator) Busy() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.busy
}

// Submit sends one user message. Blank text is ignored and returns (nil, nil). The
// user message is appended before the classifier is called; exactly one bot message
// follows, either the classifier's reply or ClassifierErrorText. The returned message
// is that bot reply.
func (o *Orchestrator) Submit(ctx context.Context, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.busy = true
	o.appendLocked(text, models.SenderUser, nil)
	o.mu.Unlock()

	start := time.Now()
	cls, err := o.classifier.Classify(ctx, text)
	if err == nil && (cls == nil || strings.TrimSpace(cls.Response) == "") {
		err = &ai.ClassificationError{Reason: "empty reply"}
	}
	utils.ClassifierLatency.Observe(time.Since(start).Seconds())
	utils.ClassifierCalls.WithLabelValues(utils.Outcome(err)).Inc()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false
	if err != nil {
		o.logger.Warn("classification failed", zap.String("user", o.userID), zap.Error(err))
		reply := o.appendLocked(ClassifierErrorText, models.SenderBot, nil)
		return &reply, nil
	}
	reply := o.appendLocked(cls.Response, models.SenderBot, boundActionFor(cls)).Clone()
	return &reply, nil
}

// boundActionFor maps a classification to the affordance of its reply.
func boundActionFor(cls *models.Classification) *models.BoundAction {
	switch cls.Intent {
	case models.IntentCreate:
		payload := make(map[string]string, len(cls.Data))
		for k, v := range cls.Data {
			payload[k] = v
		}
		return &models.BoundAction{Kind: models.ActionCreateAppointment, Payload: payload}
	case models.IntentView:
		return &models.BoundAction{Kind: models.ActionViewAppointments}
	default:
		return nil
	}
}

// OpenCreateEditor activates the create affordance of a bot message and returns a
// create editor pre-filled with the extracted fields. Every activation opens a fresh
// editor.
func (o *Orchestrator) OpenCreateEditor(messageID string) (*editor.CreateEditor, error) {
	msg, err := o.actionMessage(messageID, models.ActionCreateAppointment)
	if err != nil {
		return nil, err
	}
	return editor.NewCreateEditor(o.cache, msg.Action.Payload, o.bookingSucceeded), nil
}

func (o *Orchestrator) bookingSucceeded(ctx context.Context, a *models.Appointment) {
	o.appendBot(BookingConfirmedText)

	if o.reminders != nil && a != nil {
		if err := o.reminders.ScheduleReminder(ctx, o.userID, *a); err != nil {
			o.logger.Warn("failed to schedule reminder", zap.String("appointment", a.ID), zap.Error(err))
		}
	}
	// The failure, if any, stays on the cache's LastError.
	if err := o.cache.FetchAll(ctx, nil); err != nil {
		o.logger.Warn("refresh after booking failed", zap.Error(err))
	}
}

// ActivateView activates a view affordance: the message is expanded and the list is
// refreshed. A failed refresh is reported as a bot message and returned; the message
// stays expanded over whatever records the cache still holds.
func (o *Orchestrator) ActivateView(ctx context.Context, messageID string) error {
	if _, err := o.actionMessage(messageID, models.ActionViewAppointments); err != nil {
		return err
	}
	o.mu.Lock()
	o.expanded[messageID] = true
	o.mu.Unlock()

	if err := o.cache.FetchAll(ctx, nil); err != nil {
		o.appendBot(fmt.Sprintf(viewFailedFormat, userFacing(err)))
		return err
	}
	return nil
}

// UpdateRecord is the inline edit control of a rendered record.
func (o *Orchestrator) UpdateRecord(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error) {
	updated, err := o.cache.Update(ctx, id, update)
	if err != nil {
		o.appendBot(fmt.Sprintf(updateFailedFormat, userFacing(err)))
		return nil, err
	}
	o.appendBot(UpdateConfirmedText)
	return updated, nil
}

// CancelRecord is the inline cancel control of a rendered record.
func (o *Orchestrator) CancelRecord(ctx context.Context, id string) error {
	if err := o.cache.Delete(ctx, id); err != nil {
		o.appendBot(fmt.Sprintf(cancelFailedFormat, userFacing(err)))
		return err
	}
	o.appendBot(CancelConfirmedText)
	return nil
}

// OpenEditEditor opens an edit editor for a record in the current list.
func (o *Orchestrator) OpenEditEditor(id string) (*editor.EditEditor, error) {
	record, ok := o.cache.Lookup(id)
	if !ok {
		return nil, ErrRecordNotCached
	}
	return editor.NewEditEditor(o.cache, record, func(context.Context, *models.Appointment) {
		o.appendBot(UpdateConfirmedText)
	}), nil
}

func (o *Orchestrator) actionMessage(messageID string, kind models.ActionKind) (models.Message, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	idx := o.indexLocked(messageID)
	if idx < 0 {
		return models.Message{}, ErrMessageNotFound
	}
	msg := o.messages[idx]
	if msg.Action == nil || msg.Action.Kind != kind {
		return models.Message{}, fmt.Errorf("%w: %s", ErrNoAffordance, kind)
	}
	return msg.Clone(), nil
}

func (o *Orchestrator) appendBot(text string) {
	o.mu.Lock()
	o.appendLocked(text, models.SenderBot, nil)
	o.mu.Unlock()
}

func (o *Orchestrator) appendLocked(text string, sender models.Sender, action *models.BoundAction) models.Message {
	o.seq++
	msg := models.Message{
		ID:        strconv.FormatUint(o.seq, 10),
		Text:      text,
		Sender:    sender,
		Timestamp: o.now(),
		Action:    action,
	}
	o.messages = append(o.messages, msg)
	return msg
}

func (o *Orchestrator) indexLocked(id string) int {
	return slices.IndexFunc(o.messages, func(m models.Message) bool { return m.ID == id })
}

// userFacing drops the operation prefix and keeps the store's own text.
func userFacing(err error) string {
	var opErr *appointments.OperationError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return err.Error()
}
