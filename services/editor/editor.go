package editor

import (
	"context"
	"errors"
	"sync"

	"medibot/models"
	"medibot/services/appointments"
)

// ErrSubmitting is returned when Submit is called while a submission is pending.
var ErrSubmitting = errors.New("editor is already submitting")

// ErrClosed is returned when Submit is called on a closed editor.
var ErrClosed = errors.New("editor is closed")

// SuccessFunc is called once a submission has been accepted by the cache.
type SuccessFunc func(ctx context.Context, a *models.Appointment)

// State is a snapshot of an editor, as rendered to the user.
type State struct {
	Mode       string `json:"mode"`
	RecordID   string `json:"recordId,omitempty"`
	Form       Form   `json:"form"`
	Open       bool   `json:"open"`
	Submitting bool   `json:"submitting"`
	Error      string `json:"error,omitempty"`
}

const (
	ModeCreate = "create"
	ModeEdit   = "edit"
)

// editor holds what both forms share. submit performs the cache call.
type editor struct {
	mode          string
	recordID      string
	requireStatus bool
	submit        func(ctx context.Context, f Form) (*models.Appointment, error)
	onSuccess     SuccessFunc
	resetOnClose  bool

	mu         sync.Mutex
	form       Form
	open       bool
	submitting bool
	errText    string
}

func (e *editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Mode:       e.mode,
		RecordID:   e.recordID,
		Form:       e.form,
		Open:       e.open,
		Submitting: e.submitting,
		Error:      e.errText,
	}
}

// Set changes one form field by name.
func (e *editor) Set(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form.Set(name, value)
}

// SetForm replaces the whole form.
func (e *editor) SetForm(f Form) {
	e.mu.Lock()
	e.form = f
	e.mu.Unlock()
}

func (e *editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// ErrorText is the inline error shown inside the form, empty when there is none.
func (e *editor) ErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errText
}

// Close dismisses the editor without submitting.
func (e *editor) Close() {
	e.mu.Lock()
	e.open = false
	e.errText = ""
	e.mu.Unlock()
}

// Submit validates the form and hands it to the cache. Missing fields block the
// submission. A cache failure is shown inline and the editor stays open so the user
// can retry. On success the editor closes and the success callback runs.
func (e *editor) Submit(ctx context.Context) (*models.Appointment, error) {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if e.submitting {
		e.mu.Unlock()
		return nil, ErrSubmitting
	}
	form := e.form
	if err := form.Validate(e.requireStatus); err != nil {
		e.errText = err.Error()
		e.mu.Unlock()
		return nil, err
	}
	e.submitting = true
	e.errText = ""
	e.mu.Unlock()

	saved, err := e.submit(ctx, form)

	e.mu.Lock()
	e.submitting = false
	if err != nil {
		e.errText = inlineMessage(err)
		e.mu.Unlock()
		return nil, err
	}
	e.open = false
	if e.resetOnClose {
		e.form = Form{}
	}
	e.mu.Unlock()

	if e.onSuccess != nil {
		e.onSuccess(ctx, saved)
	}
	return saved, nil
}

// inlineMessage unwraps the operation prefix so the form shows the store's own text.
func inlineMessage(err error) string {
	var opErr *appointments.OperationError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return err.Error()
}

// CreateEditor books a new appointment.
type CreateEditor struct {
	editor
}

// NewCreateEditor opens a create form, pre-filled from payload when given.
func NewCreateEditor(cache appointments.Cache, payload map[string]string, onSuccess SuccessFunc) *CreateEditor {
	e := &CreateEditor{editor{
		mode:         ModeCreate,
		onSuccess:    onSuccess,
		resetOnClose: true,
		form:         FormFromPayload(payload),
		open:         true,
	}}
	e.submit = func(ctx context.Context, f Form) (*models.Appointment, error) {
		return cache.Create(ctx, f.Input())
	}
	return e
}

// EditEditor changes an existing appointment, status included.
type EditEditor struct {
	editor
}

// NewEditEditor opens an edit form pre-filled with record.
func NewEditEditor(cache appointments.Cache, record models.Appointment, onSuccess SuccessFunc) *EditEditor {
	e := &EditEditor{editor{
		mode:          ModeEdit,
		recordID:      record.ID,
		requireStatus: true,
		onSuccess:     onSuccess,
		form:          FormFromRecord(record),
		open:          true,
	}}
	id := record.ID
	e.submit = func(ctx context.Context, f Form) (*models.Appointment, error) {
		return cache.Update(ctx, id, f.Update())
	}
	return e
}

// RecordID is the id of the appointment being edited.
func (e *EditEditor) RecordID() string {
	return e.recordID
}
