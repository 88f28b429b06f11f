package editor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"medibot/models"
	"medibot/services/appointments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ appointments.Cache = (*fakeCache)(nil)

type fakeCache struct {
	CreateFunc func(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error)
	UpdateFunc func(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error)

	CreateCallCount int32
	UpdateCallCount int32
}

func (f *fakeCache) FetchAll(context.Context, *models.AppointmentFilter) error { return nil }

func (f *fakeCache) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	atomic.AddInt32(&f.CreateCallCount, 1)
	return f.CreateFunc(ctx, input)
}

func (f *fakeCache) Update(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error) {
	atomic.AddInt32(&f.UpdateCallCount, 1)
	return f.UpdateFunc(ctx, id, update)
}

func (f *fakeCache) Delete(context.Context, string) error { return nil }

func (f *fakeCache) GetByID(context.Context, string) (*models.Appointment, error) {
	return nil, appointments.ErrNotFound
}

func (f *fakeCache) Records() []models.Appointment { return nil }

func (f *fakeCache) Lookup(string) (models.Appointment, bool) { return models.Appointment{}, false }

func (f *fakeCache) IsLoading() bool { return false }

func (f *fakeCache) LastError() error { return nil }

func fillValid(t *testing.T, e *CreateEditor) {
	t.Helper()
	require.NoError(t, e.Set(FieldPatient, "Juan Pérez"))
	require.NoError(t, e.Set(FieldSpecialty, "General"))
	require.NoError(t, e.Set(FieldDate, "2024-12-25"))
	require.NoError(t, e.Set(FieldTime, "14:30"))
	require.NoError(t, e.Set(FieldDoctor, "Dr. García"))
}

func TestCreateEditor_PrefillsFromPayload(t *testing.T) {
	e := NewCreateEditor(&fakeCache{}, map[string]string{
		"especialidad": "Cardiología",
		"date":         "2024-12-25",
		"unrelated":    "x",
	}, nil)

	st := e.State()
	assert.True(t, st.Open)
	assert.Equal(t, ModeCreate, st.Mode)
	assert.Equal(t, "Cardiología", st.Form.Specialty)
	assert.Equal(t, "2024-12-25", st.Form.Date)
	assert.Empty(t, st.Form.Patient)
}

func TestCreateEditor_SubmitSuccess(t *testing.T) {
	cache := &fakeCache{CreateFunc: func(_ context.Context, in models.AppointmentInput) (*models.Appointment, error) {
		return &models.Appointment{ID: "apt-1", Patient: in.Patient, Status: models.StatusPending}, nil
	}}
	var got *models.Appointment
	e := NewCreateEditor(cache, nil, func(_ context.Context, a *models.Appointment) { got = a })
	fillValid(t, e)

	saved, err := e.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "apt-1", saved.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Juan Pérez", got.Patient)
	assert.False(t, e.IsOpen())
	assert.Empty(t, e.ErrorText())
	assert.Equal(t, Form{}, e.State().Form)
}

func TestCreateEditor_MissingFieldsBlockSubmission(t *testing.T) {
	cache := &fakeCache{}
	called := false
	e := NewCreateEditor(cache, nil, func(context.Context, *models.Appointment) { called = true })
	require.NoError(t, e.Set(FieldPatient, "Juan Pérez"))
	require.NoError(t, e.Set(FieldDoctor, "   "))

	_, err := e.Submit(context.Background())

	var verr *appointments.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"especialidad", "fecha", "hora", "doctor"}, verr.Fields)
	assert.Equal(t, int32(0), cache.CreateCallCount)
	assert.True(t, e.IsOpen())
	assert.False(t, called)
}

func TestCreateEditor_UnknownSpecialtyRejected(t *testing.T) {
	cache := &fakeCache{}
	e := NewCreateEditor(cache, nil, nil)
	fillValid(t, e)
	require.NoError(t, e.Set(FieldSpecialty, "Astrología"))

	_, err := e.Submit(context.Background())

	var verr *appointments.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"especialidad"}, verr.Fields)
	assert.Equal(t, int32(0), cache.CreateCallCount)
}

func TestCreateEditor_FailureShownInlineAndRetryable(t *testing.T) {
	fail := true
	cache := &fakeCache{CreateFunc: func(context.Context, models.AppointmentInput) (*models.Appointment, error) {
		if fail {
			return nil, &appointments.OperationError{Op: appointments.OpCreate, Err: errors.New("horario no disponible")}
		}
		return &models.Appointment{ID: "apt-2"}, nil
	}}
	successes := 0
	e := NewCreateEditor(cache, nil, func(context.Context, *models.Appointment) { successes++ })
	fillValid(t, e)

	_, err := e.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, e.IsOpen())
	assert.Equal(t, "horario no disponible", e.ErrorText())
	assert.Equal(t, "Juan Pérez", e.State().Form.Patient)
	assert.Zero(t, successes)

	fail = false
	_, err = e.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, e.IsOpen())
	assert.Equal(t, 1, successes)
	assert.Equal(t, int32(2), cache.CreateCallCount)
}

func TestCreateEditor_ClosedRejectsSubmit(t *testing.T) {
	e := NewCreateEditor(&fakeCache{}, nil, nil)
	e.Close()

	_, err := e.Submit(context.Background())

	assert.ErrorIs(t, err, ErrClosed)
}

func TestEditEditor_SendsFullUpdate(t *testing.T) {
	record := models.Appointment{
		ID: "apt-7", Patient: "Ana Soto", Specialty: "Pediatría", Date: "2024-11-02",
		Time: "10:00", Doctor: "Dra. Ruiz", Status: models.StatusPending,
	}
	var sentID string
	var sent models.AppointmentUpdate
	cache := &fakeCache{UpdateFunc: func(_ context.Context, id string, u models.AppointmentUpdate) (*models.Appointment, error) {
		sentID, sent = id, u
		out := record
		out.Status = *u.Status
		return &out, nil
	}}
	e := NewEditEditor(cache, record, nil)
	assert.Equal(t, "apt-7", e.RecordID())
	assert.Equal(t, "Ana Soto", e.State().Form.Patient)

	require.NoError(t, e.Set(FieldStatus, string(models.StatusConfirmed)))
	saved, err := e.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "apt-7", sentID)
	require.NotNil(t, sent.Patient)
	assert.Equal(t, "Ana Soto", *sent.Patient)
	assert.Equal(t, models.StatusConfirmed, *sent.Status)
	assert.Equal(t, models.StatusConfirmed, saved.Status)
	assert.False(t, e.IsOpen())
}

func TestEditEditor_RequiresStatus(t *testing.T) {
	cache := &fakeCache{}
	e := NewEditEditor(cache, models.Appointment{
		ID: "apt-1", Patient: "Ana", Specialty: "General", Date: "2024-11-02", Time: "10:00", Doctor: "Dr. Paz",
	}, nil)

	_, err := e.Submit(context.Background())

	var verr *appointments.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"estado"}, verr.Fields)
	assert.Equal(t, int32(0), cache.UpdateCallCount)
}

func TestEditEditor_ClearsNotes(t *testing.T) {
	record := models.Appointment{
		ID: "apt-3", Patient: "Ana", Specialty: "General", Date: "2024-11-02",
		Time: "10:00", Doctor: "Dr. Paz", Notes: "traer exámenes", Status: models.StatusPending,
	}
	var sent models.AppointmentUpdate
	cache := &fakeCache{UpdateFunc: func(_ context.Context, _ string, u models.AppointmentUpdate) (*models.Appointment, error) {
		sent = u
		out := record
		out.Notes = *u.Notes
		return &out, nil
	}}
	e := NewEditEditor(cache, record, nil)

	e.SetForm(e.State().Form.Apply(models.AppointmentUpdate{Notes: models.StringPtr(""), Time: models.StringPtr("11:00")}))
	saved, err := e.Submit(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sent.Notes)
	assert.Empty(t, *sent.Notes)
	assert.Equal(t, "11:00", *sent.Time)
	assert.Equal(t, "Dr. Paz", *sent.Doctor)
	assert.Empty(t, saved.Notes)
}

func TestForm_ApplyBlankRequiredFieldFailsValidation(t *testing.T) {
	f := FormFromRecord(models.Appointment{
		Patient: "Ana", Specialty: "General", Date: "2024-11-02", Time: "10:00", Doctor: "Dr. Paz", Status: models.StatusPending,
	}).Apply(models.AppointmentUpdate{Doctor: models.StringPtr("")})

	var verr *appointments.ValidationError
	require.ErrorAs(t, f.Validate(true), &verr)
	assert.Equal(t, []string{FieldDoctor}, verr.Fields)
}

func TestForm_SetUnknownField(t *testing.T) {
	var f Form
	assert.ErrorIs(t, f.Set("telefono", "123"), ErrUnknownField)
}
