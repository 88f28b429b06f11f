package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medibot/models"
	"medibot/utils"

	"go.uber.org/zap"
)

type listEnvelope struct {
	Data []models.Appointment `json:"data"`
}

type itemEnvelope struct {
	Data *models.Appointment `json:"data"`
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// HTTPRecordStore talks to the Record Store REST API at BaseURL/appointments.
type HTTPRecordStore struct {
	BaseURL string
	HTTP    *http.Client
	// Token, when set, is sent as a bearer token on every call.
	Token  string
	logger *zap.Logger
}

// NewHTTPRecordStore returns a client rooted at baseURL (e.g. http://localhost:3001/api).
func NewHTTPRecordStore(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPRecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPRecordStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: logger,
	}
}

// List fetches appointments, optionally narrowed by filter.
func (s *HTTPRecordStore) List(ctx context.Context, filter *models.AppointmentFilter) ([]models.Appointment, error) {
	u := s.BaseURL + "/appointments"
	if q := filterQuery(filter); len(q) > 0 {
		u += "?" + q.Encode()
	}

	var env listEnvelope
	if err := s.do(ctx, http.MethodGet, u, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []models.Appointment{}, nil
	}
	return env.Data, nil
}

// GetByID fetches one appointment.
func (s *HTTPRecordStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var env itemEnvelope
	if err := s.do(ctx, http.MethodGet, s.itemURL(id), nil, &env); err != nil {
		return nil, err
	}
	return requireItem(env)
}

// Create books an appointment; the store assigns id, timestamps and status.
func (s *HTTPRecordStore) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	var env itemEnvelope
	if err := s.do(ctx, http.MethodPost, s.BaseURL+"/appointments", input, &env); err != nil {
		return nil, err
	}
	return requireItem(env)
}

// Update sends a partial update and returns the store's authoritative record.
func (s *HTTPRecordStore) Update(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error) {
	var env itemEnvelope
	if err := s.do(ctx, http.MethodPut, s.itemURL(id), update, &env); err != nil {
		return nil, err
	}
	return requireItem(env)
}

// Delete removes an appointment.
func (s *HTTPRecordStore) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, s.itemURL(id), nil, nil)
}

func (s *HTTPRecordStore) itemURL(id string) string {
	return s.BaseURL + "/appointments/" + url.PathEscape(id)
}

func (s *HTTPRecordStore) do(ctx context.Context, method, u string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", utils.FixedUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.HTTP.Do(req)
	if err != nil {
		s.logger.Error("record store request failed", zap.String("method", method), zap.String("url", u), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil {
			statusErr.Message = env.Message
			if statusErr.Message == "" {
				statusErr.Message = env.Error
			}
		}
		s.logger.Warn("record store rejected request",
			zap.String("method", method), zap.String("url", u), zap.Int("status", resp.StatusCode))
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, statusErr)
		}
		return statusErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func requireItem(env itemEnvelope) (*models.Appointment, error) {
	if env.Data == nil {
		return nil, fmt.Errorf("record store response has no data")
	}
	return env.Data, nil
}

func filterQuery(filter *models.AppointmentFilter) url.Values {
	q := url.Values{}
	if filter == nil {
		return q
	}
	if filter.Doctor != "" {
		q.Set("doctor", filter.Doctor)
	}
	if filter.Specialty != "" {
		q.Set("especialidad", filter.Specialty)
	}
	if filter.Date != "" {
		q.Set("fecha", filter.Date)
	}
	if filter.Patient != "" {
		q.Set("paciente", filter.Patient)
	}
	return q
}
