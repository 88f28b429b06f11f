package appointments

import (
	"context"
	"slices"
	"sync"

	"medibot/models"
	"medibot/utils"

	"go.uber.org/zap"
)

// DefaultCache mirrors the Record Store for one client.
//
// Loading and last-error are single fields shared by every operation: an operation
// clears the last error when it starts and records its own failure when it ends, so
// concurrent operations race on them and the last one to resolve wins. Records are
// only ever replaced as a whole slice, and only after the store has answered.
type DefaultCache struct {
	store  RecordStore
	logger *zap.Logger

	mu       sync.RWMutex
	records  []models.Appointment
	inflight int
	lastErr  error
}

// NewCache returns an empty cache backed by store.
func NewCache(store RecordStore, logger *zap.Logger) *DefaultCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCache{store: store, logger: logger}
}

// FetchAll replaces the records with the store's result for filter. A nil filter
// lists everything. On failure the previous records are kept.
func (c *DefaultCache) FetchAll(ctx context.Context, filter *models.AppointmentFilter) error {
	c.begin()
	list, err := c.store.List(ctx, filter)
	if err != nil {
		return c.end(OpFetch, err)
	}

	next := make([]models.Appointment, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, a := range list {
		if _, dup := seen[a.ID]; dup {
			c.logger.Warn("record store returned a duplicate appointment id", zap.String("id", a.ID))
			continue
		}
		seen[a.ID] = struct{}{}
		next = append(next, a)
	}

	c.mu.Lock()
	c.records = next
	c.mu.Unlock()

	c.logger.Debug("appointments fetched", zap.Int("count", len(next)))
	return c.end(OpFetch, nil)
}

// Create books a new appointment and appends the store's record. Missing required
// fields fail with a ValidationError before the store is contacted.
func (c *DefaultCache) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	input = NormalizeInput(input)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	c.begin()
	created, err := c.store.Create(ctx, input)
	if err != nil {
		return nil, c.end(OpCreate, err)
	}

	c.mu.Lock()
	if idx := indexOf(c.records, created.ID); idx >= 0 {
		// Keep ids unique even if the store hands back an id we already hold.
		next := slices.Clone(c.records)
		next[idx] = *created
		c.records = next
	} else {
		next := make([]models.Appointment, len(c.records), len(c.records)+1)
		copy(next, c.records)
		c.records = append(next, *created)
	}
	c.mu.Unlock()

	c.logger.Info("appointment created", zap.String("id", created.ID))
	return created, c.end(OpCreate, nil)
}

// Update applies a partial update at the store and replaces the cached entry in
// place with the store's answer. When id is not cached the list is left as is and
// the updated record is still returned; callers re-fetch to see it.
func (c *DefaultCache) Update(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error) {
	update = NormalizeUpdate(update)
	if err := ValidateUpdate(update); err != nil {
		return nil, err
	}

	c.begin()
	updated, err := c.store.Update(ctx, id, update)
	if err != nil {
		return nil, c.end(OpUpdate, err)
	}

	c.mu.Lock()
	if idx := indexOf(c.records, id); idx >= 0 {
		next := slices.Clone(c.records)
		next[idx] = *updated
		c.records = next
	} else {
		c.logger.Debug("updated appointment is not cached", zap.String("id", id))
	}
	c.mu.Unlock()

	return updated, c.end(OpUpdate, nil)
}

// Delete removes the appointment at the store and then from the cache.
func (c *DefaultCache) Delete(ctx context.Context, id string) error {
	c.begin()
	if err := c.store.Delete(ctx, id); err != nil {
		return c.end(OpDelete, err)
	}

	c.mu.Lock()
	if idx := indexOf(c.records, id); idx >= 0 {
		next := make([]models.Appointment, 0, len(c.records)-1)
		next = append(next, c.records[:idx]...)
		c.records = append(next, c.records[idx+1:]...)
	}
	c.mu.Unlock()

	c.logger.Info("appointment deleted", zap.String("id", id))
	return c.end(OpDelete, nil)
}

// GetByID looks an appointment up at the store without touching the records.
func (c *DefaultCache) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	c.begin()
	a, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, c.end(OpGet, err)
	}
	return a, c.end(OpGet, nil)
}

// Records returns a copy of the cached appointments in fetch/creation order.
func (c *DefaultCache) Records() []models.Appointment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.records)
}

// Lookup returns the cached appointment with id.
func (c *DefaultCache) Lookup(id string) (models.Appointment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := indexOf(c.records, id); idx >= 0 {
		return c.records[idx], true
	}
	return models.Appointment{}, false
}

// IsLoading reports whether at least one operation is outstanding.
func (c *DefaultCache) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight > 0
}

// LastError is the failure of the most recently resolved operation, if it failed
// and no operation has started since.
func (c *DefaultCache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *DefaultCache) begin() {
	c.mu.Lock()
	c.inflight++
	c.lastErr = nil
	c.mu.Unlock()
}

func (c *DefaultCache) end(op Op, err error) error {
	var out error
	if err != nil {
		out = &OperationError{Op: op, Err: err}
		c.logger.Warn("appointment operation failed", zap.String("op", string(op)), zap.Error(err))
	}

	c.mu.Lock()
	if c.inflight > 0 {
		c.inflight--
	}
	if out != nil {
		c.lastErr = out
	}
	c.mu.Unlock()

	utils.CacheOperations.WithLabelValues(string(op), utils.Outcome(err)).Inc()
	return out
}

func indexOf(records []models.Appointment, id string) int {
	return slices.IndexFunc(records, func(a models.Appointment) bool { return a.ID == id })
}
