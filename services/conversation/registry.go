package conversation

import (
	"sync"

	"go.uber.org/zap"
)

// Factory builds a fresh conversation for a user.
type Factory func(userID string) *Orchestrator

// Registry keeps one conversation per signed-in user.
type Registry struct {
	factory Factory
	logger  *zap.Logger

	mu    sync.Mutex
	convs map[string]*Orchestrator
}

func NewRegistry(factory Factory, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{factory: factory, logger: logger, convs: map[string]*Orchestrator{}}
}

// Get returns the user's conversation, starting one on first use.
func (r *Registry) Get(userID string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.convs[userID]; ok {
		return o
	}
	o := r.factory(userID)
	r.convs[userID] = o
	r.logger.Debug("conversation started", zap.String("user", userID))
	return o
}

// Drop forgets the user's conversation, e.g. on logout.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.convs, userID)
	r.mu.Unlock()
}

// Len is the number of live conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}
