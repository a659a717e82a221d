package ledger

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Service opens ledgers on demand, one per username, and hands the same
// instance back on every subsequent request so all callers share a single
// lock per user. It is an explicit dependency of both front-ends; there is
// no package-level state.
type Service struct {
	store  storage.Store
	events Publisher

	mu   sync.Mutex
	open map[string]*Ledger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher attaches a best-effort event publisher invoked after each
// mutation.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// NewService creates a Service over the given store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		open:  make(map[string]*Ledger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the ledger for a username, loading it from storage on first
// access. The username must match the restricted character set before any
// storage location is derived from it.
func (s *Service) Open(ctx context.Context, username string) (*Ledger, error) {
	if err := core.ValidateUsername(username); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.open[username]; ok {
		return l, nil
	}

	snap, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", username, err)
	}
	l := newLedger(username, s.store, s.events, snap)
	s.open[username] = l
	return l, nil
}
