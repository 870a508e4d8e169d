package store

import (
	"context"
	"sync"
	"time"

	"familydir/internal/auth/models"
	"familydir/pkg/platform/sentinel"
)

// InMemoryStore is a single-process LinkStore for development and tests.
type InMemoryStore struct {
	mu    sync.Mutex
	links map[string]models.MagicLink
	now   func() time.Time
}

type MemoryOption func(*InMemoryStore)

// WithClock overrides the store clock.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) { s.now = now }
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		links: make(map[string]models.MagicLink),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Save(_ context.Context, fingerprint string, link models.MagicLink, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	link.ExpiresAt = now.Add(ttl)
	s.links[fingerprint] = link
	return nil
}

func (s *InMemoryStore) Consume(_ context.Context, fingerprint string) (*models.MagicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[fingerprint]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.links, fingerprint)
	if !s.now().Before(link.ExpiresAt) {
		return nil, sentinel.ErrNotFound
	}
	return &link, nil
}

// Len reports pending links, expired ones included until the next Save.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

func (s *InMemoryStore) pruneLocked(now time.Time) {
	for k, link := range s.links {
		if !now.Before(link.ExpiresAt) {
			delete(s.links, k)
		}
	}
}
