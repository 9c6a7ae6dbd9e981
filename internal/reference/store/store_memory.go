package store

import (
	"context"
	"sync"
	"time"

	"loanintake/internal/reference"
	"loanintake/pkg/platform/sentinel"
)

// InMemoryCatalogStore keeps catalogs in process memory with a TTL.
type InMemoryCatalogStore struct {
	mu      sync.RWMutex
	entries map[string]cachedCatalog
	now     func() time.Time
}

type cachedCatalog struct {
	options   []reference.Option
	expiresAt time.Time
}

func NewInMemory() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		entries: make(map[string]cachedCatalog),
		now:     time.Now,
	}
}

func (s *InMemoryCatalogStore) Get(_ context.Context, key string) ([]reference.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.entries[key]
	if !ok || !s.now().Before(cached.expiresAt) {
		return nil, sentinel.ErrNotFound
	}
	return append([]reference.Option(nil), cached.options...), nil
}

func (s *InMemoryCatalogStore) Set(_ context.Context, key string, options []reference.Option, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cachedCatalog{
		options:   append([]reference.Option(nil), options...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}
