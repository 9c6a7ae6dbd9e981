package store

import (
	"context"
	"sync"

	"loanintake/internal/application"
	"loanintake/pkg/domain"
	"loanintake/pkg/platform/sentinel"
)

// InMemoryApplicationStore keeps drafts in process memory.
type InMemoryApplicationStore struct {
	mu     sync.RWMutex
	drafts map[domain.ApplicationID]*application.Manager
}

func NewInMemory() *InMemoryApplicationStore {
	return &InMemoryApplicationStore{drafts: make(map[domain.ApplicationID]*application.Manager)}
}

func (s *InMemoryApplicationStore) Save(_ context.Context, m *application.Manager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[m.ID()] = m
	return nil
}

func (s *InMemoryApplicationStore) Find(_ context.Context, id domain.ApplicationID) (*application.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.drafts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m, nil
}

func (s *InMemoryApplicationStore) Delete(_ context.Context, id domain.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.drafts, id)
	return nil
}
