package profile

import (
	"context"
	"fmt"
	"sync"

	"meridian/internal/sentinel"
)

// InMemoryStore keeps profile roles in memory for tests and local runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	roles map[string]string
}

// NewInMemoryStore constructs an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{roles: make(map[string]string)}
}

// Seed assigns a role to a user without authorization checks. Test helper.
func (s *InMemoryStore) Seed(userID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = role
}

func (s *InMemoryStore) FindRole(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if role, ok := s.roles[userID]; ok {
		return role, nil
	}
	return "", fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) UpdateRole(_ context.Context, userID string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[userID]; !ok {
		return fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	s.roles[userID] = role
	return nil
}

var _ Store = (*InMemoryStore)(nil)
