package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory.
// Intended for development and tests; sessions are lost on restart.
type MemoryStore struct {
	byToken map[string]*Session
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byToken: make(map[string]*Session)}
}

// Create stores the session, assigning an ID and token when missing.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Token == "" {
		s.Token = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[s.Token] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	m.mu.RLock()
	s, ok := m.byToken[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byToken, token)
	return nil
}
