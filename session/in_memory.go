package session

import (
	"slices"
	"sync"

	"github.com/agentloop/agentloop/core"
)

// Store persists conversation logs across runs keyed by session ID, so a
// follow-up run can continue where the previous one ended.
type Store interface {
	// History returns the stored conversation for the session, or nil for an
	// unknown session.
	History(sessionID string) ([]core.Message, error)

	// Save replaces the stored conversation for the session.
	Save(sessionID string, messages []core.Message) error

	// Delete removes the session.
	Delete(sessionID string) error
}

// InMemoryStore is a volatile Store keeping conversations in a process-local
// map. Safe for concurrent access; returned and stored logs are cloned so
// callers cannot mutate internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]core.Message)}
}

// History implements Store.
func (s *InMemoryStore) History(sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(messages), nil
}

// Save implements Store.
func (s *InMemoryStore) Save(sessionID string, messages []core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = slices.Clone(messages)
	return nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
