package session

import (
	"sync"

	"github.com/aryanrai97861/cortexhub/core"
)

// InMemoryStore is a volatile Store implementation keeping histories in a
// process-local map. It is safe for concurrent access and best suited for
// tests. Histories are copied on the way in and out to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu        sync.Mutex
	histories map[string][]core.Message
	runLocks  map[string]*sync.Mutex
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		histories: make(map[string][]core.Message),
		runLocks:  make(map[string]*sync.Mutex),
	}
}

// Load implements Store. Unknown sessions yield an empty history.
func (s *InMemoryStore) Load(sessionID string) ([]core.Message, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, &PersistenceError{SessionID: sessionID, Op: "load", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]core.Message, len(s.histories[sessionID]))
	copy(history, s.histories[sessionID])
	return history, nil
}

// Save implements Store with a whole-history replacement.
func (s *InMemoryStore) Save(sessionID string, history []core.Message) error {
	if err := validateSessionID(sessionID); err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]core.Message, len(history))
	copy(stored, history)
	s.histories[sessionID] = stored
	return nil
}

// Clear implements Store; clearing an absent session succeeds.
func (s *InMemoryStore) Clear(sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "clear", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, sessionID)
	return nil
}

// Acquire implements Locker.
func (s *InMemoryStore) Acquire(sessionID string) func() {
	s.mu.Lock()
	mu, ok := s.runLocks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		s.runLocks[sessionID] = mu
	}
	s.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
