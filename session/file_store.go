package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aryanrai97861/cortexhub/core"
)

// FileStore persists each session as one JSON file under a base directory.
// Saves are whole-history replacements written to a temporary file in the
// same directory and moved into place with an atomic rename, so a crash
// mid-write never corrupts the previously persisted history. A per-session
// mutex serializes load-through-save cycles for the same id; distinct
// sessions proceed concurrently.
type FileStore struct {
	dir      string
	locks    map[string]*sync.Mutex
	runLocks map[string]*sync.Mutex
	locksMu  sync.Mutex
}

// NewFileStore creates the base directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("sessions directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}
	return &FileStore{
		dir:      dir,
		locks:    make(map[string]*sync.Mutex),
		runLocks: make(map[string]*sync.Mutex),
	}, nil
}

// validateSessionID rejects ids that could escape the sessions directory
// when used as a filename component.
func validateSessionID(sessionID string) error {
	if sessionID == "" {
		return errors.New("session id cannot be empty")
	}
	if strings.Contains(sessionID, "..") {
		return errors.New("session id cannot contain '..'")
	}
	if strings.ContainsAny(sessionID, "/\\") {
		return errors.New("session id cannot contain path separators")
	}
	if strings.ContainsRune(sessionID, 0) {
		return errors.New("session id cannot contain null bytes")
	}
	return nil
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, "chat_history_"+sessionID+".json")
}

// lock returns the mutex guarding one session id, creating it on first use.
func (s *FileStore) lock(sessionID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[sessionID] = mu
	}
	return mu
}

// Load implements Store. An absent session file yields an empty history.
func (s *FileStore) Load(sessionID string) ([]core.Message, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, &PersistenceError{SessionID: sessionID, Op: "load", Err: err}
	}

	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	return s.loadLocked(sessionID)
}

func (s *FileStore) loadLocked(sessionID string) ([]core.Message, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []core.Message{}, nil
		}
		return nil, &PersistenceError{SessionID: sessionID, Op: "load", Err: err}
	}

	var history []core.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, &PersistenceError{SessionID: sessionID, Op: "load", Err: err}
	}
	for i, msg := range history {
		if err := msg.Validate(); err != nil {
			return nil, &PersistenceError{
				SessionID: sessionID,
				Op:        "load",
				Err:       fmt.Errorf("entry %d: %w", i, err),
			}
		}
	}
	return history, nil
}

// Save implements Store with a whole-history atomic replacement.
func (s *FileStore) Save(sessionID string, history []core.Message) error {
	if err := validateSessionID(sessionID); err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	for i, msg := range history {
		if err := msg.Validate(); err != nil {
			return &PersistenceError{
				SessionID: sessionID,
				Op:        "save",
				Err:       fmt.Errorf("entry %d: %w", i, err),
			}
		}
	}

	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if history == nil {
		history = []core.Message{}
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, "chat_history_*.tmp")
	if err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, s.path(sessionID)); err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "save", Err: err}
	}
	return nil
}

// Clear implements Store. Clearing an absent session is not an error.
func (s *FileStore) Clear(sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return &PersistenceError{SessionID: sessionID, Op: "clear", Err: err}
	}

	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := os.Remove(s.path(sessionID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &PersistenceError{SessionID: sessionID, Op: "clear", Err: err}
	}
	return nil
}

// Acquire takes the run-level exclusive lock for a session id and returns
// its release function. Holding it from load through save gives a run the
// single-writer guarantee against concurrent runs on the same session;
// distinct session ids are unaffected. The run-level lock is separate from
// the per-operation mutexes so Load and Save remain usable while held.
func (s *FileStore) Acquire(sessionID string) func() {
	s.locksMu.Lock()
	mu, ok := s.runLocks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		s.runLocks[sessionID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
