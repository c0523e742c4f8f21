// Package session persists per-session conversation histories. The only
// durable representation is an ordered JSON list of {type, content} entries
// keyed by session id; the file store is the sole owner of on-disk session
// state.
package session

import (
	"fmt"

	"github.com/aryanrai97861/cortexhub/core"
)

// Store abstracts session history persistence.
//
// Contract:
//   - Load returns an empty history (not an error) for an unknown session id
//   - Save replaces the whole persisted history atomically
//   - Clear is idempotent; clearing an absent session succeeds
type Store interface {
	Load(sessionID string) ([]core.Message, error)
	Save(sessionID string, history []core.Message) error
	Clear(sessionID string) error
}

// Locker is implemented by stores that can grant run-level exclusive access
// to one session id for the duration of a load-through-save cycle.
type Locker interface {
	// Acquire blocks until the session's run lock is held and returns the
	// release function.
	Acquire(sessionID string) func()
}

// PersistenceError wraps an I/O failure while reading or writing session
// state. The previously persisted file is always left intact.
type PersistenceError struct {
	SessionID string
	Op        string // "load" or "save" or "clear"
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s: %s failed: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *PersistenceError) Unwrap() error { return e.Err }
