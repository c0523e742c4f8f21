package model

import (
	"context"
	"errors"
	"sync"
)

var errNoScript = errors.New("no scripted decision")

// Mock is a scripted in-memory Model for tests and examples. Decisions are
// returned in the order they were queued; once the script is exhausted the
// last entry repeats. Safe for concurrent use.
type Mock struct {
	mu        sync.Mutex
	decisions []Decision
	errs      []error
	calls     int
	requests  []Request
}

// NewMock constructs a Mock that will replay the given decisions.
func NewMock(decisions ...Decision) *Mock {
	return &Mock{decisions: decisions}
}

// QueueDecision appends a scripted decision.
func (m *Mock) QueueDecision(d Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
	m.errs = append(m.errs, nil)
}

// QueueError appends a scripted failure for one call.
func (m *Mock) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, nil)
	m.errs = append(m.errs, err)
}

// Calls reports how many times Decide has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns the requests seen so far, in order.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Decide implements Model by replaying the script.
func (m *Mock) Decide(ctx context.Context, req Request) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.calls
	m.calls++
	m.requests = append(m.requests, req)

	if len(m.decisions) == 0 {
		return nil, &ClientError{Provider: "mock", Err: errNoScript}
	}
	if idx >= len(m.decisions) {
		idx = len(m.decisions) - 1
	}
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	return m.decisions[idx], nil
}

// Info implements Model.
func (m *Mock) Info() Info { return Info{Name: "mock", Provider: "mock"} }
