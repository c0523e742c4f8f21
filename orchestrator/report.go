package orchestrator

import (
	"fmt"
	"time"
)

// LogEntry is one line of the human-auditable run trace. The trace is a
// reporting artifact for the caller; it is never part of persisted session
// state.
type LogEntry struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // "goal", "status", "tool", "result", "error"
	Text      string `json:"text"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Report packages the outcome of one run for the invocation surface.
type Report struct {
	Message       string     `json:"message"`
	Log           []LogEntry `json:"log"`
	SessionID     string     `json:"session_id"`
	HistoryLength int        `json:"history_length"`
}

// FinalAnswer returns the text of the last log entry, which by construction
// is the run's final result.
func (r *Report) FinalAnswer() string {
	if len(r.Log) == 0 {
		return ""
	}
	return r.Log[len(r.Log)-1].Text
}

// ErrorReport is the structured failure object emitted on the error channel.
type ErrorReport struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// reporter accumulates log entries during a run. Entry ids are sequential
// ("log-1", "log-2", ...) and timestamps wall-clock times of entry creation.
type reporter struct {
	entries []LogEntry
	now     func() time.Time
}

func newReporter() *reporter {
	return &reporter{now: time.Now}
}

func (r *reporter) add(entryType, text, details string) {
	r.entries = append(r.entries, LogEntry{
		ID:        fmt.Sprintf("log-%d", len(r.entries)+1),
		Type:      entryType,
		Text:      text,
		Details:   details,
		Timestamp: r.now().Format("15:04:05"),
	})
}

func (r *reporter) report(message, sessionID string, historyLength int) *Report {
	return &Report{
		Message:       message,
		Log:           r.entries,
		SessionID:     sessionID,
		HistoryLength: historyLength,
	}
}
