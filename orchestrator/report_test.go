package orchestrator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_SequentialIDsAndTimestamps(t *testing.T) {
	rep := newReporter()
	rep.now = func() time.Time { return time.Date(2024, 1, 2, 9, 30, 15, 0, time.UTC) }

	rep.add("goal", "Goal received", "")
	rep.add("status", "Turn 1", "detail")

	report := rep.report("Agent execution complete.", "s1", 2)
	require.Len(t, report.Log, 2)
	assert.Equal(t, "log-1", report.Log[0].ID)
	assert.Equal(t, "log-2", report.Log[1].ID)
	assert.Equal(t, "09:30:15", report.Log[0].Timestamp)
	assert.Equal(t, "detail", report.Log[1].Details)
}

func TestReport_JSONShape(t *testing.T) {
	rep := newReporter()
	rep.now = func() time.Time { return time.Date(2024, 1, 2, 9, 30, 15, 0, time.UTC) }
	rep.add("result", "Paris", "")

	data, err := json.Marshal(rep.report("Agent execution complete.", "abc", 2))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Agent execution complete.", decoded["message"])
	assert.Equal(t, "abc", decoded["session_id"])
	assert.Equal(t, float64(2), decoded["history_length"])

	log, ok := decoded["log"].([]any)
	require.True(t, ok)
	require.Len(t, log, 1)
	entry := log[0].(map[string]any)
	assert.Equal(t, "log-1", entry["id"])
	assert.Equal(t, "Paris", entry["text"])
	_, hasDetails := entry["details"]
	assert.False(t, hasDetails, "empty details must be omitted")
}

func TestReport_FinalAnswerEmptyLog(t *testing.T) {
	report := &Report{}
	assert.Equal(t, "", report.FinalAnswer())
}
