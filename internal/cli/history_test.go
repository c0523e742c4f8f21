package cli

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/session"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything fn wrote.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	runErr := fn()
	require.NoError(t, w.Close())
	require.NoError(t, runErr)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func setTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MODEL_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SESSIONS_DIR", dir)
	return dir
}

func TestGetHistory_WrapsHistoryWithSessionID(t *testing.T) {
	dir := setTestEnv(t)

	store, err := session.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save("user-42", []core.Message{
		{Role: core.RoleHuman, Content: "What is the capital of France?"},
		{Role: core.RoleAgent, Content: "Paris"},
	}))

	out := captureStdout(t, func() error {
		return runGetHistory(getHistoryCmd, []string{"user-42"})
	})

	assert.JSONEq(t, `{
		"session_id": "user-42",
		"history": [
			{"type": "human", "content": "What is the capital of France?"},
			{"type": "ai", "content": "Paris"}
		]
	}`, out)
}

func TestGetHistory_AbsentSessionYieldsEmptyList(t *testing.T) {
	setTestEnv(t)

	out := captureStdout(t, func() error {
		return runGetHistory(getHistoryCmd, []string{"nobody"})
	})

	assert.JSONEq(t, `{"session_id": "nobody", "history": []}`, out)
}
