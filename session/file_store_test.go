package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanrai97861/cortexhub/core"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	history := []core.Message{
		core.NewHumanMessage("What is the capital of France?"),
		core.NewAgentMessage("Paris"),
	}
	require.NoError(t, store.Save("abc", history))

	loaded, err := store.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, history, loaded)
}

func TestFileStore_LoadAbsentSessionIsEmpty(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	history, err := store.Load("nothing-here")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestFileStore_WireFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("wire", []core.Message{
		core.NewHumanMessage("hi"),
		core.NewAgentMessage("hello"),
	}))

	data, err := os.ReadFile(filepath.Join(dir, "chat_history_wire.json"))
	require.NoError(t, err)

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "human", raw[0]["type"])
	assert.Equal(t, "hi", raw[0]["content"])
	assert.Equal(t, "ai", raw[1]["type"])
}

func TestFileStore_SaveReplacesWholeHistory(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("s", []core.Message{core.NewHumanMessage("one")}))
	require.NoError(t, store.Save("s", []core.Message{core.NewHumanMessage("two")}))

	loaded, err := store.Load("s")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "two", loaded[0].Content)
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("s", []core.Message{core.NewHumanMessage("x")}))
	require.NoError(t, store.Clear("s"))
	require.NoError(t, store.Clear("s"), "clearing an absent session must succeed")

	history, err := store.Load("s")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestFileStore_SessionIDValidation(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "../escape", "a/b", `a\b`, "nul\x00byte"} {
		_, err := store.Load(id)
		require.Error(t, err, "id %q", id)

		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, id, perr.SessionID)

		require.Error(t, store.Save(id, nil), "id %q", id)
		require.Error(t, store.Clear(id), "id %q", id)
	}
}

func TestFileStore_CorruptFileIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_history_bad.json"), []byte("{not json"), 0o600))

	_, err = store.Load("bad")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)
}

func TestFileStore_RejectsUnknownRoleOnLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	payload := `[{"type":"robot","content":"beep"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_history_role.json"), []byte(payload), 0o600))

	_, err = store.Load("role")
	require.Error(t, err)
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("s", []core.Message{core.NewHumanMessage("x")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chat_history_s.json", entries[0].Name())
}

func TestFileStore_AcquireSerializesRuns(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	release := store.Acquire("s")

	acquired := make(chan struct{})
	go func() {
		r := store.Acquire("s")
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire must block while the first is held")
	default:
	}

	// Store operations stay usable while the run lock is held.
	require.NoError(t, store.Save("s", []core.Message{core.NewHumanMessage("x")}))

	release()
	<-acquired

	// A different session id is not blocked.
	releaseOther := store.Acquire("other")
	releaseOther()
}
