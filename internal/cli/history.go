package cli

import (
	"github.com/spf13/cobra"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/session"
)

var getHistoryCmd = &cobra.Command{
	Use:   "get-history <session-id>",
	Short: "Print a session's chat history as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetHistory,
}

var clearHistoryCmd = &cobra.Command{
	Use:   "clear-history <session-id>",
	Short: "Delete a session's chat history",
	Long: `Delete the stored chat history for a session. Clearing a session that
does not exist succeeds; the operation is idempotent.`,
	Args: cobra.ExactArgs(1),
	RunE: runClearHistory,
}

func init() {
	rootCmd.AddCommand(getHistoryCmd)
	rootCmd.AddCommand(clearHistoryCmd)
}

func runGetHistory(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	cfg, _, err := setup()
	if err != nil {
		return fail(err, "Failed to load configuration.")
	}
	store, err := session.NewFileStore(cfg.SessionsDir)
	if err != nil {
		return fail(err, "Failed to open session store.")
	}

	history, err := store.Load(sessionID)
	if err != nil {
		return fail(err, "Failed to load chat history.")
	}
	if history == nil {
		history = []core.Message{}
	}
	return emitJSON(historyReport{SessionID: sessionID, History: history})
}

type historyReport struct {
	SessionID string         `json:"session_id"`
	History   []core.Message `json:"history"`
}

func runClearHistory(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	cfg, _, err := setup()
	if err != nil {
		return fail(err, "Failed to load configuration.")
	}
	store, err := session.NewFileStore(cfg.SessionsDir)
	if err != nil {
		return fail(err, "Failed to open session store.")
	}

	if err := store.Clear(sessionID); err != nil {
		return fail(err, "Failed to clear chat history.")
	}
	return emitJSON(map[string]string{
		"message":    "Chat history cleared.",
		"session_id": sessionID,
	})
}
