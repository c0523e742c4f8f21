package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aryanrai97861/cortexhub/orchestrator"
	"github.com/aryanrai97861/cortexhub/session"
)

var runAgentCmd = &cobra.Command{
	Use:   "run-agent <goal> <session-id>",
	Short: "Run the agent for one goal against a session",
	Long: `Run the decide/act loop for a single goal. The session's chat history
is loaded first, grows by the goal and the final answer, and is persisted
when the run terminates. The run report is printed to stdout as JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(runAgentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	goal, sessionID := args[0], args[1]

	cfg, logger, err := setup()
	if err != nil {
		return fail(err, "Failed to load configuration.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := buildModel(ctx, cfg)
	if err != nil {
		return fail(err, "Failed to initialize model client.")
	}

	registry, cleanup, err := buildRegistry(cfg, logger)
	if err != nil {
		return fail(err, "Failed to initialize tools.")
	}
	defer cleanup()

	store, err := session.NewFileStore(cfg.SessionsDir)
	if err != nil {
		return fail(err, "Failed to open session store.")
	}

	agent := orchestrator.New(m, registry, store, func(o *orchestrator.Options) {
		o.MaxTurns = cfg.MaxTurns
		o.Logger = logger
	})

	report, err := agent.Run(ctx, goal, sessionID)
	if err != nil {
		return fail(err, "Agent execution failed.")
	}
	return emitJSON(report)
}
