// Package cortexhub provides a high-level façade over the orchestration core
// (model client, tool registry, session store) for embedding the agent in
// other Go programs. Most applications interact with this package by:
//  1. Creating a Hub via New() with a model client (optionally overriding the
//     default in-memory session store)
//  2. Registering one or more tools
//  3. Running goals against named sessions with Run()
//
// The façade delegates the decide/act loop to orchestrator.Orchestrator while
// keeping setup concise. All defaults are safe for local development and
// testing; production deployments typically supply the file-backed session
// store and a structured logger.
package cortexhub

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
	"github.com/aryanrai97861/cortexhub/orchestrator"
	"github.com/aryanrai97861/cortexhub/session"
	"github.com/aryanrai97861/cortexhub/tool"
)

// Options configures a Hub.
type Options struct {
	// Store persists session histories. Defaults to an in-memory store.
	Store session.Store
	// MaxTurns bounds each run's decide/act cycle. Zero keeps the
	// orchestrator default of 10.
	MaxTurns int
	// Instructions overrides the default system prompt.
	Instructions string
	// Logger receives run diagnostics. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Hub aggregates the orchestration collaborators behind a small API.
type Hub struct {
	tools *tool.Registry
	agent *orchestrator.Orchestrator
	store session.Store
}

// New creates a Hub around the given model client.
func New(m model.Model, optFns ...func(o *Options)) *Hub {
	opts := Options{
		Store:  session.NewInMemoryStore(),
		Logger: zerolog.Nop(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := tool.NewRegistry()
	agent := orchestrator.New(m, tools, opts.Store, func(o *orchestrator.Options) {
		if opts.MaxTurns > 0 {
			o.MaxTurns = opts.MaxTurns
		}
		if opts.Instructions != "" {
			o.Instructions = opts.Instructions
		}
		o.Logger = opts.Logger
	})

	return &Hub{tools: tools, agent: agent, store: opts.Store}
}

// RegisterTool adds a tool to the hub's registry. Must be called before Run;
// registering a duplicate name is an error.
func (h *Hub) RegisterTool(t tool.Tool) error {
	return h.tools.Register(t)
}

// Run executes one goal against a session and returns the run report.
func (h *Hub) Run(ctx context.Context, goal, sessionID string) (*orchestrator.Report, error) {
	return h.agent.Run(ctx, goal, sessionID)
}

// History returns the persisted conversation for a session.
func (h *Hub) History(sessionID string) ([]core.Message, error) {
	return h.store.Load(sessionID)
}

// ClearHistory deletes a session's persisted conversation.
func (h *Hub) ClearHistory(sessionID string) error {
	return h.store.Clear(sessionID)
}
