// Package orchestrator implements the decide/act state machine driving one
// agent run. On each turn it asks the model client for a decision; a final
// answer terminates the run, a batch of tool calls is dispatched sequentially
// through the tool registry with the results fed back for the next decision.
// The cycle is bounded by a configurable turn limit, and the session store is
// consulted exactly twice per run: history load at the start and a
// whole-history save at termination.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
	"github.com/aryanrai97861/cortexhub/session"
	"github.com/aryanrai97861/cortexhub/tool"
)

const defaultInstructions = "You are a helpful AI assistant. You have access to tools to find information. " +
	"Use the chat history to maintain context across the conversation."

// ErrLoopExceeded marks a run that hit the turn bound. It is reported inside
// the run's final message, not returned as an error: hitting the bound is a
// controlled termination, not a crash.
var ErrLoopExceeded = errors.New("turn limit exceeded")

// toolErrorPrefix marks results that carry a failure instead of tool output.
const toolErrorPrefix = "[tool error] "

// Options configures an Orchestrator.
type Options struct {
	// MaxTurns bounds the decide/act cycle. Values below 1 fall back to the
	// default of 10.
	MaxTurns int
	// Instructions overrides the default system prompt.
	Instructions string
	// Logger receives run diagnostics. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Orchestrator is an explicit value constructed with injected collaborators;
// there is no process-wide graph or hidden global state. One Orchestrator may
// serve many runs, including concurrent runs on distinct session ids.
type Orchestrator struct {
	model  model.Model
	tools  *tool.Registry
	store  session.Store
	opts   Options
	logger zerolog.Logger
}

// New constructs an Orchestrator.
func New(m model.Model, tools *tool.Registry, store session.Store, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxTurns:     10,
		Instructions: defaultInstructions,
		Logger:       zerolog.Nop(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTurns < 1 {
		opts.MaxTurns = 10
	}
	return &Orchestrator{
		model:  m,
		tools:  tools,
		store:  store,
		opts:   opts,
		logger: opts.Logger,
	}
}

// Run executes the orchestration loop for one goal against one session and
// returns the packaged report. On success the persisted history has grown by
// exactly two messages: the goal as a human message and the final answer as
// an agent message. Tool turns are working state only and are never
// persisted.
//
// Cancellation between turns persists the working history accumulated so far
// before returning the context error; model-client and persistence failures
// surface as errors with nothing new persisted.
func (o *Orchestrator) Run(ctx context.Context, goal, sessionID string) (*Report, error) {
	if goal == "" {
		return nil, errors.New("goal cannot be empty")
	}

	// Single writer per session id for the whole load-through-save window.
	if locker, ok := o.store.(session.Locker); ok {
		release := locker.Acquire(sessionID)
		defer release()
	}

	logger := o.logger.With().Str("session_id", sessionID).Logger()

	history, err := o.store.Load(sessionID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load session history")
		return nil, err
	}

	rep := newReporter()
	rep.add("goal", fmt.Sprintf("Goal received: %q", goal), "")
	logger.Info().Int("history_len", len(history)).Msg("Agent run started")

	state := newRunState(goal, history)
	defs := o.tools.Definitions()

	var answer core.Message

loop:
	for {
		if err := ctx.Err(); err != nil {
			return nil, o.persistCancelled(ctx, state, sessionID, logger, err)
		}
		if state.turns >= o.opts.MaxTurns {
			logger.Warn().Int("turns", state.turns).Msg("Turn limit reached, forcing termination")
			rep.add("status", fmt.Sprintf("Turn limit of %d reached", o.opts.MaxTurns), ErrLoopExceeded.Error())
			answer = core.NewAgentMessage(fmt.Sprintf(
				"I could not complete the goal within the allotted %d turns.", o.opts.MaxTurns))
			break loop
		}
		state.turns++

		decision, err := o.model.Decide(ctx, state.request(o.opts.Instructions, defs))
		if err != nil {
			if ctx.Err() != nil {
				return nil, o.persistCancelled(ctx, state, sessionID, logger, ctx.Err())
			}
			logger.Error().Err(err).Int("turn", state.turns).Msg("Model decision failed")
			return nil, err
		}

		switch d := decision.(type) {
		case model.FinalAnswer:
			answer = d.Message
			if answer.Role != core.RoleAgent {
				answer = core.NewAgentMessage(answer.Content)
			}
			state.phase = phaseTerminated
			break loop
		case model.ToolCalls:
			if len(d.Requests) == 0 {
				logger.Warn().Int("turn", state.turns).Msg("Empty tool-call decision, treating as final")
				answer = core.NewAgentMessage("")
				state.phase = phaseTerminated
				break loop
			}
			rep.add("status", fmt.Sprintf("Turn %d: invoking %d tool(s)", state.turns, len(d.Requests)), "")
			o.actOnCalls(ctx, state, d.Requests, rep, logger)
			state.phase = phaseDeciding
		default:
			return nil, fmt.Errorf("model returned unknown decision type %T", decision)
		}
	}

	final := state.finalHistory(answer)
	if err := o.store.Save(sessionID, final); err != nil {
		logger.Error().Err(err).Msg("Failed to persist session history")
		return nil, err
	}

	rep.add("result", answer.Content, "Agent execution completed")
	logger.Info().Int("turns", state.turns).Int("history_len", len(final)).Msg("Agent run complete")

	return rep.report("Agent execution complete.", sessionID, len(final)), nil
}

// actOnCalls dispatches one decision's tool calls in order. A failed call is
// captured as an error-marker result and aborts scheduling of the calls not
// yet dispatched; those are resolved with skip markers so no request is left
// unanswered when the loop returns to deciding.
func (o *Orchestrator) actOnCalls(
	ctx context.Context,
	state *runState,
	requests []core.ToolRequest,
	rep *reporter,
	logger zerolog.Logger,
) {
	state.recordCalls(requests)

	aborted := false
	for _, req := range requests {
		if aborted {
			state.recordResult(core.ToolResult{
				RequestID: req.RequestID,
				Content:   toolErrorPrefix + "skipped: an earlier tool call in this turn failed",
			})
			continue
		}

		result, err := o.tools.Invoke(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Str("tool", req.ToolName).Msg("Tool invocation failed")
			rep.add("tool", fmt.Sprintf("Tool %s failed", req.ToolName), err.Error())
			state.recordResult(core.ToolResult{
				RequestID: req.RequestID,
				Content:   toolErrorPrefix + err.Error(),
			})
			aborted = true
			continue
		}

		logger.Debug().Str("tool", req.ToolName).Int("result_len", len(result.Content)).Msg("Tool invoked")
		rep.add("tool", fmt.Sprintf("Tool %s returned %d bytes", req.ToolName, len(result.Content)), "")
		state.recordResult(result)
	}
}

// persistCancelled makes a best-effort attempt to keep the working history of
// a cancelled run. The save deliberately ignores the cancelled context: prior
// persisted state stays intact if even that write fails.
func (o *Orchestrator) persistCancelled(
	_ context.Context,
	state *runState,
	sessionID string,
	logger zerolog.Logger,
	cause error,
) error {
	if err := o.store.Save(sessionID, state.workingHistory()); err != nil {
		logger.Error().Err(err).Msg("Failed to persist working history after cancellation")
	} else {
		logger.Info().Msg("Persisted working history after cancellation")
	}
	return fmt.Errorf("run cancelled: %w", cause)
}
