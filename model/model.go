// Package model defines the model-client boundary the orchestrator depends
// on: a normalized Request carrying conversation history, the run goal and
// the declared tool schema, and a discriminated Decision that is either a
// final answer or an ordered batch of tool calls. Provider adapters live in
// the subpackages (gemini, openai, anthropic); this package holds only the
// contract plus a deterministic mock for tests.
package model

import (
	"context"
	"fmt"

	"github.com/aryanrai97861/cortexhub/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset: type, properties,
// required, enum, description).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Step is one intermediate entry of the current run fed back to the model:
// either a batch of tool calls the model previously requested, or the result
// of one of those calls. The closed set keeps producers and consumers in
// agreement at compile time.
type Step interface{ isStep() }

// CallStep records the tool calls of one non-terminal decision.
type CallStep struct{ Requests []core.ToolRequest }

func (CallStep) isStep() {}

// ResultStep records the outcome of a single dispatched tool call.
type ResultStep struct{ Result core.ToolResult }

func (ResultStep) isStep() {}

// Request captures the normalized model input for one decision.
type Request struct {
	// Instructions is the system prompt.
	Instructions string
	// History is the persisted conversation prior to this run, in order.
	History []core.Message
	// Goal is the caller's natural-language goal for this run.
	Goal string
	// Steps are the tool-call / tool-result entries accumulated so far in
	// this run, in dispatch order.
	Steps []Step
	// Tools is the declared tool schema. Empty means tool use is disabled.
	Tools []ToolDefinition
}

// Decision is the discriminated result of one model call. Concrete variants
// implement the unexported marker, forming a closed set: FinalAnswer or
// ToolCalls. There is no attribute probing; callers switch on the type.
type Decision interface{ isDecision() }

// FinalAnswer terminates the run with an agent message.
type FinalAnswer struct{ Message core.Message }

func (FinalAnswer) isDecision() {}

// ToolCalls requests invocation of one or more tools, in order.
type ToolCalls struct{ Requests []core.ToolRequest }

func (ToolCalls) isDecision() {}

// Model is the minimal interface the orchestrator requires from a provider.
// Decide blocks for the duration of one provider round trip; implementations
// must honor context cancellation. Determinism across calls is not
// guaranteed and callers must not assume it.
type Model interface {
	Decide(ctx context.Context, req Request) (Decision, error)

	// Info returns metadata about the model implementation.
	Info() Info
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "gemini", "openai", "anthropic", "mock"
}

// ClientError wraps a provider failure so callers can distinguish model-client
// errors from tool or persistence errors.
type ClientError struct {
	Provider string
	Err      error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("model client (%s): %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *ClientError) Unwrap() error { return e.Err }
