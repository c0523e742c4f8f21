package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
)

// NoResultMarker replaces empty tool output so results are never silently
// dropped from the conversation.
const NoResultMarker = "[no result]"

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// CallTimeout bounds each individual tool invocation. Zero disables the
	// per-call timeout.
	CallTimeout time.Duration
}

// Registry holds the declared tool set and is the single dispatch point for
// tool invocations. It validates tool names before dispatch, applies the
// per-call timeout, and normalizes arbitrary tool output into a textual
// ToolResult. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	opts  RegistryOptions
}

// NewRegistry constructs an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{CallTimeout: 30 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{tools: make(map[string]Tool), opts: opts}
}

// Register adds a tool. Registering a second tool with the same name is a
// programming error and is rejected.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the declared tool schema in a stable order, suitable
// for passing to the model client.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]model.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Invoke dispatches one ToolRequest exactly once and returns its ToolResult.
// An unknown tool name fails with a NOT_FOUND *Error instead of a raw lookup
// error; execution failures and timeouts surface as *Error too. On success
// the tool's output is rendered as text, with empty output coerced to
// NoResultMarker.
func (r *Registry) Invoke(ctx context.Context, req core.ToolRequest) (core.ToolResult, error) {
	t, ok := r.Get(req.ToolName)
	if !ok {
		return core.ToolResult{}, NewError(req.ToolName, "unknown tool", CodeNotFound)
	}

	callCtx := ctx
	if r.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.opts.CallTimeout)
		defer cancel()
	}

	out, err := t.Call(callCtx, req.Arguments)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return core.ToolResult{}, NewError(req.ToolName, "tool call timed out", CodeTimeout)
		}
		return core.ToolResult{}, err
	}

	return core.ToolResult{RequestID: req.RequestID, Content: renderText(out)}, nil
}

// renderText normalizes tool output to text. Strings pass through, nil and
// empty output become the no-result marker, everything else is JSON encoded.
func renderText(out any) string {
	switch v := out.(type) {
	case nil:
		return NoResultMarker
	case string:
		if v == "" {
			return NoResultMarker
		}
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil || len(data) == 0 || string(data) == "null" {
			return NoResultMarker
		}
		return string(data)
	}
}
