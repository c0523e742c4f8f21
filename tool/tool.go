// Package tool implements the tool-calling subsystem: a uniform invocation
// contract around external capabilities (web search, document retrieval),
// schema-validated arguments, and a registry that normalizes arbitrary tool
// output into the textual results the orchestration loop feeds back to the
// model.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the interface for extending the agent with external
// capabilities.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case recommended) and
//     descriptions; both are exposed to the model
//   - Define a JSON schema for parameters
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does, provided to the model to guide tool selection.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments have already been validated against
	// the declared schema. The returned value must be JSON-serializable so
	// the registry can render it as text.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Error codes attached to *Error values.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeTimeout    = "TIMEOUT"
)

// Error represents a failure during tool lookup or execution.
type Error struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewError creates a new Error with the specified details.
func NewError(tool, message, code string) *Error {
	return &Error{Tool: tool, Message: message, Code: code}
}
