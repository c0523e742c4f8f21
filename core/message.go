package core

import "fmt"

// Role identifies the author of a conversation message. The wire values
// ("human", "ai") are part of the persisted session format and must not
// change between releases.
type Role string

const (
	// RoleHuman marks a message authored by the caller.
	RoleHuman Role = "human"
	// RoleAgent marks a message authored by the agent.
	RoleAgent Role = "ai"
)

// Valid reports whether the role is one of the known wire values.
func (r Role) Valid() bool { return r == RoleHuman || r == RoleAgent }

// Message is a single immutable conversation entry. Ordering of messages in a
// history is significant and preserved exactly as produced.
type Message struct {
	Role    Role   `json:"type"`
	Content string `json:"content"`
}

// NewHumanMessage constructs a caller-authored message.
func NewHumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// NewAgentMessage constructs an agent-authored message.
func NewAgentMessage(content string) Message {
	return Message{Role: RoleAgent, Content: content}
}

// Validate checks the message against the persisted-format contract.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("message has unknown role %q", m.Role)
	}
	return nil
}

// ToolRequest is a structured request, produced only by the model client's
// decision output, to invoke a named tool with JSON-compatible arguments.
type ToolRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	RequestID string         `json:"request_id"`
}

// ToolResult carries the textual outcome of one ToolRequest. RequestID always
// matches the originating request; Content is never empty (empty tool output
// is coerced by the registry to an explicit no-result marker).
type ToolResult struct {
	RequestID string `json:"request_id"`
	Content   string `json:"content"`
}
