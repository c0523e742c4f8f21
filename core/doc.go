// Package core defines the shared data model of the agent backend: the
// conversation Message, the ToolRequest/ToolResult pair exchanged between the
// orchestrator and tools, and validation helpers. Higher-level packages
// (model, tool, orchestrator, session) depend on core; core depends on
// nothing but the standard library.
package core
