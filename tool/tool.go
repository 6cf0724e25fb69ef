// Package tool implements the tool-calling subsystem: the Tool interface,
// schema-validated function tools, the registry of built-in capabilities and
// the Dispatcher that executes model-requested calls under grant checks and
// timeouts. Every failure a tool can produce is reported as a structured
// result back into the calling agent's history; nothing here aborts a run.
package tool

import (
	"fmt"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/internal/util"
)

// Error codes carried by ToolError for categorization.
const (
	// CodeValidation marks a schema / argument mismatch.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution marks an underlying tool failure.
	CodeExecution = "EXECUTION_ERROR"
	// CodeTimeout marks a tool that exceeded the dispatcher's ceiling.
	CodeTimeout = "TIMEOUT"
	// CodeUnauthorized marks a call to a tool the agent was not granted.
	CodeUnauthorized = "UNAUTHORIZED"
	// CodeNotAvailable marks a team-only tool used outside a team run.
	CodeNotAvailable = "NOT_AVAILABLE"
	// CodeUnknownTool marks a call naming no registered tool.
	CodeUnknownTool = "UNKNOWN_TOOL"
)

// Tool defines a structured capability an agent may invoke.
//
// Implementations should provide clear snake_case names, a description the
// model can act on, a minimal JSON schema for their arguments, and graceful
// error handling. The ToolContext gives access to the invocation identity
// and the run-control signals (EndRun); tools never see the scheduler or
// another agent's state.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the LLM
	// to help it understand when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments are parsed from JSON and validated
	// against the tool's schema before invocation.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError reports a tool argument that failed schema validation.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
