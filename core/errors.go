package core

import (
	"fmt"
	"strings"
)

// PlanningError reports an invalid roster produced by the planner: zero or
// multiple orchestrators, duplicate role names, or tool grants outside the
// catalog. It is fatal to team formation; callers may retry planning exactly
// once with a corrective instruction built from Issues.
type PlanningError struct {
	Issues []string
}

// Error implements the error interface.
func (e *PlanningError) Error() string {
	return "invalid roster: " + strings.Join(e.Issues, "; ")
}

// Corrective renders the issues as an instruction appended to the retry
// prompt so the model can fix its previous output.
func (e *PlanningError) Corrective() string {
	var sb strings.Builder
	sb.WriteString("Your previous roster was invalid. Fix the following and respond again with the full corrected JSON object:\n")
	for _, issue := range e.Issues {
		sb.WriteString("- ")
		sb.WriteString(issue)
		sb.WriteString("\n")
	}
	return sb.String()
}

// UnauthorizedError reports a call to a tool the agent was not granted.
// Recoverable: it is fed back into the calling agent's history as a tool
// error so the model can adapt.
type UnauthorizedError struct {
	Role string
	Tool string
}

// Error implements the error interface.
func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("tool %q is not granted to %q", e.Tool, e.Role)
}

// NotAvailableError reports use of a team-only tool outside a team run.
// Recoverable, reported the same way as UnauthorizedError.
type NotAvailableError struct {
	Tool string
}

// Error implements the error interface.
func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("tool %q is only available during a team run", e.Tool)
}
