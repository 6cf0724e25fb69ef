package core

import (
	"context"
	"time"

	"github.com/hupe1980/autocrew/logging"
)

// CallerInfo identifies the agent on whose behalf a tool executes.
type CallerInfo struct {
	Role         string
	Orchestrator bool
}

// ToolContext is the constrained surface handed to tool implementations. It
// carries the invocation identity (run, call, caller), a logger, and a small
// set of control signals a tool may raise back to the runtime. Tools never
// see the scheduler or another agent's history.
type ToolContext struct {
	ctx    context.Context
	runID  string
	callID string
	caller CallerInfo
	logger logging.Logger

	signals *runSignals
}

// runSignals is shared between a ToolContext and every context derived from
// it, so a signal raised under a timeout wrapper still reaches the runtime.
type runSignals struct {
	endRun bool
}

// NewToolContext binds a tool invocation to its run, call id and caller.
func NewToolContext(ctx context.Context, runID, callID string, caller CallerInfo, logger logging.Logger) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{
		ctx:     ctx,
		runID:   runID,
		callID:  callID,
		caller:  caller,
		logger:  logger,
		signals: &runSignals{},
	}
}

// WithTimeout derives a ToolContext whose context carries the given deadline.
// All other state, including the run-control signals, is shared with the
// receiver. The returned cancel func must be called to release the timer.
func (tc *ToolContext) WithTimeout(d time.Duration) (*ToolContext, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(tc.ctx, d)
	derived := *tc
	derived.ctx = ctx
	return &derived, cancel
}

// Context returns the context governing the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// RunID returns the owning run identifier ("" outside a team run).
func (tc *ToolContext) RunID() string { return tc.runID }

// CallID returns the tool call identifier correlating request and result.
func (tc *ToolContext) CallID() string { return tc.callID }

// Caller returns the identity of the invoking agent.
func (tc *ToolContext) Caller() CallerInfo { return tc.caller }

// Logger returns the logger bound to this invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

// EndRun signals that the turn and the whole team run should stop once the
// current tool result has been recorded. Raised by declare_done.
func (tc *ToolContext) EndRun() {
	tc.signals.endRun = true
	tc.logger.Info("tool.end_run", "role", tc.caller.Role, "call_id", tc.callID)
}

// ShouldEndRun reports whether EndRun was raised during this invocation.
func (tc *ToolContext) ShouldEndRun() bool { return tc.signals.endRun }
