package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/logging"
	"github.com/hupe1980/autocrew/model"
)

// DefaultToolTimeout is the ceiling applied to a single tool execution.
const DefaultToolTimeout = 30 * time.Second

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	// Timeout is the per-call execution ceiling. Zero means DefaultToolTimeout.
	Timeout time.Duration
	// TeamRegistry holds the team-context tools for the current run. Nil
	// outside a team run, which makes every team tool NOT_AVAILABLE.
	TeamRegistry *Registry
	// Logger receives dispatch diagnostics.
	Logger logging.Logger
}

// Dispatcher executes model-requested tool calls for one agent context. It
// enforces grants, team-context availability, the orchestrator's exclusive
// right to declare_done, and a per-call timeout. Every failure mode becomes
// a structured ToolResult; the dispatcher never returns an error to the
// scheduler.
type Dispatcher struct {
	global  *Registry
	team    *Registry
	timeout time.Duration
	logger  logging.Logger
}

// NewDispatcher builds a dispatcher over the global tool registry.
func NewDispatcher(global *Registry, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultToolTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Dispatcher{
		global:  global,
		team:    opts.TeamRegistry,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// Definitions returns the model-facing schemas for the granted tool names,
// resolving team tools against the team registry and everything else against
// the global registry. Order follows the grant list.
func (d *Dispatcher) Definitions(grants []string) []model.ToolDefinition {
	var defs []model.ToolDefinition
	for _, name := range grants {
		registry := d.global
		if core.IsTeamTool(name) {
			registry = d.team
		}
		if registry == nil {
			continue
		}
		defs = append(defs, registry.Definitions([]string{name})...)
	}
	return defs
}

// Dispatch runs one tool call on behalf of the calling agent and returns its
// structured result. The result's Error field carries recoverable failures
// (unauthorized, unavailable, validation, execution, timeout) formatted for
// the model to react to.
func (d *Dispatcher) Dispatch(toolCtx *core.ToolContext, call core.ToolCall, grants []string) core.ToolResult {
	result := core.ToolResult{ID: call.ID, Name: call.Name}
	caller := toolCtx.Caller()

	if core.IsTeamTool(call.Name) && d.team == nil {
		err := &core.NotAvailableError{Tool: call.Name}
		d.logger.Warn("tool.dispatch.not_available", "tool", call.Name, "role", caller.Role)
		result.Error = err.Error()
		return result
	}

	if !granted(grants, call.Name) || (call.Name == core.ToolDeclareDone && !caller.Orchestrator) {
		err := &core.UnauthorizedError{Role: caller.Role, Tool: call.Name}
		d.logger.Warn("tool.dispatch.unauthorized", "tool", call.Name, "role", caller.Role)
		result.Error = err.Error()
		return result
	}

	impl, ok := d.lookup(call.Name)
	if !ok {
		result.Error = NewToolError(call.Name, "unknown tool", CodeUnknownTool).Error()
		return result
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		result.Error = NewToolError(call.Name, fmt.Sprintf("invalid arguments: %v", err), CodeValidation).Error()
		return result
	}

	payload, err := d.execute(toolCtx, impl, args)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Content = stringify(payload)
	return result
}

func (d *Dispatcher) lookup(name string) (Tool, bool) {
	if core.IsTeamTool(name) {
		return d.team.Get(name)
	}
	return d.global.Get(name)
}

// execute runs the tool under its execution budget: the tool's own declared
// timeout when it has one, the dispatcher default otherwise. The call itself
// runs in a goroutine so a stuck tool cannot wedge the scheduler: on timeout
// or run cancellation the dispatcher reports and moves on while the tool
// finishes (or ignores its context) in the background. The child context
// deadline still gives well-behaved tools their cancellation signal.
func (d *Dispatcher) execute(toolCtx *core.ToolContext, impl Tool, args map[string]any) (any, error) {
	timeout := d.timeout
	if budgeted, ok := impl.(interface{ Timeout() time.Duration }); ok {
		if own := budgeted.Timeout(); own > 0 {
			timeout = own
		}
	}

	ctx, cancel := toolCtx.WithTimeout(timeout)
	defer cancel()

	type outcome struct {
		payload any
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: NewToolError(impl.Name(), fmt.Sprintf("panic: %v", r), CodeExecution)}
			}
		}()
		payload, err := impl.Call(ctx, args)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case out := <-done:
		return out.payload, out.err
	case <-ctx.Context().Done():
		if ctx.Context().Err() == context.DeadlineExceeded {
			d.logger.Warn("tool.dispatch.timeout", "tool", impl.Name(), "timeout", timeout)
			return nil, NewToolError(impl.Name(),
				fmt.Sprintf("tool did not finish within %s", timeout), CodeTimeout)
		}
		return nil, NewToolError(impl.Name(), "tool execution interrupted", CodeExecution)
	}
}

func granted(grants []string, name string) bool {
	for _, g := range grants {
		if g == name {
			return true
		}
	}
	return false
}

// parseArguments decodes the model-supplied JSON argument payload. An empty
// payload means no arguments.
func parseArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// stringify renders a tool's payload for the model: strings pass through,
// everything else is JSON-encoded.
func stringify(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
