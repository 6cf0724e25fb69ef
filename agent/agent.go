package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/logging"
	"github.com/hupe1980/autocrew/model"
	"github.com/hupe1980/autocrew/tool"
)

// DefaultMaxToolCalls is the per-turn tool-call budget. The loop has no
// other iteration cap: a turn naturally ends when the model stops requesting
// tools, and the budget only catches runaways.
const DefaultMaxToolCalls = 50

// Options tune an agent's runtime behavior.
type Options struct {
	// MaxToolCalls caps tool calls within one turn. Zero means
	// DefaultMaxToolCalls.
	MaxToolCalls int
	// HistoryLimit keeps only the last N history entries across turns
	// (user/assistant pairs; tool traffic lives only inside a turn).
	// Zero keeps everything.
	HistoryLimit int
	// Streaming requests partial chunks from the model so observers see
	// live output. Off, the observer still receives the final text once.
	Streaming bool
}

// Config assembles an agent from its roster identity and injected
// collaborators.
type Config struct {
	// Role is the agent's unique identity and board address.
	Role string
	// Orchestrator marks the single role allowed to end the run.
	Orchestrator bool
	// SystemPrompt is the standing instruction sent with every request.
	SystemPrompt string
	// Grants lists the tool names this agent may call.
	Grants []string
	// RunID identifies the owning team run ("" for plain chat).
	RunID string

	Model      model.Model
	Dispatcher *tool.Dispatcher
	Observer   core.Observer
	Logger     logging.Logger
}

// TurnOutcome summarizes one executed turn.
type TurnOutcome struct {
	// Text is the turn's final (or partial, on budget excess) output.
	Text string
	// ToolCalls counts the calls dispatched during the turn.
	ToolCalls int
	// EndRun is set when declare_done was accepted during the turn; the
	// whole team run stops, not just this turn.
	EndRun bool
	// BudgetExceeded is set when the turn ended early because the model
	// kept requesting tools past the per-turn cap. Recoverable: the turn
	// output is partial but the run continues.
	BudgetExceeded bool
}

// Agent owns one role's private conversation history and executes its
// think / call tools / observe loop. An Agent is only ever driven from a
// single goroutine; the scheduler guarantees one active turn at a time.
type Agent struct {
	role         string
	orchestrator bool
	systemPrompt string
	grants       []string
	runID        string

	llm        model.Model
	dispatcher *tool.Dispatcher
	observer   core.Observer
	logger     logging.Logger
	opts       Options

	history []core.Content
}

// New constructs an agent. Nil observer and logger default to no-ops.
func New(cfg Config, optFns ...func(o *Options)) *Agent {
	opts := Options{MaxToolCalls: DefaultMaxToolCalls, Streaming: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxToolCalls <= 0 {
		opts.MaxToolCalls = DefaultMaxToolCalls
	}
	observer := cfg.Observer
	if observer == nil {
		observer = core.NopObserver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Agent{
		role:         cfg.Role,
		orchestrator: cfg.Orchestrator,
		systemPrompt: cfg.SystemPrompt,
		grants:       cfg.Grants,
		runID:        cfg.RunID,
		llm:          cfg.Model,
		dispatcher:   cfg.Dispatcher,
		observer:     observer,
		logger:       logger,
		opts:         opts,
	}
}

// Role returns the agent's role name.
func (a *Agent) Role() string { return a.role }

// Orchestrator reports whether this agent may end the run.
func (a *Agent) Orchestrator() bool { return a.orchestrator }

// History returns a copy of the agent's persisted conversation history.
func (a *Agent) History() []core.Content {
	out := make([]core.Content, len(a.history))
	copy(out, a.history)
	return out
}

// SeedHistory replaces the persisted history, e.g. with a loaded session.
func (a *Agent) SeedHistory(history []core.Content) {
	a.history = append([]core.Content(nil), history...)
}

// RunTurn executes one full tool-calling loop for the given user-visible
// input: stream a completion, dispatch any requested tool calls in emission
// order, feed results back, and repeat until the model answers without tool
// calls. Tool failures are returned to the model as results, never as Go
// errors; an error return means the model boundary itself failed.
func (a *Agent) RunTurn(ctx context.Context, input string) (TurnOutcome, error) {
	var outcome TurnOutcome

	// Transient turn trail: assistant tool calls and results exist only
	// while the turn runs; the persisted history keeps text pairs.
	turn := []core.Content{core.NewTextContent("user", input)}

	for {
		final, err := a.generate(ctx, turn)
		if err != nil {
			return outcome, err
		}

		calls := final.ToolCalls()
		if len(calls) == 0 {
			outcome.Text = final.Text()
			break
		}

		turn = append(turn, final)
		for _, call := range calls {
			if outcome.ToolCalls >= a.opts.MaxToolCalls {
				a.logger.Warn("agent.turn_budget_exceeded",
					"role", a.role, "max_tool_calls", a.opts.MaxToolCalls)
				outcome.BudgetExceeded = true
				outcome.Text = final.Text()
				break
			}
			outcome.ToolCalls++

			result, endRun := a.dispatch(ctx, call)
			turn = append(turn, core.NewToolResultContent(result))
			if endRun {
				outcome.EndRun = true
			}
		}
		if outcome.EndRun {
			outcome.Text = final.Text()
			break
		}
		if outcome.BudgetExceeded {
			break
		}
	}

	a.rememberTurn(input, outcome.Text)
	return outcome, nil
}

// generate issues one model request over the persisted history plus the
// current turn trail, forwarding deltas to the observer, and returns the
// final content.
func (a *Agent) generate(ctx context.Context, turn []core.Content) (core.Content, error) {
	contents := make([]core.Content, 0, len(a.history)+len(turn))
	contents = append(contents, a.history...)
	contents = append(contents, turn...)

	req := model.Request{
		Instructions: a.systemPrompt,
		Contents:     contents,
		Tools:        a.dispatcher.Definitions(a.grants),
		Stream:       a.opts.Streaming,
	}

	respCh, errCh := a.llm.Generate(ctx, req)

	var final core.Content
	gotFinal := false
	for resp := range respCh {
		if resp.Partial {
			if text := resp.Content.Text(); text != "" {
				a.observer.TextDelta(a.role, text)
			}
			if reasoning := resp.Content.Reasoning(); reasoning != "" {
				a.observer.ReasoningDelta(a.role, reasoning)
			}
			continue
		}
		final = resp.Content
		gotFinal = true
	}
	if err := <-errCh; err != nil {
		return core.Content{}, fmt.Errorf("model generate for %s: %w", a.role, err)
	}
	if !gotFinal {
		return core.Content{}, fmt.Errorf("model for %s produced no final response", a.role)
	}
	if !a.opts.Streaming {
		if text := final.Text(); text != "" {
			a.observer.TextDelta(a.role, text)
		}
	}
	return final, nil
}

// dispatch executes a single tool call and reports it to the observer.
func (a *Agent) dispatch(ctx context.Context, call core.ToolCall) (core.ToolResult, bool) {
	if call.ID == "" {
		// Some providers omit call ids; results still need correlation.
		call.ID = "call_" + uuid.NewString()[:8]
	}

	a.observer.ToolCallStarted(a.role, call.Name, call.Arguments)

	toolCtx := core.NewToolContext(ctx, a.runID, call.ID, core.CallerInfo{
		Role:         a.role,
		Orchestrator: a.orchestrator,
	}, a.logger)

	result := a.dispatcher.Dispatch(toolCtx, call, a.grants)

	var callErr error
	if result.Error != "" {
		callErr = fmt.Errorf("%s", result.Error)
	}
	a.observer.ToolCallFinished(a.role, call.Name, result.Content, callErr)

	return result, toolCtx.ShouldEndRun()
}

// rememberTurn persists the turn as a user/assistant text pair and applies
// the history limit.
func (a *Agent) rememberTurn(input, output string) {
	a.history = append(a.history,
		core.NewTextContent("user", input),
		core.NewTextContent("assistant", output),
	)
	if limit := a.opts.HistoryLimit; limit > 0 && len(a.history) > limit {
		a.history = a.history[len(a.history)-limit:]
	}
}
