package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/model"
	"github.com/hupe1980/autocrew/tool"
)

func echoRegistry() *tool.Registry {
	return tool.NewRegistry(tool.NewFunctionTool(
		"echo",
		"Echo the given text back",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["text"], nil
		},
	))
}

func newTestAgent(llm model.Model, grants []string, optFns ...func(o *Options)) *Agent {
	return New(Config{
		Role:       "assistant",
		Model:      llm,
		Grants:     grants,
		Dispatcher: tool.NewDispatcher(echoRegistry()),
	}, optFns...)
}

func TestRunTurnPlainText(t *testing.T) {
	llm := model.NewScriptedModel(model.Text("hello there"))
	ag := newTestAgent(llm, nil)

	outcome, err := ag.RunTurn(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", outcome.Text)
	assert.Zero(t, outcome.ToolCalls)
	assert.False(t, outcome.EndRun)
}

func TestRunTurnToolLoop(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Call("echo", `{"text":"ping"}`),
		model.Text("the tool said ping"),
	)
	ag := newTestAgent(llm, []string{"echo"})

	outcome, err := ag.RunTurn(context.Background(), "use the tool")
	require.NoError(t, err)
	assert.Equal(t, "the tool said ping", outcome.Text)
	assert.Equal(t, 1, outcome.ToolCalls)
	assert.Equal(t, 2, llm.CallCount())
}

func TestRunTurnToolErrorFedBack(t *testing.T) {
	// The tool is not granted; the error becomes a result, not a Go error,
	// and the model gets another chance to answer.
	llm := model.NewScriptedModel(
		model.Call("echo", `{"text":"ping"}`),
		model.Text("understood, no tools"),
	)
	ag := newTestAgent(llm, nil)

	outcome, err := ag.RunTurn(context.Background(), "use the tool")
	require.NoError(t, err)
	assert.Equal(t, "understood, no tools", outcome.Text)
	assert.Equal(t, 1, outcome.ToolCalls)
}

func TestRunTurnBudgetExceeded(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Call("echo", `{"text":"1"}`),
		model.Call("echo", `{"text":"2"}`),
		model.Call("echo", `{"text":"3"}`),
	)
	ag := newTestAgent(llm, []string{"echo"}, func(o *Options) {
		o.MaxToolCalls = 2
	})

	outcome, err := ag.RunTurn(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.True(t, outcome.BudgetExceeded)
	assert.Equal(t, 2, outcome.ToolCalls)
}

func TestRunTurnModelFailure(t *testing.T) {
	llm := model.NewScriptedModel() // exhausted immediately
	ag := newTestAgent(llm, nil)

	_, err := ag.RunTurn(context.Background(), "hi")
	assert.Error(t, err)
}

func TestHistoryLimitTrimsAcrossTurns(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Text("one"), model.Text("two"), model.Text("three"),
	)
	ag := newTestAgent(llm, nil, func(o *Options) {
		o.HistoryLimit = 4
	})

	for _, input := range []string{"a", "b", "c"} {
		_, err := ag.RunTurn(context.Background(), input)
		require.NoError(t, err)
	}

	history := ag.History()
	require.Len(t, history, 4)
	assert.Equal(t, "b", history[0].Text())
	assert.Equal(t, "three", history[3].Text())
}

type recordingObserver struct {
	core.NopObserver
	mu      sync.Mutex
	deltas  []string
	started []string
}

func (r *recordingObserver) TextDelta(role, delta string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltas = append(r.deltas, delta)
}

func (r *recordingObserver) ToolCallStarted(role, name, args string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, name)
}

func TestObserverReceivesEvents(t *testing.T) {
	obs := &recordingObserver{}
	llm := model.NewScriptedModel(
		model.Call("echo", `{"text":"ping"}`),
		model.Text("done"),
	)
	ag := New(Config{
		Role:       "assistant",
		Model:      llm,
		Grants:     []string{"echo"},
		Dispatcher: tool.NewDispatcher(echoRegistry()),
		Observer:   obs,
	})

	_, err := ag.RunTurn(context.Background(), "go")
	require.NoError(t, err)

	assert.Equal(t, []string{"echo"}, obs.started)
	assert.Contains(t, obs.deltas, "done")
}
