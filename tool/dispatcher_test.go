package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/autocrew/core"
)

func echoTool() *FunctionTool {
	return NewFunctionTool(
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
	)
}

func sleepTool(d time.Duration) *FunctionTool {
	return NewFunctionTool(
		"sleep",
		"Block for a while",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			select {
			case <-tc.Context().Done():
				return nil, tc.Context().Err()
			case <-time.After(d):
				return "woke up", nil
			}
		},
	)
}

func testToolCtx(caller core.CallerInfo) *core.ToolContext {
	return core.NewToolContext(context.Background(), "run1", "call1", caller, nil)
}

func TestDispatchGrantedTool(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{ID: "c1", Name: "echo", Arguments: `{"text":"hi"}`},
		[]string{"echo"})

	assert.Empty(t, result.Error)
	assert.Equal(t, "hi", result.Content)
	assert.Equal(t, "c1", result.ID)
}

func TestDispatchUnauthorized(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "echo", Arguments: `{"text":"hi"}`},
		[]string{"exec"})

	require.NotEmpty(t, result.Error)
	assert.Contains(t, result.Error, "not granted")
	assert.Contains(t, result.Error, "writer")
}

func TestDispatchTeamToolWithoutTeam(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: core.ToolPostMessage, Arguments: `{}`},
		[]string{core.ToolPostMessage})

	require.NotEmpty(t, result.Error)
	assert.Contains(t, result.Error, "only available during a team run")
}

func TestDispatchDeclareDoneRequiresOrchestrator(t *testing.T) {
	teamReg := NewRegistry(NewFunctionTool(
		core.ToolDeclareDone, "End the run",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			tc.EndRun()
			return "Team run marked as done.", nil
		},
	))
	d := NewDispatcher(NewRegistry(), func(o *DispatcherOptions) {
		o.TeamRegistry = teamReg
	})

	// A non-orchestrator is rejected even with the grant.
	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: core.ToolDeclareDone},
		[]string{core.ToolDeclareDone})
	assert.Contains(t, result.Error, "not granted")

	// The orchestrator goes through and raises the end-run signal.
	toolCtx := testToolCtx(core.CallerInfo{Role: "orchestrator", Orchestrator: true})
	result = d.Dispatch(toolCtx,
		core.ToolCall{Name: core.ToolDeclareDone},
		[]string{core.ToolDeclareDone})
	assert.Empty(t, result.Error)
	assert.Equal(t, "Team run marked as done.", result.Content)
	assert.True(t, toolCtx.ShouldEndRun())
}

func TestDispatchUnknownTool(t *testing.T) {
	d := NewDispatcher(NewRegistry())

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "warp"},
		[]string{"warp"})

	assert.Contains(t, result.Error, "unknown tool")
}

func TestDispatchInvalidArguments(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "echo", Arguments: `{not json`},
		[]string{"echo"})

	assert.Contains(t, result.Error, "invalid arguments")
}

func TestDispatchValidationError(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "echo", Arguments: `{}`},
		[]string{"echo"})

	assert.Contains(t, result.Error, CodeValidation)
}

func TestDispatchTimeout(t *testing.T) {
	d := NewDispatcher(NewRegistry(sleepTool(5*time.Second)), func(o *DispatcherOptions) {
		o.Timeout = 20 * time.Millisecond
	})

	start := time.Now()
	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "sleep"},
		[]string{"sleep"})

	assert.Contains(t, result.Error, "did not finish within")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDispatchHonorsToolTimeout(t *testing.T) {
	// A tool declaring its own budget outlives a tighter dispatcher default.
	slow := sleepTool(50 * time.Millisecond).WithTimeout(5 * time.Second)
	d := NewDispatcher(NewRegistry(slow), func(o *DispatcherOptions) {
		o.Timeout = 20 * time.Millisecond
	})

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "sleep"},
		[]string{"sleep"})

	assert.Empty(t, result.Error)
	assert.Equal(t, "woke up", result.Content)
}

func TestDispatchToolTimeoutCeiling(t *testing.T) {
	// A declared budget is a ceiling too, not only an extension.
	slow := sleepTool(5 * time.Second).WithTimeout(20 * time.Millisecond)
	d := NewDispatcher(NewRegistry(slow))

	start := time.Now()
	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "sleep"},
		[]string{"sleep"})

	assert.Contains(t, result.Error, "did not finish within 20ms")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDispatchRecoversPanic(t *testing.T) {
	boom := NewFunctionTool("boom", "Panic",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			panic("kaboom")
		},
	)
	d := NewDispatcher(NewRegistry(boom))

	result := d.Dispatch(testToolCtx(core.CallerInfo{Role: "writer"}),
		core.ToolCall{Name: "boom"},
		[]string{"boom"})

	assert.Contains(t, result.Error, "panic")
}

func TestDefinitionsFollowGrantOrder(t *testing.T) {
	teamReg := NewRegistry(NewFunctionTool(
		core.ToolPostMessage, "Post",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) { return nil, nil },
	))
	d := NewDispatcher(NewRegistry(echoTool()), func(o *DispatcherOptions) {
		o.TeamRegistry = teamReg
	})

	defs := d.Definitions([]string{core.ToolPostMessage, "echo", "missing"})
	require.Len(t, defs, 2)
	assert.Equal(t, core.ToolPostMessage, defs[0].Function.Name)
	assert.Equal(t, "echo", defs[1].Function.Name)
}
