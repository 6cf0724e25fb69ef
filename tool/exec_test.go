package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/autocrew/core"
)

func execToolCtx() *core.ToolContext {
	return core.NewToolContext(context.Background(), "", "c1", core.CallerInfo{Role: "assistant"}, nil)
}

func TestExecCapturesOutput(t *testing.T) {
	tool := NewExecTool(5 * time.Second)

	out, err := tool.Call(execToolCtx(), map[string]any{"command": "echo hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestExecReportsExitCode(t *testing.T) {
	tool := NewExecTool(5 * time.Second)

	out, err := tool.Call(execToolCtx(), map[string]any{"command": "echo oops; exit 3"})
	require.NoError(t, err)
	assert.Contains(t, out, "oops")
	assert.Contains(t, out, "(exit code 3)")
}

func TestExecNoOutput(t *testing.T) {
	tool := NewExecTool(5 * time.Second)

	out, err := tool.Call(execToolCtx(), map[string]any{"command": "true"})
	require.NoError(t, err)
	assert.Equal(t, "(no output)", out)
}

func TestExecTimeout(t *testing.T) {
	tool := NewExecTool(50 * time.Millisecond)

	out, err := tool.Call(execToolCtx(), map[string]any{"command": "sleep 5"})
	require.NoError(t, err)
	assert.Contains(t, out, "timed out")
}
