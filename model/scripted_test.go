package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedModelReplaysInOrder(t *testing.T) {
	m := NewScriptedModel(
		Text("first"),
		Call("exec", `{"command":"ls"}`),
	)

	content, err := FinalContent(m.Generate(context.Background(), Request{}))
	require.NoError(t, err)
	assert.Equal(t, "first", content.Text())

	content, err = FinalContent(m.Generate(context.Background(), Request{}))
	require.NoError(t, err)
	calls := content.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "exec", calls[0].Name)
	assert.Equal(t, "call_exec", calls[0].ID)

	assert.Equal(t, 2, m.CallCount())
}

func TestScriptedModelExhaustionIsError(t *testing.T) {
	m := NewScriptedModel(Text("only one"))

	_, err := FinalContent(m.Generate(context.Background(), Request{}))
	require.NoError(t, err)

	_, err = FinalContent(m.Generate(context.Background(), Request{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted")
}

func TestScriptedModelStreamEmitsPartial(t *testing.T) {
	m := NewScriptedModel(Text("streamed"))

	respCh, errCh := m.Generate(context.Background(), Request{Stream: true})

	var partials, finals int
	var finalText string
	for resp := range respCh {
		if resp.Partial {
			partials++
		} else {
			finals++
			finalText = resp.Content.Text()
		}
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, partials)
	assert.Equal(t, 1, finals)
	assert.Equal(t, "streamed", finalText)
}

func TestScriptedModelFinishReason(t *testing.T) {
	m := NewScriptedModel(Call("exec", `{}`), Text("done"))

	respCh, errCh := m.Generate(context.Background(), Request{})
	var finish string
	for resp := range respCh {
		finish = resp.FinishReason
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "tool_calls", finish)

	respCh, errCh = m.Generate(context.Background(), Request{})
	for resp := range respCh {
		finish = resp.FinishReason
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "stop", finish)
}
