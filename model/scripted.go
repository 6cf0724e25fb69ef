package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/autocrew/core"
)

// ScriptedModel replays a fixed sequence of assistant contents, one per
// Generate call, regardless of input. It is the deterministic stand-in used
// by scheduler and runtime tests: replaying the same script against a fresh
// run must produce the same board and final status.
type ScriptedModel struct {
	mu     sync.Mutex
	script []core.Content
	calls  int
}

// NewScriptedModel builds a model that answers the i-th Generate call with
// the i-th scripted content.
func NewScriptedModel(script ...core.Content) *ScriptedModel {
	return &ScriptedModel{script: script}
}

// Text builds a plain assistant text response for scripting.
func Text(text string) core.Content {
	return core.NewTextContent("assistant", text)
}

// Call builds an assistant response carrying one tool call. The call ID is
// derived from the tool name so replays stay byte-identical.
func Call(name, args string) core.Content {
	return Calls(core.ToolCall{ID: "call_" + name, Name: name, Arguments: args})
}

// Calls builds an assistant response carrying several tool calls in order.
func Calls(calls ...core.ToolCall) core.Content {
	parts := make([]core.Part, len(calls))
	for i, c := range calls {
		parts[i] = core.ToolCallPart{ToolCall: c}
	}
	return core.Content{Role: "assistant", Parts: parts}
}

// Generate implements Model. Streaming requests receive the scripted text as
// a single partial chunk before the final chunk so observer plumbing is
// exercised; exhausting the script is an error.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 4)
	errCh := make(chan error, 1)

	m.mu.Lock()
	call := m.calls
	m.calls++
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if ctx.Err() != nil {
			errCh <- ctx.Err()
			return
		}
		if call >= len(m.script) {
			errCh <- fmt.Errorf("scripted model exhausted after %d responses", len(m.script))
			return
		}

		content := m.script[call]
		if req.Stream {
			if text := content.Text(); text != "" {
				respCh <- Response{
					Partial: true,
					Content: core.NewTextContent("assistant", text),
				}
			}
		}
		finish := "stop"
		if len(content.ToolCalls()) > 0 {
			finish = "tool_calls"
		}
		respCh <- Response{Partial: false, Content: content, FinishReason: finish}
	}()

	return respCh, errCh
}

// CallCount returns how many Generate calls the script has served.
func (m *ScriptedModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "scripted", SupportsTools: true}
}
