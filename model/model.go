package model

import (
	"context"

	"github.com/hupe1980/autocrew/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual tool exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by the agent runtime
// and the roster planner.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt for the model
	Contents     []core.Content   `json:"contents"`     // Conversation history, oldest first
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
	JSONOnly     bool             `json:"json_only,omitempty"` // Constrain output to a single JSON object
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model. The
// sequence for one Generate call contains zero or more partial chunks
// followed by exactly one final chunk carrying the accumulated content.
type Response struct {
	Partial      bool         `json:"partial"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason,omitempty"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the boundary to the completion service. A response stream is
// finite and non-restartable: every Generate call must carry the full
// conversation, no server-side continuation is assumed.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// FinalContent drains a Generate response stream and returns the content of
// the final (non-partial) chunk, or the first error observed. Convenience
// for one-shot callers like the roster planner.
func FinalContent(respCh <-chan Response, errCh <-chan error) (core.Content, error) {
	var final core.Content
	for resp := range respCh {
		if !resp.Partial {
			final = resp.Content
		}
	}
	if err := <-errCh; err != nil {
		return core.Content{}, err
	}
	return final, nil
}
