// Package openai implements model.Model on the OpenAI Chat Completions API,
// including streaming, function/tool calling, reasoning deltas and JSON-mode
// output for the roster planner. It adapts AutoCrew's normalized
// Request/Response structures into the SDK's message format and back.
package openai

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/respjson"
	"github.com/openai/openai-go/shared"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/model"
)

// reasoningContentKey is the extra-field key reasoning-capable backends use
// for thinking deltas on streamed chunks.
const reasoningContentKey = "reasoning_content"

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// so complete tool call parts can be reconstructed at finish time.
type aggCall struct{ id, name, args string }

// Options configure the OpenAI model adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI model using the default client (API key from the
// environment).
func New(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI model from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               "gpt-5.2",
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		params := m.buildParams(req)
		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, params, out, errCh)
	}()
	return out, errCh
}

// buildMessages converts normalized contents into OpenAI chat messages,
// attaching tool results immediately after the assistant message carrying
// the matching calls.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	toolResults := collectToolResults(req.Contents)

	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, c := range req.Contents {
		if c.Role == "tool" {
			continue // attached after the matching assistant message
		}
		text := c.Text()
		switch c.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "user":
			messages = append(messages, openai.UserMessage(text))
		case "assistant":
			calls := c.ToolCalls()
			if len(calls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			assistant := &openai.ChatCompletionAssistantMessageParam{
				ToolCalls: make([]openai.ChatCompletionMessageToolCallParam, len(calls)),
			}
			if text != "" {
				assistant.Content.OfString = openai.String(text)
			}
			for i, tc := range calls {
				assistant.ToolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
			for _, tc := range calls {
				if result, ok := toolResults[tc.ID]; ok {
					messages = append(messages, openai.ToolMessage(result, tc.ID))
					delete(toolResults, tc.ID)
				}
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	return messages
}

// collectToolResults indexes tool result outputs by call id.
func collectToolResults(contents []core.Content) map[string]string {
	results := map[string]string{}
	for _, c := range contents {
		if c.Role != "tool" {
			continue
		}
		for _, r := range c.ToolResults() {
			if r.ID == "" {
				continue
			}
			if _, exists := results[r.ID]; exists {
				continue
			}
			results[r.ID] = r.Output()
		}
	}
	return results
}

// buildParams assembles the OpenAI request parameters including tool
// definitions and, for planner requests, JSON-object response format.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if req.JSONOnly {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, tdef := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        tdef.Function.Name,
					Description: openai.String(tdef.Function.Description),
					Parameters:  tdef.Function.Parameters,
				},
			}
		}
		params.Tools = tools
	}
	return params
}

// handleStreaming forwards text and reasoning deltas as partial responses and
// aggregates tool-call fragments by index until the finish chunk.
func (m *Model) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	var textBuilder strings.Builder
	var reasoningBuilder strings.Builder
	toolAgg := map[int64]*aggCall{}
	finish := ""

	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if reasoning := extractReasoning(ch.Delta.JSON.ExtraFields); reasoning != "" {
				reasoningBuilder.WriteString(reasoning)
				out <- model.Response{
					Partial: true,
					Content: core.Content{
						Role:  "assistant",
						Parts: []core.Part{core.ReasoningPart{Text: reasoning}},
					},
				}
			}
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- model.Response{
					Partial: true,
					Content: core.NewTextContent("assistant", ch.Delta.Content),
				}
			}
			for _, tc := range ch.Delta.ToolCalls {
				ac, ok := toolAgg[tc.Index]
				if !ok {
					ac = &aggCall{}
					toolAgg[tc.Index] = ac
				}
				if tc.ID != "" {
					ac.id = tc.ID
				}
				if tc.Function.Name != "" {
					ac.name += tc.Function.Name
				}
				if tc.Function.Arguments != "" {
					ac.args += tc.Function.Arguments
				}
			}
			if ch.FinishReason != "" {
				finish = ch.FinishReason
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
		return
	}

	out <- model.Response{
		Partial:      false,
		Content:      assembleFinal(reasoningBuilder.String(), textBuilder.String(), toolAgg),
		FinishReason: finish,
	}
}

// assembleFinal builds the final content: reasoning, text, then tool calls
// in the index order the model emitted them.
func assembleFinal(reasoning, text string, toolAgg map[int64]*aggCall) core.Content {
	parts := make([]core.Part, 0, len(toolAgg)+2)
	if reasoning != "" {
		parts = append(parts, core.ReasoningPart{Text: reasoning})
	}
	if text != "" {
		parts = append(parts, core.TextPart{Text: text})
	}
	indices := make([]int64, 0, len(toolAgg))
	for idx := range toolAgg {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, idx := range indices {
		ac := toolAgg[idx]
		parts = append(parts, core.ToolCallPart{ToolCall: core.ToolCall{
			ID:        ac.id,
			Name:      ac.name,
			Arguments: ac.args,
		}})
	}
	return core.Content{Role: "assistant", Parts: parts}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("no choices returned")
		return
	}
	ch0 := resp.Choices[0]
	parts := make([]core.Part, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		parts = append(parts, core.ToolCallPart{ToolCall: core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	usage := &model.TokenUsage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	out <- model.Response{
		Partial:      false,
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: ch0.FinishReason,
		Usage:        usage,
	}
}

// extractReasoning pulls a reasoning_content delta out of the chunk's extra
// fields. Not part of the stable chunk schema, so absence is the common case.
func extractReasoning(extraFields map[string]respjson.Field) string {
	if extraFields == nil {
		return ""
	}
	field, ok := extraFields[reasoningContentKey]
	if !ok {
		return ""
	}
	text, err := strconv.Unquote(field.Raw())
	if err != nil {
		return ""
	}
	return text
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
