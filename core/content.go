package core

import "strings"

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// ReasoningPart carries model reasoning ("thinking") text. Reasoning is
// surfaced to observers but never sent back to the model on later requests.
type ReasoningPart struct {
	Text string
}

// isPart implements the Part interface for ReasoningPart.
func (ReasoningPart) isPart() {}

// ToolCall describes a tool invocation request emitted by the model.
type ToolCall struct {
	ID        string `json:"id,omitempty"`        // Provider-assigned call id (synthesized when absent)
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// ToolCallPart wraps a ToolCall as a content part.
type ToolCallPart struct {
	ToolCall ToolCall
}

// isPart implements the Part interface for ToolCallPart.
func (ToolCallPart) isPart() {}

// ToolResult describes the outcome of a tool call.
type ToolResult struct {
	ID      string `json:"id,omitempty"`      // Matches the originating ToolCall ID
	Name    string `json:"name"`              // Tool name
	Content string `json:"content,omitempty"` // Successful result payload
	Error   string `json:"error,omitempty"`   // Populated on failure
}

// Output returns the text fed back to the model: the result content on
// success, or an "Error: ..." line the model can react to on failure.
func (r ToolResult) Output() string {
	if r.Error != "" {
		return "Error: " + r.Error
	}
	return r.Content
}

// ToolResultPart wraps a ToolResult as a content part.
type ToolResultPart struct {
	ToolResult ToolResult
}

// isPart implements the Part interface for ToolResultPart.
func (ToolResultPart) isPart() {}

// Content holds role + ordered parts. Role is one of "system", "user",
// "assistant" or "tool".
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// NewTextContent builds a single-text-part content record.
func NewTextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// NewToolResultContent builds the "tool" role record answering a call.
func NewToolResultContent(result ToolResult) Content {
	return Content{Role: "tool", Parts: []Part{ToolResultPart{ToolResult: result}}}
}

// Text concatenates all plain text parts.
func (c Content) Text() string {
	var sb strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// Reasoning concatenates all reasoning parts.
func (c Content) Reasoning() string {
	var sb strings.Builder
	for _, p := range c.Parts {
		if rp, ok := p.(ReasoningPart); ok {
			sb.WriteString(rp.Text)
		}
	}
	return sb.String()
}

// ToolCalls returns the tool call parts in emission order.
func (c Content) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range c.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.ToolCall)
		}
	}
	return calls
}

// ToolResults returns the tool result parts in order.
func (c Content) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range c.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.ToolResult)
		}
	}
	return results
}
