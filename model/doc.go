// Package model defines the completion-service boundary: normalized
// request/response structures, the Model interface implemented by provider
// adapters (subpackages openai and anthropic), and a deterministic
// ScriptedModel for tests and examples.
//
// Responses are streamed over a channel as partial chunks followed by one
// final chunk; the stream is finite and cannot be resumed, so callers resend
// the full conversation on every request.
package model
