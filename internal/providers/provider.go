// Package providers abstracts access to LLM backends. The pipeline only
// needs single-shot completions with JSON-schema constrained output, so the
// interface is deliberately narrow.
package providers

import (
	"context"
	"time"
)

// Client is the interface for completion backends.
type Client interface {
	// Complete sends a single completion request.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// Name returns the client identifier (e.g. "openai").
	Name() string
}

// CompletionRequest is a request to an LLM.
type CompletionRequest struct {
	// Model selection (uses client default if empty). Opaque identifier
	// passed through to the backend unchanged.
	Model string `json:"model,omitempty"`

	// System is the system/instruction message.
	System string `json:"system,omitempty"`

	// Prompt is the user message.
	Prompt string `json:"prompt"`

	// SchemaName and JSONSchema request structured output constrained to
	// the given JSON Schema. When JSONSchema is nil the response is free
	// text.
	SchemaName string         `json:"schema_name,omitempty"`
	JSONSchema map[string]any `json:"json_schema,omitempty"`

	// Generation parameters
	Temperature float64       `json:"temperature,omitempty"`
	Timeout     time.Duration `json:"-"`

	// Request tracking
	RequestID string `json:"-"`
}

// CompletionResult is the response from an LLM call.
type CompletionResult struct {
	// Content is the raw output text (JSON when a schema was requested).
	Content string `json:"content"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
}
