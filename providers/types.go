package providers

import (
	"github.com/invopop/jsonschema"
)

// Request represents a unified request structure
type Request struct {
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`

	// ResponseSchema, when set, asks the provider for an object conforming to it.
	ResponseSchema *jsonschema.Schema `json:"response_schema,omitempty"`
	SchemaName     string             `json:"schema_name,omitempty"`

	// Logprobs requests per-token log-probabilities for the generated content.
	Logprobs bool `json:"logprobs,omitempty"`
}

// Message represents a single message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the response from an LLM model.
type Response struct {
	Content      Content
	Logprobs     []ChoiceLogprobs `json:"logprobs,omitempty"`
	FinishReason string           `json:"finish_reason,omitempty"`
	Usage        *Usage           `json:"usage,omitempty"`
}

// Content is a sealed interface for different types of content in a response. Currently, text content only.
type Content interface {
	isContent()
}

// AsText attempts to extract the text content from the response.
func (r *Response) AsText() string {
	if r == nil {
		return ""
	}
	if textContent, ok := r.Content.(Text); ok {
		return textContent.Value
	}
	return ""
}

// Text represents text content in a response.
type Text struct {
	Value string
}

func (t Text) isContent() {}

// TokenLogprob is one generated token with its natural-log probability.
type TokenLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

// ChoiceLogprobs holds the ordered token log-probabilities of one output choice.
// Content is nil when the provider returned no log-probabilities for the choice.
type ChoiceLogprobs struct {
	Index   int            `json:"index"`
	Content []TokenLogprob `json:"content"`
}

// Usage represents the token usage information for a response.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

func NewUsage(inputTokens, outputTokens int64) *Usage {
	return &Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
	}
}
