// Package providers implements the chat-completion backends used by the
// classification and explanation services. Every built-in provider speaks the
// OpenAI chat-completions wire format, which is the one format that carries
// per-token log-probabilities.
package providers

import (
	"github.com/teilomillet/tastelever/config"
	"github.com/teilomillet/tastelever/utils"
)

// Provider defines the interface that all LLM providers must implement.
type Provider interface {
	// Core identification and configuration
	Name() string
	Endpoint() string
	SetEndpoint(endpoint string)
	Headers() map[string]string
	SetExtraHeaders(extraHeaders map[string]string)
	SetDefaultOptions(cfg *config.Config)
	SetOption(key string, value any)
	SetLogger(logger utils.Logger)

	PrepareRequest(req *Request, options map[string]any) ([]byte, error)
	ParseResponse(body []byte) (*Response, error)

	// Capability checks
	SupportsStructuredResponse() bool
	SupportsLogprobs() bool
}

// ProviderConfig holds the configuration for a provider
type ProviderConfig struct {
	// Name is the provider identifier
	Name string

	// Endpoint is the API endpoint URL
	Endpoint string

	// AuthHeader is the header key used for authentication
	AuthHeader string

	// AuthPrefix is the prefix to use before the API key (e.g., "Bearer ")
	AuthPrefix string

	// RequiredHeaders are additional headers always needed
	RequiredHeaders map[string]string

	// SupportsStructuredResponse indicates if response_format json_schema is supported
	SupportsStructuredResponse bool

	// SupportsLogprobs indicates if the API returns per-token log-probabilities
	SupportsLogprobs bool
}

// ProviderConstructor defines a function type for creating new provider instances.
type ProviderConstructor func(apiKey, model string, extraHeaders map[string]string) Provider
