package providers

import (
	"encoding/json"
	"fmt"

	"github.com/teilomillet/tastelever/config"
	"github.com/teilomillet/tastelever/utils"
)

// OpenAIProvider implements the Provider interface for OpenAI's chat completions
// API and for the many services that mirror it (OpenRouter, vLLM, Groq, Ollama).
type OpenAIProvider struct {
	apiKey       string
	model        string
	config       ProviderConfig
	endpoint     string
	extraHeaders map[string]string
	options      map[string]any
	logger       utils.Logger
}

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(apiKey, model string, extraHeaders map[string]string) Provider {
	cfg, _ := standardConfig("openai")
	return NewOpenAICompatibleProvider(cfg, apiKey, model, extraHeaders)
}

// NewOpenAICompatibleProvider creates a provider speaking the chat-completions
// wire format against the endpoint and auth scheme described by cfg.
func NewOpenAICompatibleProvider(cfg ProviderConfig, apiKey, model string, extraHeaders map[string]string) Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &OpenAIProvider{
		apiKey:       apiKey,
		model:        model,
		config:       cfg,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewLogger(utils.LogLevelWarn),
	}
}

func (p *OpenAIProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

// SetOption sets a specific option for the provider
func (p *OpenAIProvider) SetOption(key string, value any) {
	p.options[key] = value
	p.logger.Debug("Option set", "key", key, "value", value)
}

// SetDefaultOptions sets default options based on the provided configuration
func (p *OpenAIProvider) SetDefaultOptions(cfg *config.Config) {
	p.SetOption("temperature", cfg.Temperature)
	p.SetOption("max_tokens", cfg.MaxTokens)
	if cfg.Seed != nil {
		p.SetOption("seed", *cfg.Seed)
	}
	if cfg.Endpoint != "" {
		p.SetEndpoint(cfg.Endpoint)
	}
}

func (p *OpenAIProvider) Name() string {
	return p.config.Name
}

func (p *OpenAIProvider) Endpoint() string {
	if p.endpoint != "" {
		return p.endpoint
	}
	return p.config.Endpoint
}

// SetEndpoint overrides the configured endpoint, e.g. for a self-hosted vLLM.
func (p *OpenAIProvider) SetEndpoint(endpoint string) {
	p.endpoint = endpoint
}

func (p *OpenAIProvider) SupportsStructuredResponse() bool {
	return p.config.SupportsStructuredResponse
}

func (p *OpenAIProvider) SupportsLogprobs() bool {
	return p.config.SupportsLogprobs
}

// Headers returns the necessary headers for API requests
func (p *OpenAIProvider) Headers() map[string]string {
	headers := make(map[string]string)
	for k, v := range p.config.RequiredHeaders {
		headers[k] = v
	}
	if p.apiKey != "" && p.config.AuthHeader != "" {
		headers[p.config.AuthHeader] = p.config.AuthPrefix + p.apiKey
	}
	for k, v := range p.extraHeaders {
		headers[k] = v
	}
	return headers
}

// SetExtraHeaders sets additional headers for the API request
func (p *OpenAIProvider) SetExtraHeaders(extraHeaders map[string]string) {
	p.extraHeaders = extraHeaders
}

// PrepareRequest builds the chat-completions body. The response schema and the
// logprobs flag are only forwarded when the provider advertises support for them.
func (p *OpenAIProvider) PrepareRequest(req *Request, options map[string]any) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	messages := make([]map[string]string, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, map[string]string{"role": m.Role, "content": m.Content})
	}

	request := map[string]any{
		"model":    p.model,
		"messages": messages,
	}

	if req.ResponseSchema != nil && p.SupportsStructuredResponse() {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		request["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   name,
				"schema": req.ResponseSchema,
			},
		}
	}

	if req.Logprobs && p.SupportsLogprobs() {
		request["logprobs"] = true
	}

	for k, v := range p.options {
		request[k] = v
	}
	for k, v := range options {
		request[k] = v
	}

	reqJSON, err := json.Marshal(request)
	if err != nil {
		p.logger.Error("Failed to marshal request", "error", err)
		return nil, err
	}

	p.logger.Debug("Request prepared", "provider", p.Name(), "bytes", len(reqJSON))
	return reqJSON, nil
}

// ParseResponse parses the API response, keeping the per-choice logprobs when present.
func (p *OpenAIProvider) ParseResponse(body []byte) (*Response, error) {
	var response struct {
		Choices []struct {
			Index   int `json:"index"`
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
			Logprobs     *struct {
				Content []TokenLogprob `json:"content"`
			} `json:"logprobs"`
		} `json:"choices"`
		Usage *struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	result := &Response{
		Content:      Text{Value: response.Choices[0].Message.Content},
		FinishReason: response.Choices[0].FinishReason,
	}
	for _, choice := range response.Choices {
		lp := ChoiceLogprobs{Index: choice.Index}
		if choice.Logprobs != nil {
			lp.Content = choice.Logprobs.Content
		}
		result.Logprobs = append(result.Logprobs, lp)
	}
	if response.Usage != nil {
		result.Usage = NewUsage(response.Usage.PromptTokens, response.Usage.CompletionTokens)
	}

	return result, nil
}
