package providers

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/teilomillet/tastelever/config"
	"github.com/teilomillet/tastelever/utils"
)

// MockResponse is one canned reply of the MockProvider.
type MockResponse struct {
	Text     string
	Logprobs []TokenLogprob
}

// MockProvider implements the Provider interface for testing purposes.
// It ignores the HTTP body it is handed and replays queued responses.
type MockProvider struct {
	mu           sync.Mutex
	endpoint     string
	model        string
	extraHeaders map[string]string
	options      map[string]any
	logger       utils.Logger
	// Mock response configuration
	responseText  string
	shouldError   bool
	errorMsg      string
	responses     []MockResponse // Queue of preset responses
	currentIndex  int            // Current position in response queue
	loopResponses bool           // Whether to loop through responses or error when exhausted
	requests      [][]byte
}

// NewMockProvider creates a new mock provider instance for testing.
func NewMockProvider(endpoint, model string, extraHeaders map[string]string) Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &MockProvider{
		endpoint:     endpoint,
		model:        model,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewNopLogger(),
		responseText: "This is a mock response",
	}
}

// SetMockResponse configures the mock response text
func (p *MockProvider) SetMockResponse(response string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responseText = response
}

// SetMockError configures the mock to return an error
func (p *MockProvider) SetMockError(shouldError bool, errorMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shouldError = shouldError
	p.errorMsg = errorMsg
}

// SetResponses configures a list of responses to be returned in sequence
func (p *MockProvider) SetResponses(responses []MockResponse, loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = responses
	p.currentIndex = 0
	p.loopResponses = loop
}

// Requests returns every request body prepared so far.
func (p *MockProvider) Requests() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.requests...)
}

func (p *MockProvider) SetLogger(logger utils.Logger)             { p.logger = logger }
func (p *MockProvider) Name() string                              { return "mock" }
func (p *MockProvider) Endpoint() string                          { return p.endpoint }
func (p *MockProvider) SetEndpoint(endpoint string)               { p.endpoint = endpoint }
func (p *MockProvider) SupportsStructuredResponse() bool          { return true }
func (p *MockProvider) SupportsLogprobs() bool                    { return true }
func (p *MockProvider) SetExtraHeaders(headers map[string]string) { p.extraHeaders = headers }
func (p *MockProvider) SetOption(key string, value any)           { p.options[key] = value }

func (p *MockProvider) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	for k, v := range p.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (p *MockProvider) PrepareRequest(req *Request, options map[string]any) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shouldError {
		return nil, errors.New(p.errorMsg)
	}

	requestBody := map[string]any{
		"model":   p.model,
		"request": req,
	}
	for k, v := range options {
		requestBody[k] = v
	}
	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}
	p.requests = append(p.requests, body)
	return body, nil
}

// getNextResponse returns the next response from the queue
func (p *MockProvider) getNextResponse() (MockResponse, error) {
	if len(p.responses) == 0 {
		return MockResponse{Text: p.responseText}, nil // Fall back to default response
	}

	if p.currentIndex >= len(p.responses) {
		if p.loopResponses {
			p.currentIndex = 0 // Reset to start
		} else {
			return MockResponse{}, errors.New("mock responses exhausted")
		}
	}

	response := p.responses[p.currentIndex]
	p.currentIndex++
	return response, nil
}

func (p *MockProvider) ParseResponse(body []byte) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shouldError {
		return nil, errors.New(p.errorMsg)
	}
	next, err := p.getNextResponse()
	if err != nil {
		return nil, err
	}
	resp := &Response{Content: Text{Value: next.Text}}
	if next.Logprobs != nil {
		resp.Logprobs = []ChoiceLogprobs{{Index: 0, Content: next.Logprobs}}
	}
	return resp, nil
}

func (p *MockProvider) SetDefaultOptions(cfg *config.Config) {
	if cfg.Endpoint != "" {
		p.endpoint = cfg.Endpoint
	}
	p.SetOption("temperature", cfg.Temperature)
	p.SetOption("max_tokens", cfg.MaxTokens)
	if cfg.Seed != nil {
		p.SetOption("seed", *cfg.Seed)
	}
}
