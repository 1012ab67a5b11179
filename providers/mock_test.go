package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/tastelever/config"
)

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider("http://mock.api", "mock-model", nil)
	mockProvider := provider.(*MockProvider)

	assert.Equal(t, "mock", provider.Name())
	assert.Equal(t, "http://mock.api", provider.Endpoint())
	assert.True(t, provider.SupportsStructuredResponse())
	assert.True(t, provider.SupportsLogprobs())

	mockProvider.SetMockResponse("custom mock response")
	response, err := provider.ParseResponse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "custom mock response", response.AsText())
	assert.Nil(t, response.Logprobs)

	mockProvider.SetMockError(true, "mock error")
	_, err = provider.ParseResponse([]byte("{}"))
	require.Error(t, err)
	assert.Equal(t, "mock error", err.Error())

	mockProvider.SetMockError(false, "")
	reqBody, err := provider.PrepareRequest(&Request{
		Messages: []Message{{Role: "user", Content: "test prompt"}},
	}, map[string]any{"temperature": 0.7})
	require.NoError(t, err)
	assert.Contains(t, string(reqBody), "test prompt")
	assert.Contains(t, string(reqBody), "temperature")
	assert.Len(t, mockProvider.Requests(), 1)

	cfg := &config.Config{Temperature: 0.8, MaxTokens: 100}
	provider.SetDefaultOptions(cfg)
	assert.Equal(t, 0.8, mockProvider.options["temperature"])
	assert.Equal(t, 100, mockProvider.options["max_tokens"])
}

func TestMockProviderResponses(t *testing.T) {
	testCases := []struct {
		name      string
		responses []MockResponse
		loop      bool
		calls     int
		expected  []string
		errorAt   int // -1 for no error expected
	}{
		{
			name:      "Single response",
			responses: []MockResponse{{Text: "one"}},
			loop:      true,
			calls:     3,
			expected:  []string{"one", "one", "one"},
			errorAt:   -1,
		},
		{
			name:      "Multiple responses no loop",
			responses: []MockResponse{{Text: "first"}, {Text: "second"}},
			loop:      false,
			calls:     3,
			expected:  []string{"first", "second"},
			errorAt:   2,
		},
		{
			name:      "Empty response list",
			responses: nil,
			loop:      false,
			calls:     2,
			expected:  []string{"This is a mock response", "This is a mock response"},
			errorAt:   -1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider := NewMockProvider("http://mock.api", "mock-model", nil)
			provider.(*MockProvider).SetResponses(tc.responses, tc.loop)

			for i := 0; i < tc.calls; i++ {
				response, err := provider.ParseResponse([]byte("{}"))

				if tc.errorAt == i {
					require.Error(t, err)
					assert.Contains(t, err.Error(), "exhausted")
					return
				}

				require.NoError(t, err)
				assert.Equal(t, tc.expected[i], response.AsText())
			}
		})
	}
}

func TestMockProviderLogprobs(t *testing.T) {
	provider := NewMockProvider("http://mock.api", "mock-model", nil)
	provider.(*MockProvider).SetResponses([]MockResponse{
		{Text: `{"label":2}`, Logprobs: []TokenLogprob{{Token: "2", Logprob: -0.1}}},
	}, false)

	resp, err := provider.ParseResponse(nil)
	require.NoError(t, err)
	require.Len(t, resp.Logprobs, 1)
	assert.Equal(t, "2", resp.Logprobs[0].Content[0].Token)
}

func TestMockProviderDefaultOptionsEndpoint(t *testing.T) {
	p := NewMockProvider("http://mock.local/v1/chat/completions", "m", nil)

	p.SetDefaultOptions(config.NewConfig())
	assert.Equal(t, "http://mock.local/v1/chat/completions", p.Endpoint())

	cfg := config.NewConfig()
	config.ApplyOptions(cfg, config.SetEndpoint("http://127.0.0.1:9000/v1/chat/completions"))
	p.SetDefaultOptions(cfg)
	assert.Equal(t, "http://127.0.0.1:9000/v1/chat/completions", p.Endpoint())
}
