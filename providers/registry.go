package providers

import (
	"fmt"
	"sync"
)

// ProviderRegistry manages the registration and retrieval of LLM providers.
// It provides thread-safe access to provider constructors and supports
// dynamic provider registration.
type ProviderRegistry struct {
	providers map[string]ProviderConstructor
	configs   map[string]ProviderConfig
	mutex     sync.RWMutex
}

// NewProviderRegistry creates a new provider registry with the specified providers.
// If no providers are specified, all known providers are registered by default.
func NewProviderRegistry(providerNames ...string) *ProviderRegistry {
	registry := &ProviderRegistry{
		providers: make(map[string]ProviderConstructor),
		configs:   make(map[string]ProviderConfig),
	}

	for name, cfg := range getStandardConfigs() {
		registry.configs[name] = cfg
	}

	known := make(map[string]ProviderConstructor)
	for name, cfg := range registry.configs {
		known[name] = compatibleConstructor(cfg)
	}
	known["mock"] = func(apiKey, model string, extraHeaders map[string]string) Provider {
		return NewMockProvider("http://mock.local/v1/chat/completions", model, extraHeaders)
	}

	if len(providerNames) == 0 {
		registry.providers = known
		return registry
	}
	for _, name := range providerNames {
		if constructor, ok := known[name]; ok {
			registry.providers[name] = constructor
		}
	}
	return registry
}

func compatibleConstructor(cfg ProviderConfig) ProviderConstructor {
	return func(apiKey, model string, extraHeaders map[string]string) Provider {
		return NewOpenAICompatibleProvider(cfg, apiKey, model, extraHeaders)
	}
}

func standardConfig(name string) (ProviderConfig, bool) {
	cfg, ok := getStandardConfigs()[name]
	return cfg, ok
}

// getStandardConfigs returns the chat-completions compatible services known out of the box.
func getStandardConfigs() map[string]ProviderConfig {
	jsonHeaders := func() map[string]string {
		return map[string]string{"Content-Type": "application/json"}
	}
	return map[string]ProviderConfig{
		"openai": {
			Name:                       "openai",
			Endpoint:                   "https://api.openai.com/v1/chat/completions",
			AuthHeader:                 "Authorization",
			AuthPrefix:                 "Bearer ",
			RequiredHeaders:            jsonHeaders(),
			SupportsStructuredResponse: true,
			SupportsLogprobs:           true,
		},
		"openrouter": {
			Name:                       "openrouter",
			Endpoint:                   "https://openrouter.ai/api/v1/chat/completions",
			AuthHeader:                 "Authorization",
			AuthPrefix:                 "Bearer ",
			RequiredHeaders:            jsonHeaders(),
			SupportsStructuredResponse: true,
			SupportsLogprobs:           true,
		},
		"groq": {
			Name:                       "groq",
			Endpoint:                   "https://api.groq.com/openai/v1/chat/completions",
			AuthHeader:                 "Authorization",
			AuthPrefix:                 "Bearer ",
			RequiredHeaders:            jsonHeaders(),
			SupportsStructuredResponse: true,
			SupportsLogprobs:           false,
		},
		"deepseek": {
			Name:                       "deepseek",
			Endpoint:                   "https://api.deepseek.com/chat/completions",
			AuthHeader:                 "Authorization",
			AuthPrefix:                 "Bearer ",
			RequiredHeaders:            jsonHeaders(),
			SupportsStructuredResponse: false,
			SupportsLogprobs:           true,
		},
		"vllm": {
			Name:                       "vllm",
			Endpoint:                   "http://localhost:8000/v1/chat/completions",
			AuthHeader:                 "Authorization",
			AuthPrefix:                 "Bearer ",
			RequiredHeaders:            jsonHeaders(),
			SupportsStructuredResponse: true,
			SupportsLogprobs:           true,
		},
		"ollama": {
			Name:                       "ollama",
			Endpoint:                   "http://localhost:11434/v1/chat/completions",
			RequiredHeaders:            jsonHeaders(),
			SupportsStructuredResponse: false,
			SupportsLogprobs:           false,
		},
	}
}

// GetProviderConfig returns the configuration for a named provider
func (r *ProviderRegistry) GetProviderConfig(name string) (ProviderConfig, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	cfg, exists := r.configs[name]
	return cfg, exists
}

// RegisterProviderConfig registers a chat-completions compatible service under name.
func (r *ProviderRegistry) RegisterProviderConfig(name string, cfg ProviderConfig) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.configs[name] = cfg
	r.providers[name] = compatibleConstructor(cfg)
}

// Register adds a new provider constructor to the registry.
func (r *ProviderRegistry) Register(name string, constructor ProviderConstructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.providers[name] = constructor
}

// Get retrieves a provider instance by name.
func (r *ProviderRegistry) Get(name, apiKey, model string, extraHeaders map[string]string) (Provider, error) {
	r.mutex.RLock()
	constructor, exists := r.providers[name]
	r.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return constructor(apiKey, model, extraHeaders), nil
}

var (
	defaultRegistry     *ProviderRegistry
	defaultRegistryOnce sync.Once
)

// GetDefaultRegistry returns the process-wide registry holding every known provider.
func GetDefaultRegistry() *ProviderRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewProviderRegistry()
	})
	return defaultRegistry
}
