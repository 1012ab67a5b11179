// Package config holds the runtime configuration for the classification
// service client and the prompt compiler.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/teilomillet/tastelever/utils"
)

// Defaults used when neither the environment nor an option sets a value.
const (
	DefaultProvider        = "openai"
	DefaultModel           = "gpt-4.1"
	DefaultBatchSize       = 20
	DefaultWorstK          = 5
	DefaultDraftSampleSize = 10
)

type Config struct {
	Provider    string        `env:"LLM_PROVIDER" envDefault:"openai" validate:"required"`
	Model       string        `env:"LLM_MODEL" envDefault:"gpt-4.1" validate:"required"`
	Endpoint    string        `env:"LLM_ENDPOINT" validate:"omitempty,url"`
	Temperature float64       `env:"LLM_TEMPERATURE" envDefault:"0" validate:"min=0,max=2"`
	MaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"1024" validate:"min=1"`
	Seed        *int          `env:"LLM_SEED"`
	Timeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"60s" validate:"min=0"`
	MaxRetries  int           `env:"LLM_MAX_RETRIES" envDefault:"0" validate:"min=0"`
	RetryDelay  time.Duration `env:"LLM_RETRY_DELAY" envDefault:"2s" validate:"min=0"`
	// RateLimit is requests per second against the provider; 0 disables pacing.
	RateLimit float64        `env:"LLM_RATE_LIMIT" envDefault:"0" validate:"min=0"`
	LogLevel  utils.LogLevel `env:"LLM_LOG_LEVEL" envDefault:"WARN"`

	BatchSize       int `env:"COMPILE_BATCH_SIZE" envDefault:"20" validate:"min=1"`
	WorstK          int `env:"COMPILE_WORST_K" envDefault:"5" validate:"min=1"`
	DraftSampleSize int `env:"COMPILE_DRAFT_SAMPLE" envDefault:"10" validate:"min=1"`

	APIKeys      map[string]string
	ExtraHeaders map[string]string
	Logger       utils.Logger
}

var validate = validator.New()

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		APIKeys:      make(map[string]string),
		ExtraHeaders: make(map[string]string),
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	loadAPIKeys(cfg)
	return cfg, nil
}

func loadAPIKeys(cfg *Config) {
	for _, envVar := range os.Environ() {
		key, value, found := strings.Cut(envVar, "=")
		if found && strings.HasSuffix(strings.ToUpper(key), "_API_KEY") {
			provider := strings.TrimSuffix(strings.ToUpper(key), "_API_KEY")
			cfg.APIKeys[strings.ToLower(provider)] = value
		}
	}
}

// Validate checks the numeric bounds and required fields of the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// APIKey returns the key registered for the configured provider.
func (c *Config) APIKey() string {
	return c.APIKeys[strings.ToLower(c.Provider)]
}

type ConfigOption func(*Config)

// NewConfig returns a configuration populated with the package defaults.
func NewConfig() *Config {
	return &Config{
		Provider:        DefaultProvider,
		Model:           DefaultModel,
		MaxTokens:       1024,
		Timeout:         60 * time.Second,
		RetryDelay:      2 * time.Second,
		LogLevel:        utils.LogLevelWarn,
		BatchSize:       DefaultBatchSize,
		WorstK:          DefaultWorstK,
		DraftSampleSize: DefaultDraftSampleSize,
		APIKeys:         make(map[string]string),
		ExtraHeaders:    make(map[string]string),
	}
}

func SetProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = maxTokens
	}
}

func SetSeed(seed int) ConfigOption {
	return func(c *Config) {
		c.Seed = &seed
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func SetAPIKey(apiKey string) ConfigOption {
	return func(c *Config) {
		if c.APIKeys == nil {
			c.APIKeys = make(map[string]string)
		}
		c.APIKeys[strings.ToLower(c.Provider)] = apiKey
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

func SetRateLimit(perSecond float64) ConfigOption {
	return func(c *Config) {
		c.RateLimit = perSecond
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// SetLogger replaces the default slog-backed logger.
func SetLogger(logger utils.Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

func SetExtraHeaders(headers map[string]string) ConfigOption {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		for k, v := range headers {
			c.ExtraHeaders[k] = v
		}
	}
}

func SetBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

func SetWorstK(k int) ConfigOption {
	return func(c *Config) {
		c.WorstK = k
	}
}

func SetDraftSampleSize(n int) ConfigOption {
	return func(c *Config) {
		c.DraftSampleSize = n
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}

// GetLogger returns the configured logger, creating a default one at LogLevel if unset.
func (c *Config) GetLogger() utils.Logger {
	if c.Logger == nil {
		c.Logger = utils.NewLogger(c.LogLevel)
	}
	return c.Logger
}
