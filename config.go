// Package tastelever compiles classification prompts. It wires the
// environment-driven configuration, the generation client and the prompt
// compiler behind a small API. This file re-exports the configuration types
// and options from the config package.
package tastelever

import (
	"github.com/teilomillet/tastelever/config"
	"github.com/teilomillet/tastelever/utils"
)

type (
	// Config holds provider, generation and compiler settings. See
	// config.Config for the environment variables behind each field.
	//
	// Example usage:
	//   cfg := NewConfig()
	//   ApplyOptions(cfg, SetProvider("openai"), SetModel("gpt-4.1"))
	Config = config.Config

	ConfigOption = config.ConfigOption

	LogLevel = utils.LogLevel
)

var (
	// LoadConfig reads the configuration from the environment, including
	// every *_API_KEY variable.
	LoadConfig   = config.LoadConfig
	ApplyOptions = config.ApplyOptions
	NewConfig    = config.NewConfig
)

var (
	// Provider configuration
	SetProvider     = config.SetProvider     // Sets the provider (e.g., "openai", "vllm")
	SetModel        = config.SetModel        // Sets the model name for the selected provider
	SetEndpoint     = config.SetEndpoint     // Overrides the chat completions URL
	SetAPIKey       = config.SetAPIKey       // Sets the API key for the current provider
	SetExtraHeaders = config.SetExtraHeaders // Sets additional HTTP headers

	// Generation parameters
	SetTemperature = config.SetTemperature
	SetMaxTokens   = config.SetMaxTokens
	SetSeed        = config.SetSeed

	// Runtime configuration
	SetTimeout    = config.SetTimeout
	SetMaxRetries = config.SetMaxRetries // 0 keeps every call single-shot
	SetRetryDelay = config.SetRetryDelay
	SetRateLimit  = config.SetRateLimit // Requests per second, 0 for no pacing
	SetLogLevel   = config.SetLogLevel
	SetLogger     = config.SetLogger

	// Compiler settings
	SetBatchSize       = config.SetBatchSize
	SetWorstK          = config.SetWorstK
	SetDraftSampleSize = config.SetDraftSampleSize
)

const (
	LogLevelOff   = utils.LogLevelOff
	LogLevelError = utils.LogLevelError
	LogLevelWarn  = utils.LogLevelWarn
	LogLevelInfo  = utils.LogLevelInfo
	LogLevelDebug = utils.LogLevelDebug
)
