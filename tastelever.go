package tastelever

import (
	"context"
	"fmt"

	"github.com/teilomillet/tastelever/compiler"
	"github.com/teilomillet/tastelever/config"
	"github.com/teilomillet/tastelever/llm"
	"github.com/teilomillet/tastelever/providers"
	"github.com/teilomillet/tastelever/utils"
)

// Client is a configured generation client ready to drive the compiler.
type Client struct {
	cfg    *config.Config
	llm    *llm.Client
	logger utils.Logger
}

// NewClient loads the configuration from the environment, applies opts and
// connects to the configured provider.
func NewClient(opts ...ConfigOption) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	ApplyOptions(cfg, opts...)
	return NewClientFromConfig(cfg, nil)
}

// NewClientFromConfig connects to cfg.Provider looked up in registry, or in the
// default registry when registry is nil.
func NewClientFromConfig(cfg *config.Config, registry *providers.ProviderRegistry) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.GetLogger()

	client, err := llm.NewClient(cfg, logger, registry)
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{cfg: cfg, llm: client, logger: logger}, nil
}

func (c *Client) Config() *config.Config {
	return c.cfg
}

// LLM returns the underlying generation client.
func (c *Client) LLM() *llm.Client {
	return c.llm
}

func (c *Client) Logger() utils.Logger {
	return c.logger
}

// NewCompiler builds a compiler for D and T using c for both classification
// and explanations. Batch size, worst-k and draft sample size come from the
// client's configuration; opts are applied after them.
func NewCompiler[D, T any](c *Client, score compiler.ScoreFunc[T], opts ...compiler.Option) (*compiler.Compiler[D, T], error) {
	base := []compiler.Option{
		compiler.WithBatchSize(c.cfg.BatchSize),
		compiler.WithWorstK(c.cfg.WorstK),
		compiler.WithDraftSampleSize(c.cfg.DraftSampleSize),
		compiler.WithLogger(c.logger),
	}
	return compiler.New(compiler.NewSchema[D, T](), score, c.llm, c.llm, append(base, opts...)...)
}

// Compile runs rounds improvement iterations starting from initial, which may
// be nil. Each round is seeded with the previous round's result.
func Compile[D, T any](ctx context.Context, c *Client, train, test []compiler.DataPoint[D, T], score compiler.ScoreFunc[T], initial *compiler.Bundle[D, T], rounds int) (*compiler.Bundle[D, T], error) {
	comp, err := NewCompiler[D, T](c, score)
	if err != nil {
		return nil, err
	}
	return comp.CompileRounds(ctx, train, test, initial, rounds)
}
