package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/teilomillet/tastelever/config"
	"github.com/teilomillet/tastelever/metrics"
	"github.com/teilomillet/tastelever/providers"
	"github.com/teilomillet/tastelever/utils"
)

// Client sends generation requests to a provider over HTTP. It serves both the
// structured classification calls and the free-text explanation calls.
type Client struct {
	Provider   providers.Provider
	client     *http.Client
	logger     utils.Logger
	limiter    *rate.Limiter
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient builds a client for cfg.Provider out of registry. A nil registry
// means the default one.
func NewClient(cfg *config.Config, logger utils.Logger, registry *providers.ProviderRegistry) (*Client, error) {
	if registry == nil {
		registry = providers.GetDefaultRegistry()
	}
	provider, err := registry.Get(cfg.Provider, cfg.APIKey(), cfg.Model, cfg.ExtraHeaders)
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to create provider", err)
	}
	return NewClientWithProvider(provider, cfg, logger), nil
}

// NewClientWithProvider builds a client around an already constructed provider.
func NewClientWithProvider(provider providers.Provider, cfg *config.Config, logger utils.Logger) *Client {
	provider.SetLogger(logger)
	provider.SetDefaultOptions(cfg)

	c := &Client{
		Provider:   provider,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

// GenerateText implements the free-text generation service.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Generate(ctx, &providers.Request{
		Messages: []providers.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.AsText(), nil
}

// Generate sends req, retrying retryable failures up to MaxRetries times with
// exponential backoff starting at RetryDelay.
func (c *Client) Generate(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	strategy := NewBackoffRetryStrategy(c.MaxRetries, c.RetryDelay)
	for attempt := 1; ; attempt++ {
		c.logger.Debug("Generating", "provider", c.Provider.Name(), "attempt", attempt)

		resp, err := c.attemptGenerate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !strategy.ShouldRetry(err) {
			if attempt > 1 {
				return nil, fmt.Errorf("failed to generate after %d attempts: %w", attempt, err)
			}
			return nil, err
		}

		delay := strategy.NextDelay()
		c.logger.Warn("Generation attempt failed", "error", err, "attempt", attempt, "retry_in", delay)
		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) attemptGenerate(ctx context.Context, preq *providers.Request) (resp *providers.Response, err error) {
	name := c.Provider.Name()
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.LLMRequestsTotal.WithLabelValues(name, status).Inc()
		metrics.LLMRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, NewLLMError(ErrorTypeRateLimit, "rate limiter error", err)
		}
	}

	reqBody, err := c.Provider.PrepareRequest(preq, nil)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to prepare request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewLLMError(ErrorTypeInvalidInput, "failed to create request", err)
	}
	for k, v := range c.Provider.Headers() {
		req.Header.Set(k, v)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to read response body", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Error("API error", "provider", name, "status", httpResp.StatusCode)
		return nil, newStatusError(httpResp.StatusCode, string(body))
	}

	resp, err = c.Provider.ParseResponse(body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}
	if resp.Usage != nil {
		c.logger.Debug("Generation complete", "provider", name, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	}
	return resp, nil
}
