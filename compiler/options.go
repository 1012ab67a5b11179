package compiler

import (
	"golang.org/x/time/rate"

	"github.com/teilomillet/tastelever/utils"
)

type options struct {
	batchSize       int
	worstK          int
	draftSampleSize int
	limiter         *rate.Limiter
	logger          utils.Logger
	runID           string
}

// Option configures a Compiler.
type Option func(*options)

// WithBatchSize bounds the number of classification calls in flight.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithWorstK sets how many of the worst training predictions become examples.
func WithWorstK(k int) Option {
	return func(o *options) {
		o.worstK = k
	}
}

func WithDraftSampleSize(n int) Option {
	return func(o *options) {
		o.draftSampleSize = n
	}
}

// WithRateLimiter paces the start of every classification call.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRunID fixes the id attached to the log lines of every Compile call.
// By default each call gets a fresh random id.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

func defaultOptions() options {
	return options{
		batchSize:       DefaultBatchSize,
		worstK:          DefaultWorstK,
		draftSampleSize: DefaultDraftSampleSize,
		logger:          utils.NewLogger(utils.LogLevelWarn),
	}
}
