package compiler

import (
	"context"
	"math"
	"strconv"

	"github.com/teilomillet/tastelever/llm"
	"github.com/teilomillet/tastelever/metrics"
	"github.com/teilomillet/tastelever/utils"
)

// Executor classifies single data points with a bundle.
type Executor[D, T any] struct {
	schema  *Schema[D, T]
	score   ScoreFunc[T]
	service ClassificationService
	logger  utils.Logger
}

func NewExecutor[D, T any](schema *Schema[D, T], score ScoreFunc[T], service ClassificationService, logger utils.Logger) *Executor[D, T] {
	return &Executor[D, T]{schema: schema, score: score, service: service, logger: logger}
}

// Execute renders the bundle for point.Data, asks the service for a target
// object and derives the confidence of the predicted label from the token
// log-probabilities. Missing log-probabilities never fail the call.
func (e *Executor[D, T]) Execute(ctx context.Context, bundle *Bundle[D, T], point DataPoint[D, T]) (PredictedDataPoint[D, T], error) {
	var out PredictedDataPoint[D, T]

	rendered, err := Render(bundle.Prompt, bundle.Examples, point.Data)
	if err != nil {
		return out, newError(KindValidation, "failed to render prompt", err)
	}

	resp, err := e.service.GenerateStructured(ctx, &llm.StructuredRequest{
		System:     rendered.System,
		User:       rendered.User,
		SchemaName: targetSchemaName,
		Schema:     e.schema.TargetSchema(),
		Logprobs:   true,
	})
	if err != nil {
		return out, newError(KindExternalService, "classification request failed", err)
	}
	metrics.Classifications.Inc()

	prediction, err := e.schema.ParseTarget(resp.Object)
	if err != nil {
		return out, err
	}

	label := FormatScore(e.score(prediction))
	confidence, ok := extractConfidence(resp.Envelope, label)
	if !ok {
		e.logger.Debug("Confidence unavailable, using 1", "label", label)
		metrics.ConfidenceFallbacks.Inc()
	}

	return PredictedDataPoint[D, T]{
		DataPoint:           point,
		Prediction:          prediction,
		Confidence:          confidence,
		ConfidenceAvailable: ok,
	}, nil
}

// extractConfidence returns exp(logprob) of the first token of the first
// choice whose text equals label. It returns (1, false) when there is none.
func extractConfidence(env *llm.Envelope, label string) (float64, bool) {
	if env == nil || len(env.Choices) == 0 {
		return 1, false
	}
	for _, lp := range env.Choices[0].Logprobs {
		if lp.Token != label {
			continue
		}
		p := math.Exp(lp.Logprob)
		if math.IsNaN(p) || p <= 0 || p > 1 {
			return 1, false
		}
		return p, true
	}
	return 1, false
}

// FormatScore renders a score the way it appears as a generated token: the
// shortest decimal form, so 3 becomes "3" and 2.5 stays "2.5".
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
