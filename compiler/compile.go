package compiler

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teilomillet/tastelever/metrics"
	"github.com/teilomillet/tastelever/utils"
)

// State is a stage of one Compile call.
type State int

const (
	StateDrafting State = iota
	StateTrainingPass
	StateRanking
	StateExplaining
	StateEvaluating
	StateDecided
)

func (s State) String() string {
	switch s {
	case StateDrafting:
		return "DRAFTING"
	case StateTrainingPass:
		return "TRAINING_PASS"
	case StateRanking:
		return "RANKING"
	case StateExplaining:
		return "EXPLAINING"
	case StateEvaluating:
		return "EVALUATING"
	case StateDecided:
		return "DECIDED"
	default:
		return "UNKNOWN"
	}
}

// Compiler runs improvement iterations over a prompt bundle.
type Compiler[D, T any] struct {
	schema    *Schema[D, T]
	score     ScoreFunc[T]
	executor  *Executor[D, T]
	explainer *Explainer[D, T]
	drafter   *Drafter[D, T]
	opts      options
	logger    utils.Logger
}

// New validates the configuration and returns a Compiler. A target type that
// is not a struct, or a missing score function or service, is a configuration
// error.
func New[D, T any](schema *Schema[D, T], score ScoreFunc[T], classifier ClassificationService, texts TextService, opts ...Option) (*Compiler[D, T], error) {
	if schema == nil {
		return nil, newError(KindConfiguration, "nil schema", nil)
	}
	if err := schema.CheckConcrete(); err != nil {
		return nil, err
	}
	if score == nil {
		return nil, newError(KindConfiguration, "nil score function", nil)
	}
	if classifier == nil || texts == nil {
		return nil, newError(KindConfiguration, "classification and text services are required", nil)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = utils.NewNopLogger()
	}

	return &Compiler[D, T]{
		schema:    schema,
		score:     score,
		executor:  NewExecutor(schema, score, classifier, o.logger),
		explainer: NewExplainer[D, T](texts, o.logger),
		drafter:   NewDrafter(schema, classifier, o.draftSampleSize, o.logger),
		opts:      o,
		logger:    o.logger,
	}, nil
}

// Compile runs one improvement iteration. Without an initial bundle a template
// is drafted from the first training points; otherwise the initial template is
// reused and only the example set grows. The candidate is returned only if its
// average test loss is strictly lower than the initial bundle's; otherwise the
// initial bundle is returned unchanged.
func (c *Compiler[D, T]) Compile(ctx context.Context, train, test []DataPoint[D, T], initial *Bundle[D, T]) (*Bundle[D, T], error) {
	runID := c.opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	started := time.Now()
	enter := func(s State, keysAndValues ...any) {
		c.logger.Info("Compile state", append([]any{"run_id", runID, "state", s.String()}, keysAndValues...)...)
	}

	enter(StateDrafting, "initial", initial != nil)
	var prompt PromptTemplate
	var priorExamples []FewshotExample[D, T]
	if initial != nil {
		prompt = initial.Prompt
		priorExamples = initial.Examples
	} else {
		n := min(c.opts.draftSampleSize, len(train))
		drafted, err := c.drafter.Draft(ctx, nil, train[:n])
		if err != nil {
			return nil, err
		}
		prompt = drafted
	}
	working := &Bundle[D, T]{Prompt: prompt, Examples: slices.Clone(priorExamples)}

	enter(StateTrainingPass, "points", len(train))
	trainPreds, err := c.run(ctx, working, train)
	if err != nil {
		return nil, err
	}

	enter(StateRanking, "k", c.opts.worstK)
	var selected []PredictedDataPoint[D, T]
	for _, p := range RankWorst(trainPreds, c.score, c.opts.worstK) {
		if Loss(p, c.score) > 0 {
			selected = append(selected, p)
		}
	}

	enter(StateExplaining, "selected", len(selected))
	newExamples, err := c.explainAll(ctx, working, selected)
	if err != nil {
		return nil, err
	}
	examples := make([]FewshotExample[D, T], 0, len(priorExamples)+len(newExamples))
	examples = append(append(examples, priorExamples...), newExamples...)
	candidate := &Bundle[D, T]{Prompt: prompt, Examples: examples}

	enter(StateEvaluating, "points", len(test))
	before := math.Inf(1)
	if initial != nil {
		before, err = c.Evaluate(ctx, initial, test)
		if err != nil {
			return nil, err
		}
	}
	after, err := c.Evaluate(ctx, candidate, test)
	if err != nil {
		return nil, err
	}
	metrics.TestLoss.WithLabelValues(metrics.BundlePrior).Set(before)
	metrics.TestLoss.WithLabelValues(metrics.BundleCandidate).Set(after)

	accepted := after < before
	outcome := metrics.OutcomeRejected
	if accepted {
		outcome = metrics.OutcomeAccepted
	}
	metrics.Decisions.WithLabelValues(outcome).Inc()
	enter(StateDecided, "outcome", outcome, "before", before, "after", after, "examples", len(candidate.Examples), "duration", time.Since(started))

	if accepted {
		return candidate, nil
	}
	return initial, nil
}

// CompileRounds calls Compile rounds times, seeding each call with the
// previous result.
func (c *Compiler[D, T]) CompileRounds(ctx context.Context, train, test []DataPoint[D, T], initial *Bundle[D, T], rounds int) (*Bundle[D, T], error) {
	if rounds < 1 {
		return nil, newError(KindConfiguration, "rounds must be at least 1", nil)
	}
	bundle := initial
	for round := 1; round <= rounds; round++ {
		c.logger.Info("Starting compile round", "round", round, "of", rounds)
		next, err := c.Compile(ctx, train, test, bundle)
		if err != nil {
			return nil, err
		}
		bundle = next
	}
	return bundle, nil
}

// Evaluate classifies points with bundle and returns their average loss.
func (c *Compiler[D, T]) Evaluate(ctx context.Context, bundle *Bundle[D, T], points []DataPoint[D, T]) (float64, error) {
	preds, err := c.run(ctx, bundle, points)
	if err != nil {
		return 0, err
	}
	return AverageLoss(preds, c.score), nil
}

func (c *Compiler[D, T]) run(ctx context.Context, bundle *Bundle[D, T], points []DataPoint[D, T]) ([]PredictedDataPoint[D, T], error) {
	return RunBatchedLimited(ctx, points, c.opts.batchSize, c.opts.limiter,
		func(ctx context.Context, p DataPoint[D, T]) (PredictedDataPoint[D, T], error) {
			return c.executor.Execute(ctx, bundle, p)
		})
}

// explainAll annotates every selection concurrently. The few selections of
// one iteration are not batched.
func (c *Compiler[D, T]) explainAll(ctx context.Context, bundle *Bundle[D, T], selected []PredictedDataPoint[D, T]) ([]FewshotExample[D, T], error) {
	examples := make([]FewshotExample[D, T], len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range selected {
		g.Go(func() error {
			if c.opts.limiter != nil {
				if err := c.opts.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			explanation, err := c.explainer.Explain(gctx, bundle, p.DataPoint)
			if err != nil {
				return err
			}
			examples[i] = FewshotExample[D, T]{
				Data:        p.DataPoint.Data,
				Target:      p.DataPoint.Target,
				Explanation: explanation,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return examples, nil
}
