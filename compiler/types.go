// Package compiler implements the prompt compiler: it drafts a prompt template
// for a classification task, runs it over a training set, turns the most
// confidently wrong predictions into annotated few-shot examples, and keeps
// the revised bundle only when it lowers the confidence-weighted loss on a
// held-out test set.
package compiler

import "slices"

// DataPoint is one labeled example.
type DataPoint[D, T any] struct {
	Data   D `json:"data"`
	Target T `json:"target"`
}

// PredictedDataPoint is the outcome of classifying a DataPoint once.
type PredictedDataPoint[D, T any] struct {
	DataPoint  DataPoint[D, T]
	Prediction T
	// Confidence is the probability of the predicted label token, in (0, 1].
	// It is exactly 1 when ConfidenceAvailable is false.
	Confidence          float64
	ConfidenceAvailable bool
}

// PromptTemplate holds the four ordered text segments of a compiled prompt.
type PromptTemplate struct {
	SystemPrompt                  string `json:"systemPrompt" jsonschema:"description=System message sent with every classification request"`
	PreExamplesPrompt             string `json:"preExamplesPrompt" jsonschema:"description=Task description shown before the few-shot examples"`
	PostExamplesPreTestCasePrompt string `json:"postExamplesPreTestCasePrompt" jsonschema:"description=Additional instructions shown between the examples and the test case"`
	FinalPrompt                   string `json:"finalPrompt" jsonschema:"description=Closing instructions shown after the test case"`
}

// FewshotExample is a labeled example embedded in the prompt, annotated with
// why it was instructive.
type FewshotExample[D, T any] struct {
	Data        D      `json:"data"`
	Target      T      `json:"target"`
	Explanation string `json:"explanation"`
}

// Bundle is a compiled prompt: the template plus its curated examples.
type Bundle[D, T any] struct {
	Prompt   PromptTemplate         `json:"prompt"`
	Examples []FewshotExample[D, T] `json:"examples"`
}

// Clone returns a copy of b whose example slice can be appended to without
// affecting b.
func (b *Bundle[D, T]) Clone() *Bundle[D, T] {
	if b == nil {
		return nil
	}
	return &Bundle[D, T]{
		Prompt:   b.Prompt,
		Examples: slices.Clone(b.Examples),
	}
}

// ScoreFunc maps a target to the scalar it is compared by.
type ScoreFunc[T any] func(T) float64
