package compiler

import (
	"cmp"
	"math"
	"slices"
)

// Loss is the confidence-weighted absolute error of a prediction.
func Loss[D, T any](p PredictedDataPoint[D, T], score ScoreFunc[T]) float64 {
	return p.Confidence * math.Abs(score(p.DataPoint.Target)-score(p.Prediction))
}

// RankWorst returns the min(k, len(preds)) predictions with the largest loss,
// largest first. Equal losses keep their input order. A k below 1 means
// DefaultWorstK.
func RankWorst[D, T any](preds []PredictedDataPoint[D, T], score ScoreFunc[T], k int) []PredictedDataPoint[D, T] {
	if k < 1 {
		k = DefaultWorstK
	}

	type ranked struct {
		pred PredictedDataPoint[D, T]
		loss float64
	}
	items := make([]ranked, len(preds))
	for i, p := range preds {
		items[i] = ranked{pred: p, loss: Loss(p, score)}
	}
	slices.SortStableFunc(items, func(a, b ranked) int {
		return cmp.Compare(b.loss, a.loss)
	})

	n := min(k, len(items))
	out := make([]PredictedDataPoint[D, T], n)
	for i := range n {
		out[i] = items[i].pred
	}
	return out
}

// AverageLoss is the mean Loss over preds, 0 when preds is empty.
func AverageLoss[D, T any](preds []PredictedDataPoint[D, T], score ScoreFunc[T]) float64 {
	if len(preds) == 0 {
		return 0
	}
	var sum float64
	for _, p := range preds {
		sum += Loss(p, score)
	}
	return sum / float64(len(preds))
}
