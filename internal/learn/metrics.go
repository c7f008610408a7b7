package learn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Pearson returns the correlation coefficient of x and y. Constant input
// yields NaN.
func Pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// RSquared returns the coefficient of determination of predictions against
// observed values. A constant target scores 1 when predicted exactly and 0
// otherwise.
func RSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 || len(observed) != len(predicted) {
		return math.NaN()
	}
	mean := stat.Mean(observed, nil)
	var ssRes, ssTot float64
	for i, y := range observed {
		d := y - predicted[i]
		ssRes += d * d
		m := y - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// RMSE returns the root mean squared error
func RMSE(observed, predicted []float64) float64 {
	if len(observed) == 0 || len(observed) != len(predicted) {
		return math.NaN()
	}
	return floats.Distance(observed, predicted, 2) / math.Sqrt(float64(len(observed)))
}

// Accuracy returns the share of exact label matches
func Accuracy(observed, predicted []float64) float64 {
	if len(observed) == 0 || len(observed) != len(predicted) {
		return math.NaN()
	}
	hits := 0
	for i := range observed {
		if observed[i] == predicted[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(observed))
}

// MeanStd returns the mean and the sample standard deviation. The deviation
// of fewer than two values is NaN.
func MeanStd(vals []float64) (mean, std float64) {
	switch len(vals) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return vals[0], math.NaN()
	}
	return stat.MeanStdDev(vals, nil)
}

// Residuals returns observed minus predicted
func Residuals(observed, predicted []float64) []float64 {
	out := make([]float64, len(observed))
	floats.SubTo(out, observed, predicted)
	return out
}
