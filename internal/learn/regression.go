package learn

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientData is returned when there are too few samples to fit
	ErrInsufficientData = errors.New("learn: insufficient data")
	// ErrDegenerate is returned when the feature has no variance
	ErrDegenerate = errors.New("learn: degenerate input")
)

// LinearModel is a fitted line y = Intercept + Slope*x
type LinearModel struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// FitLinear fits y on x by ordinary least squares
func FitLinear(x, y []float64) (LinearModel, error) {
	if len(x) != len(y) {
		return LinearModel{}, fmt.Errorf("learn: %d features for %d targets", len(x), len(y))
	}
	if len(x) < 2 {
		return LinearModel{}, ErrInsufficientData
	}
	if stat.Variance(x, nil) == 0 {
		return LinearModel{}, ErrDegenerate
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return LinearModel{Intercept: alpha, Slope: beta}, nil
}

// Predict evaluates the line at x
func (m LinearModel) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// PredictAll evaluates the line at every x
func (m LinearModel) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}
