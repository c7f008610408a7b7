package learn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{1})))
}

func TestRSquared(t *testing.T) {
	tests := []struct {
		name      string
		observed  []float64
		predicted []float64
		want      float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"mean predictor", []float64{1, 2, 3}, []float64{2, 2, 2}, 0},
		{"constant target predicted exactly", []float64{4, 4}, []float64{4, 4}, 1},
		{"constant target missed", []float64{4, 4}, []float64{3, 5}, 0},
		{"worse than the mean", []float64{1, 3}, []float64{3, 1}, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RSquared(tt.observed, tt.predicted), 1e-12)
		})
	}
}

func TestRMSE(t *testing.T) {
	assert.InDelta(t, 0.0, RMSE([]float64{1, 2}, []float64{1, 2}), 1e-12)
	assert.InDelta(t, math.Sqrt(12.5), RMSE([]float64{0, 0}, []float64{3, 4}), 1e-12)
	assert.True(t, math.IsNaN(RMSE(nil, nil)))
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.75, Accuracy([]float64{1, 0, 1, 1}, []float64{1, 0, 0, 1}))
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), std, 1e-12, "sample deviation")

	mean, std = MeanStd([]float64{3})
	assert.Equal(t, 3.0, mean)
	assert.True(t, math.IsNaN(std))
}

func TestResiduals(t *testing.T) {
	assert.Equal(t, []float64{1, -1}, Residuals([]float64{3, 2}, []float64{2, 3}))
}
