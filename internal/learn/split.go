package learn

import (
	"math"
	"math/rand/v2"
)

// Split holds row indices of a train/test partition
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles n row indices with the seed and holds out
// ceil(fraction*n) of them for testing. At least one row always stays in
// the training set.
func TrainTestSplit(n int, fraction float64, seed uint64) Split {
	if n <= 0 {
		return Split{}
	}
	perm := newRand(seed, 0).Perm(n)

	nTest := int(math.Ceil(fraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return Split{Train: perm[nTest:], Test: perm[:nTest]}
}

// Rows selects rows of X by index
func Rows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

// Take selects values by index
func Take(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
