package learn

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestConfig configures a random forest. Zero values pick defaults.
type ForestConfig struct {
	// Trees is the number of bootstrapped trees, default 100
	Trees int
	// Seed drives bootstrapping and feature sampling
	Seed uint64
	// MaxFeatures is the number of features tried per split. The default is
	// sqrt(features) for classification and all features for regression.
	MaxFeatures int
	// MaxDepth limits tree depth, 0 grows until leaves are pure
	MaxDepth int
	// MinSamplesSplit is the smallest node that may split, default 2
	MinSamplesSplit int
}

// Forest is a fitted bagged ensemble of CART trees. It is safe for
// concurrent Predict calls.
type Forest struct {
	task     Task
	features int
	classes  []float64
	trees    []*tree
}

// FitClassifier fits a classification forest. Labels may be any float
// values; they are predicted back unchanged.
func FitClassifier(ctx context.Context, X [][]float64, y []float64, cfg ForestConfig) (*Forest, error) {
	if err := checkShape(X, y); err != nil {
		return nil, err
	}

	classes := uniqueSorted(y)
	index := make(map[float64]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	encoded := make([]float64, len(y))
	for i, v := range y {
		encoded[i] = float64(index[v])
	}

	f := &Forest{task: Classification, features: len(X[0]), classes: classes}
	p := f.params(cfg)
	p.classes = len(classes)

	trees, err := fitTrees(ctx, X, encoded, p, cfg)
	if err != nil {
		return nil, err
	}
	f.trees = trees
	return f, nil
}

// FitRegressor fits a regression forest
func FitRegressor(ctx context.Context, X [][]float64, y []float64, cfg ForestConfig) (*Forest, error) {
	if err := checkShape(X, y); err != nil {
		return nil, err
	}

	f := &Forest{task: Regression, features: len(X[0])}
	trees, err := fitTrees(ctx, X, y, f.params(cfg), cfg)
	if err != nil {
		return nil, err
	}
	f.trees = trees
	return f, nil
}

func (f *Forest) params(cfg ForestConfig) treeParams {
	p := treeParams{
		task:        f.task,
		maxFeatures: cfg.MaxFeatures,
		maxDepth:    cfg.MaxDepth,
		minSplit:    cfg.MinSamplesSplit,
	}
	if p.maxFeatures <= 0 || p.maxFeatures > f.features {
		p.maxFeatures = f.features
		if f.task == Classification {
			p.maxFeatures = max(1, int(math.Sqrt(float64(f.features))))
		}
	}
	if p.minSplit < 2 {
		p.minSplit = 2
	}
	return p
}

// fitTrees grows the trees in parallel. Tree i draws from its own stream of
// the seed, so the result does not depend on scheduling.
func fitTrees(ctx context.Context, X [][]float64, y []float64, p treeParams, cfg ForestConfig) ([]*tree, error) {
	n := cfg.Trees
	if n <= 0 {
		n = 100
	}
	trees := make([]*tree, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := newRand(cfg.Seed, uint64(i)+1)
			sample := make([]int, len(X))
			for j := range sample {
				sample[j] = rng.IntN(len(X))
			}
			trees[i] = growTree(X, y, sample, p, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

// Task reports whether the forest classifies or regresses
func (f *Forest) Task() Task {
	return f.task
}

// Classes returns the sorted class labels of a classifier
func (f *Forest) Classes() []float64 {
	return append([]float64(nil), f.classes...)
}

// Predict returns the class label with the highest mean share, or the mean
// of the tree outputs for regression
func (f *Forest) Predict(x []float64) float64 {
	if f.task == Regression {
		var sum float64
		for _, t := range f.trees {
			sum += t.leafFor(x).value
		}
		return sum / float64(len(f.trees))
	}

	proba := f.Proba(x)
	best := 0
	for c := range proba {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.classes[best]
}

// Proba returns the mean class shares of a classifier, ordered like Classes
func (f *Forest) Proba(x []float64) []float64 {
	proba := make([]float64, len(f.classes))
	for _, t := range f.trees {
		for c, share := range t.leafFor(x).dist {
			proba[c] += share
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.trees))
	}
	return proba
}

// PredictAll predicts every row of X
func (f *Forest) PredictAll(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = f.Predict(x)
	}
	return out
}

func checkShape(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrInsufficientData
	}
	if len(X) != len(y) {
		return fmt.Errorf("learn: %d rows for %d targets", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return fmt.Errorf("learn: rows have no features")
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("learn: row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}

func uniqueSorted(vals []float64) []float64 {
	seen := make(map[float64]struct{}, 8)
	out := make([]float64, 0, 8)
	for _, v := range vals {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
