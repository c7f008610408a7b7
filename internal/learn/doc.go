// Package learn holds the small statistical models behind the analytics
// actions: ordinary least squares on one feature, goodness-of-fit metrics,
// a seeded train/test split and a bagged CART random forest for
// classification and regression.
//
// Fit functions follow a scikit-learn-like shape: build from a feature
// matrix and targets, then Predict one row or PredictAll rows. Every random
// choice is drawn from a PCG source seeded by the caller, so a model fitted
// twice on the same data with the same seed is identical.
//
// Basic usage:
//
//	line, err := learn.FitLinear(years, points)
//	if errors.Is(err, learn.ErrDegenerate) {
//		// fall back to the mean
//	}
//	next := line.Predict(2025)
//
//	split := learn.TrainTestSplit(len(X), 0.2, 42)
//	forest, err := learn.FitClassifier(ctx, learn.Rows(X, split.Train), learn.Take(y, split.Train),
//		learn.ForestConfig{Trees: 100, Seed: 42})
package learn
