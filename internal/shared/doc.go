// Package shared holds helpers used across the F1 Insights packages that do
// not belong to a single layer.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler with assertion helpers
//	- builders that write small CSV datasets for loader and analytics tests
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    dir := testutil.NewDataset().WriteDir(t)
//	    ...
//	}
package shared
