// Package dataset loads the nine CSV tables of the F1 results dataset and
// cleans them into immutable in-memory tables.
//
// Each file is read into a column-oriented Table, passed through Clean and
// then converted into typed entity slices. The result is a Tables value that
// is shared read-only by every analytics run for the lifetime of the process.
//
// # Cleaning
//
// Clean is pure and idempotent:
//
//	1. column names are trimmed
//	2. the \N sentinel and empty cells become null
//	3. a column whose non-null cells all parse as numbers becomes numeric
//	4. nulls are filled with the median (numeric) or the mode (categorical)
//
// A column with no values at all is numeric and stays null; it reads as zero.
//
// # Usage
//
//	tables, err := dataset.Load(ctx, cfg.GetDataDir())
//	if err != nil {
//	    return fmt.Errorf("load dataset: %w", err)
//	}
//	for _, r := range tables.Results { ... }
package dataset
