package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustRead(t *testing.T, input string) *Table {
	t.Helper()
	table, err := ReadCSV("test", strings.NewReader(input))
	require.NoError(t, err)
	return table
}

func TestCleanNumericColumn(t *testing.T) {
	cleaned := Clean(mustRead(t, "  points ,name\n1,a\n\\N,b\n3,b\n,\\N\n"))

	points, ok := cleaned.Column("points")
	require.True(t, ok, "column names are trimmed")
	assert.True(t, points.Numeric)
	assert.Zero(t, points.NullCount())
	// median of 1 and 3
	assert.Equal(t, []float64{1, 2, 3, 2}, []float64{points.Float(0), points.Float(1), points.Float(2), points.Float(3)})

	name, ok := cleaned.Column("name")
	require.True(t, ok)
	assert.False(t, name.Numeric)
	assert.Equal(t, "b", name.String(3), "categorical nulls take the mode")
}

func TestCleanMixedColumnStaysCategorical(t *testing.T) {
	cleaned := Clean(mustRead(t, "time\n1:27.452\n90.1\n"))
	col, _ := cleaned.Column("time")
	assert.False(t, col.Numeric)
	assert.Equal(t, "1:27.452", col.String(0))
}

func TestCleanAllNullColumn(t *testing.T) {
	cleaned := Clean(mustRead(t, "code,driverId\n\\N,1\n\\N,2\n"))
	code, _ := cleaned.Column("code")
	assert.True(t, code.Numeric, "a column with no values counts as numeric")
	assert.Equal(t, 2, code.NullCount())
	assert.Zero(t, code.Float(0))
}

func TestCleanNaNIsMissing(t *testing.T) {
	cleaned := Clean(mustRead(t, "ms\nNaN\n10\n20\n30\n"))
	ms, _ := cleaned.Column("ms")
	assert.True(t, ms.Numeric)
	assert.Equal(t, 20.0, ms.Float(0))
}

func TestCleanDoesNotModifyInput(t *testing.T) {
	raw := mustRead(t, "x\n\\N\n4\n")
	before := raw.Clone()
	Clean(raw)
	assert.Equal(t, before, raw)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd", []float64{3, 1, 2}, 2},
		{"even averages the middle pair", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.vals))
		})
	}

	vals := []float64{3, 1, 2}
	Median(vals)
	assert.Equal(t, []float64{3, 1, 2}, vals, "input order is preserved")
}

func TestMode(t *testing.T) {
	assert.Equal(t, "b", Mode([]string{"a", "b", "b"}))
	assert.Equal(t, "a", Mode([]string{"b", "a", "b", "a"}), "ties go to the smallest value")
	assert.Equal(t, "", Mode(nil))
}

var cellPool = []string{"", `\N`, " ", "1", "2.5", " 3 ", "-4", "NaN", "abc", "x", "Monaco"}

func drawTable(t *rapid.T) *Table {
	rows := rapid.IntRange(0, 12).Draw(t, "rows")
	ncols := rapid.IntRange(1, 4).Draw(t, "cols")
	numericOnly := rapid.Bool().Draw(t, "numericOnly")

	pool := cellPool
	if numericOnly {
		pool = []string{"", `\N`, "1", "2.5", " 3 ", "-4", "NaN"}
	}

	cols := make([]*Column, ncols)
	for c := range cols {
		cells := rapid.SliceOfN(rapid.SampledFrom(pool), rows, rows).Draw(t, "cells")
		cols[c] = NewStringColumn(" col"+string(rune('a'+c))+" ", cells)
	}
	table, err := NewTable("generated", cols...)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

func TestCleanIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		once := Clean(drawTable(t))
		twice := Clean(once)
		if !assert.ObjectsAreEqual(once, twice) {
			t.Fatalf("Clean is not idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
		}
	})
}

func TestCleanFillsEveryNull(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cleaned := Clean(drawTable(t))
		for _, c := range cleaned.Columns {
			nulls := c.NullCount()
			if nulls == c.Len() {
				continue
			}
			if nulls != 0 {
				t.Fatalf("column %q has %d nulls after fill", c.Name, nulls)
			}
		}
	})
}
