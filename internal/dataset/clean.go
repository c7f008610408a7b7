package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// MissingSentinel marks a missing value in the source files
const MissingSentinel = `\N`

// Clean returns a cleaned copy of t. The input is not modified and
// Clean(Clean(t)) equals Clean(t).
func Clean(t *Table) *Table {
	out := &Table{Name: t.Name, rows: t.rows, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = cleanColumn(c)
	}
	return out
}

func cleanColumn(c *Column) *Column {
	name := strings.TrimSpace(c.Name)
	n := c.Len()

	if c.Numeric {
		nums := make([]float64, n)
		null := make([]bool, n)
		copy(nums, c.nums)
		copy(null, c.null)
		return fillNumeric(&Column{Name: name, Numeric: true, nums: nums, null: null})
	}

	strs := make([]string, n)
	null := make([]bool, n)
	for i := 0; i < n; i++ {
		v := c.strs[i]
		if c.null[i] || isMissing(v) {
			null[i] = true
			continue
		}
		strs[i] = v
	}

	if nums, ok := coerceNumeric(strs, null); ok {
		return fillNumeric(&Column{Name: name, Numeric: true, nums: nums, null: null})
	}
	return fillCategorical(&Column{Name: name, strs: strs, null: null})
}

func isMissing(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == MissingSentinel
}

// coerceNumeric converts the non-null cells when every one of them parses.
// NaN parses as missing.
func coerceNumeric(strs []string, null []bool) ([]float64, bool) {
	nums := make([]float64, len(strs))
	for i, v := range strs {
		if null[i] {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		if math.IsNaN(f) {
			null[i] = true
			continue
		}
		nums[i] = f
	}
	return nums, true
}

func fillNumeric(c *Column) *Column {
	values := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.null[i] {
			values = append(values, v)
		}
	}
	if len(values) == 0 || len(values) == len(c.nums) {
		return c
	}

	m := Median(values)
	for i := range c.nums {
		if c.null[i] {
			c.nums[i] = m
			c.null[i] = false
		}
	}
	return c
}

func fillCategorical(c *Column) *Column {
	values := make([]string, 0, len(c.strs))
	for i, v := range c.strs {
		if !c.null[i] {
			values = append(values, v)
		}
	}
	if len(values) == 0 || len(values) == len(c.strs) {
		return c
	}

	m := Mode(values)
	for i := range c.strs {
		if c.null[i] {
			c.strs[i] = m
			c.null[i] = false
		}
	}
	return c
}

// Median returns the middle value of vals. An even count averages the two
// middle values. The input is not reordered.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mode returns the most frequent value. Ties go to the lexicographically
// smallest value.
func Mode(vals []string) string {
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}

	var best string
	bestCount := 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}
