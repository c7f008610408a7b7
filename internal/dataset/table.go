package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// utf8BOM prefixes files saved by spreadsheet tools
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Column is one named column of a table. A numeric column stores floats, a
// categorical column stores strings. Null cells hold the zero value.
type Column struct {
	Name    string
	Numeric bool
	nums    []float64
	strs    []string
	null    []bool
}

// NewStringColumn builds a categorical column from raw cells. Cells are
// taken verbatim; use Clean to apply the missing-value rules.
func NewStringColumn(name string, cells []string) *Column {
	strs := make([]string, len(cells))
	copy(strs, cells)
	return &Column{Name: name, strs: strs, null: make([]bool, len(cells))}
}

// NewNumericColumn builds a numeric column with no nulls
func NewNumericColumn(name string, values []float64) *Column {
	nums := make([]float64, len(values))
	copy(nums, values)
	return &Column{Name: name, Numeric: true, nums: nums, null: make([]bool, len(values))}
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.null)
}

// IsNull reports whether cell i is missing
func (c *Column) IsNull(i int) bool {
	return c.null[i]
}

// NullCount returns the number of missing cells
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

// Float returns cell i as a number. Null and categorical cells read as 0.
func (c *Column) Float(i int) float64 {
	if !c.Numeric || c.null[i] {
		return 0
	}
	return c.nums[i]
}

// Int returns cell i truncated to an int
func (c *Column) Int(i int) int {
	return int(c.Float(i))
}

// String returns cell i as text. Numbers use the shortest representation.
func (c *Column) String(i int) string {
	if c.null[i] {
		return ""
	}
	if c.Numeric {
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	}
	return c.strs[i]
}

func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Numeric: c.Numeric, null: append([]bool(nil), c.null...)}
	if c.Numeric {
		out.nums = append([]float64(nil), c.nums...)
	} else {
		out.strs = append([]string(nil), c.strs...)
	}
	return out
}

// Table is a named, column-oriented snapshot of one CSV file
type Table struct {
	Name    string
	Columns []*Column
	rows    int
}

// NewTable assembles a table from columns of equal length
func NewTable(name string, columns ...*Column) (*Table, error) {
	t := &Table{Name: name, Columns: columns}
	for i, c := range columns {
		if i == 0 {
			t.rows = c.Len()
			continue
		}
		if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.rows)
		}
	}
	return t, nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Column returns the column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in file order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the names of numeric columns in file order
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, rows: t.rows, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.clone()
	}
	return out
}

// ReadCSV reads a CSV stream with a header row into an uncleaned table.
// Every column is categorical until Clean runs.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: missing header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: header: %w", name, err)
	}

	cells := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for i := range header {
			cells[i] = append(cells[i], record[i])
		}
	}

	columns := make([]*Column, len(header))
	for i, h := range header {
		columns[i] = &Column{Name: h, strs: cells[i], null: make([]bool, len(cells[i]))}
	}
	return NewTable(name, columns...)
}
