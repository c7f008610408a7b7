package exporter

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"f1insights/pkg/contracts/domain"
)

const (
	summarySheet = "Summary"
	maxSheetName = 31
	columnWidth  = 18
	defaultSheet = "Sheet1"
)

// XLSXWriter writes a whole view as a workbook: a summary sheet with
// metrics and messages, then one sheet per table
type XLSXWriter struct{}

// NewXLSXWriter creates a workbook writer
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// WriteView encodes the view as an .xlsx document to w
func (xw *XLSXWriter) WriteView(w io.Writer, view *domain.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, view, header); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for i, table := range view.Tables {
		name := sheetName(table.Title, i, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeTableSheet(f, name, table, header); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, view *domain.View, header int) error {
	rows := [][]any{{view.Title}, {"Category", string(view.Category)}}
	if len(view.Metrics) > 0 {
		rows = append(rows, nil, []any{"Metric", "Value"})
		for _, m := range view.Metrics {
			rows = append(rows, []any{m.Label, m.Value})
		}
	}
	if len(view.Messages) > 0 {
		rows = append(rows, nil, []any{"Level", "Message"})
		for _, msg := range view.Messages {
			rows = append(rows, []any{string(msg.Level), msg.Text})
		}
	}

	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", header); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", columnWidth*2)
}

func writeTableSheet(f *excelize.File, sheet string, table domain.TableData, header int) error {
	labels := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		labels[i] = c.Label
	}
	if err := f.SetSheetRow(sheet, "A1", &labels); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}

	for i, row := range table.Rows {
		cells := make([]any, len(table.Columns))
		for j := range cells {
			if j < len(row) {
				cells[j] = sheetValue(row[j])
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, sheet, err)
		}
	}

	if len(table.Columns) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(table.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, columnWidth)
}

// sheetValue keeps numbers numeric and blanks non-finite floats
func sheetValue(v any) any {
	if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
		return nil
	}
	return v
}

// sheetName derives a unique, valid worksheet name from a table title
func sheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Table " + strconv.Itoa(index+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
