// Package textview renders analytics views as terminal tables for the
// f1report command.
package textview

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"f1insights/pkg/contracts/domain"
)

// Options controls how much of a view is printed
type Options struct {
	// MaxRows caps the rows printed per table, 0 prints everything
	MaxRows int
	// Charts prints the chart series as tables
	Charts bool
	// Style is the go-pretty table style
	Style table.Style
}

// DefaultOptions prints up to 25 rows per table without charts
func DefaultOptions() Options {
	return Options{MaxRows: 25, Style: table.StyleRounded}
}

var levelPrefix = map[domain.MessageLevel]string{
	domain.LevelInfo:    "i",
	domain.LevelSuccess: "+",
	domain.LevelWarning: "!",
	domain.LevelError:   "x",
}

// Render writes view to w
func Render(w io.Writer, view *domain.View, opts Options) error {
	if view == nil {
		return fmt.Errorf("render: nil view")
	}
	if opts.Style.Name == "" {
		opts.Style = table.StyleRounded
	}

	var b strings.Builder
	b.WriteString(text.Bold.Sprint(view.Title))
	if view.Category != "" {
		b.WriteString(text.FgHiBlack.Sprintf("  (%s)", view.Category))
	}
	b.WriteString("\n\n")

	for _, m := range view.Messages {
		fmt.Fprintf(&b, "[%s] %s\n", levelPrefix[m.Level], m.Text)
	}
	if len(view.Messages) > 0 {
		b.WriteString("\n")
	}

	if len(view.Metrics) > 0 {
		b.WriteString(metricsTable(view.Metrics, opts.Style))
		b.WriteString("\n\n")
	}

	for _, td := range view.Tables {
		b.WriteString(dataTable(td, opts))
		b.WriteString("\n\n")
	}

	if opts.Charts {
		for _, c := range view.Charts {
			b.WriteString(chartTable(c, opts))
			b.WriteString("\n\n")
		}
	}

	_, err := io.WriteString(w, strings.TrimRight(b.String(), "\n")+"\n")
	return err
}

func metricsTable(metrics []domain.Metric, style table.Style) string {
	t := table.NewWriter()
	t.SetStyle(style)
	t.AppendHeader(table.Row{"Metric", "Value"})
	for _, m := range metrics {
		t.AppendRow(table.Row{m.Label, m.Value})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return t.Render()
}

func dataTable(td domain.TableData, opts Options) string {
	t := table.NewWriter()
	t.SetStyle(opts.Style)
	if td.Title != "" {
		t.SetTitle(td.Title)
	}

	header := make(table.Row, len(td.Columns))
	configs := make([]table.ColumnConfig, 0, len(td.Columns))
	for i, col := range td.Columns {
		header[i] = col.Label
		if col.Align == "right" {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	rows := td.Rows
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}
	for _, r := range rows {
		row := make(table.Row, len(td.Columns))
		for i, col := range td.Columns {
			if i < len(r) {
				row[i] = Cell(col, r[i])
			}
		}
		t.AppendRow(row)
	}
	if hidden := len(td.Rows) - len(rows); hidden > 0 {
		t.AppendFooter(table.Row{fmt.Sprintf("%d more rows", hidden)})
	}
	return t.Render()
}

func chartTable(c domain.ChartConfig, opts Options) string {
	t := table.NewWriter()
	t.SetStyle(opts.Style)
	t.SetTitle(fmt.Sprintf("%s [%s]", c.Title, c.ChartType))
	t.AppendHeader(table.Row{"Series", "Point", c.YAxis})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})

	for _, s := range c.Series {
		points := s.Data
		if opts.MaxRows > 0 && len(points) > opts.MaxRows {
			points = points[:opts.MaxRows]
		}
		for _, p := range points {
			label := p.Label
			if label == "" {
				label = strconv.FormatFloat(p.X, 'f', -1, 64)
			}
			t.AppendRow(table.Row{s.Name, label, formatFloat(p.Value)})
		}
	}
	return t.Render()
}

// Cell formats one table value for its column type
func Cell(col domain.Column, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if col.Type == "integer" && !math.IsNaN(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(math.Round(x)), 10)
		}
		return formatFloat(x)
	case float32:
		return Cell(col, float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderMenu writes the navigation menu with the action ids to pass to run
func RenderMenu(w io.Writer, groups []domain.MenuGroup) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Category", "Action", "Title"})
	for _, g := range groups {
		for _, a := range g.Actions {
			t.AppendRow(table.Row{g.Category, a.ID, a.Title})
		}
		t.AppendSeparator()
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	t.Render()
	return nil
}

// RenderDatasets writes the loaded table summaries
func RenderDatasets(w io.Writer, datasets []domain.DatasetSummary) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Dataset", "Rows", "Columns", "Numeric"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	total := 0
	for _, d := range datasets {
		t.AppendRow(table.Row{d.Name, d.Rows, len(d.Columns), len(d.Numeric)})
		total += d.Rows
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
	return nil
}
