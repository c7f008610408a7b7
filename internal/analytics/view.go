package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"f1insights/pkg/contracts/domain"
)

// Column kinds
const (
	colText    = "text"
	colNumber  = "number"
	colInteger = "integer"
)

// Chart kinds
const (
	chartBar       = "bar"
	chartLine      = "line"
	chartScatter   = "scatter"
	chartHistogram = "histogram"
	chartHeatmap   = "heatmap"
)

func newView(id string, category domain.Category, title string, p domain.AnalyticsParams) *domain.View {
	return &domain.View{Action: id, Title: title, Category: category, Params: p}
}

func addMessage(v *domain.View, level domain.MessageLevel, format string, args ...any) {
	v.Messages = append(v.Messages, domain.Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

func info(v *domain.View, format string, args ...any) {
	addMessage(v, domain.LevelInfo, format, args...)
}

func warn(v *domain.View, format string, args ...any) {
	addMessage(v, domain.LevelWarning, format, args...)
}

func fail(v *domain.View, format string, args ...any) {
	addMessage(v, domain.LevelError, format, args...)
}

func success(v *domain.View, format string, args ...any) {
	addMessage(v, domain.LevelSuccess, format, args...)
}

// metric adds a two-decimal figure. NaN and infinities render as n/a.
func metric(v *domain.View, label string, value float64) {
	if !finite(value) {
		v.Metrics = append(v.Metrics, domain.Metric{Label: label, Value: "n/a"})
		return
	}
	v.Metrics = append(v.Metrics, domain.Metric{Label: label, Value: fmt.Sprintf("%.2f", value), RawValue: value})
}

func countMetric(v *domain.View, label string, n int) {
	v.Metrics = append(v.Metrics, domain.Metric{Label: label, Value: fmt.Sprintf("%d", n), RawValue: float64(n)})
}

func textMetric(v *domain.View, label, text string, raw float64) {
	if !finite(raw) {
		raw = 0
	}
	v.Metrics = append(v.Metrics, domain.Metric{Label: label, Value: text, RawValue: raw})
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// num keeps non-finite values out of JSON
func num(f float64) any {
	if !finite(f) {
		return nil
	}
	return f
}

func textCol(key, label string) domain.Column {
	return domain.Column{Key: key, Label: label, Type: colText, Align: "left"}
}

func numberCol(key, label string) domain.Column {
	return domain.Column{Key: key, Label: label, Type: colNumber, Align: "right"}
}

func integerCol(key, label string) domain.Column {
	return domain.Column{Key: key, Label: label, Type: colInteger, Align: "right"}
}

func addTable(v *domain.View, title string, columns []domain.Column, rows [][]any) {
	if rows == nil {
		rows = [][]any{}
	}
	v.Tables = append(v.Tables, domain.TableData{Title: title, Columns: columns, Rows: rows})
}

func addChart(v *domain.View, chartType, title, xAxis, yAxis string, series ...domain.ChartSeries) {
	v.Charts = append(v.Charts, domain.ChartConfig{
		ChartType:  chartType,
		Title:      title,
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
		ShowLegend: len(series) > 1,
	})
}

func labelled(label string, value float64) domain.ChartPoint {
	if !finite(value) {
		value = 0
	}
	return domain.ChartPoint{Label: label, Value: value}
}

func xy(x, y float64) domain.ChartPoint {
	return domain.ChartPoint{X: x, Value: y}
}

// histogram counts vals into equal-width bins spanning their range
func histogram(vals []float64, bins int) []domain.ChartPoint {
	if len(vals) == 0 || bins < 1 {
		return nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		hi = lo + 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	points := make([]domain.ChartPoint, bins)
	for i, c := range counts {
		points[i] = domain.ChartPoint{
			Label: fmt.Sprintf("%.1f-%.1f", dividers[i], dividers[i+1]),
			X:     dividers[i],
			Value: c,
		}
	}
	return points
}

// integerHistogram counts whole values into unit bins from min to max
func integerHistogram(vals []float64) []domain.ChartPoint {
	if len(vals) == 0 {
		return nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	lo := math.Floor(sorted[0])
	hi := math.Floor(sorted[len(sorted)-1])
	dividers := make([]float64, 0, int(hi-lo)+2)
	for d := lo; d <= hi+1; d++ {
		dividers = append(dividers, d)
	}

	counts := stat.Histogram(nil, dividers, sorted, nil)
	points := make([]domain.ChartPoint, len(counts))
	for i, c := range counts {
		points[i] = domain.ChartPoint{Label: fmt.Sprintf("%.0f", dividers[i]), X: dividers[i], Value: c}
	}
	return points
}

func driverSelector(env *Env, param, label string, selected int) domain.Selector {
	s := domain.Selector{Param: param, Label: label, Selected: selected}
	s.Options = make([]domain.Option, len(env.Tables.Drivers))
	for i, d := range env.Tables.Drivers {
		s.Options[i] = domain.Option{Value: d.ID, Label: d.FullName()}
	}
	return s
}

func constructorSelector(env *Env, selected int) domain.Selector {
	s := domain.Selector{Param: ParamConstructor, Label: "Constructor", Selected: selected}
	s.Options = make([]domain.Option, len(env.Tables.Constructors))
	for i, c := range env.Tables.Constructors {
		s.Options[i] = domain.Option{Value: c.ID, Label: c.Name}
	}
	return s
}

// selectDriver resolves a selected driver. A zero id means no drivers are
// loaded; the view gets a warning and ok is false.
func selectDriver(env *Env, v *domain.View, id int) (domain.Driver, bool, error) {
	if id == 0 {
		warn(v, "No drivers available.")
		return domain.Driver{}, false, nil
	}
	d, found := env.Tables.Driver(id)
	if !found {
		return domain.Driver{}, false, fmt.Errorf("driver %d: %w", id, ErrUnknownDriver)
	}
	return d, true, nil
}

func selectConstructor(env *Env, v *domain.View, id int) (domain.Constructor, bool, error) {
	if id == 0 {
		warn(v, "No constructors available.")
		return domain.Constructor{}, false, nil
	}
	c, found := env.Tables.Constructor(id)
	if !found {
		return domain.Constructor{}, false, fmt.Errorf("constructor %d: %w", id, ErrUnknownConstructor)
	}
	return c, true, nil
}
