package domain

// Category groups related analytics actions in the navigation menu
type Category string

const (
	CategoryDriver      Category = "Driver Analysis"
	CategoryRace        Category = "Race Analysis"
	CategoryTeam        Category = "Team Analysis"
	CategoryPredictions Category = "Predictions and Trends"
	CategorySpecial     Category = "Special Analysis"
)

// MessageLevel is the severity of a user-visible view message
type MessageLevel string

const (
	LevelInfo    MessageLevel = "info"
	LevelSuccess MessageLevel = "success"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

// AnalyticsParams is the explicit selection state passed to an analytics action.
// Zero values mean "use the action default".
type AnalyticsParams struct {
	DriverID           int      `json:"driver_id,omitempty" validate:"omitempty,min=1"`
	DriverB            int      `json:"driver_b,omitempty" validate:"omitempty,min=1"`
	ConstructorID      int      `json:"constructor_id,omitempty" validate:"omitempty,min=1"`
	Grid               float64  `json:"grid,omitempty" validate:"omitempty,min=1,max=20"`
	Laps               float64  `json:"laps,omitempty" validate:"omitempty,min=30,max=80"`
	Milliseconds       float64  `json:"milliseconds,omitempty" validate:"omitempty,min=50000,max=200000"`
	QualifyingPosition float64  `json:"qualifying_position,omitempty" validate:"omitempty,min=1,max=50"`
	Stops              *int     `json:"stops,omitempty" validate:"omitempty,min=0,max=10"`
	StopSeconds        *float64 `json:"stop_seconds,omitempty" validate:"omitempty,min=0,max=300"`
	TargetYear         int      `json:"target_year,omitempty" validate:"omitempty,min=1950,max=2100"`
	TopN               int      `json:"top_n,omitempty" validate:"omitempty,min=1,max=500"`
}

// View is the renderable output of one analytics action
type View struct {
	Action    string          `json:"action"`
	Title     string          `json:"title"`
	Category  Category        `json:"category"`
	Messages  []Message       `json:"messages,omitempty"`
	Metrics   []Metric        `json:"metrics,omitempty"`
	Tables    []TableData     `json:"tables,omitempty"`
	Charts    []ChartConfig   `json:"charts,omitempty"`
	Selectors []Selector      `json:"selectors,omitempty"`
	Params    AnalyticsParams `json:"params"`
}

// Message is a user-visible note attached to a view
type Message struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
}

// Metric is a single headline figure
type Metric struct {
	Label    string  `json:"label"`
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
}

// TableData defines how to render a table
type TableData struct {
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Column defines a table column
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "integer"
	Align string `json:"align"` // "left", "right"
}

// ChartConfig defines how to render a chart
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "bar", "line", "scatter", "histogram", "heatmap"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	ShowLegend bool          `json:"showLegend"`
}

// ChartSeries represents a data series in a chart
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint represents a single data point. Scatter and line charts use X.
type ChartPoint struct {
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x,omitempty"`
	Value float64 `json:"value"`
}

// Selector lists the choices for one selection parameter
type Selector struct {
	Param    string   `json:"param"`
	Label    string   `json:"label"`
	Options  []Option `json:"options"`
	Selected int      `json:"selected"`
}

// Option is one choice of a selector
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// MenuGroup is one category of the navigation menu
type MenuGroup struct {
	Category Category     `json:"category"`
	Actions  []MenuAction `json:"actions"`
}

// MenuAction is one selectable analytics action
type MenuAction struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DatasetSummary describes one loaded table
type DatasetSummary struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
	Numeric []string `json:"numeric"`
}
