package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"f1insights/internal/learn"
	"f1insights/pkg/contracts/domain"
)

// Forecast is the projected season points of one driver or constructor
type Forecast struct {
	ID      int
	Seasons int
	Points  float64
}

// SeasonTotals sums points per entity and season. ids lists the entities in
// the order they are first met walking seasons by year, then by id.
type SeasonTotals struct {
	ids    []int
	points map[int]map[int]float64
}

// NewSeasonTotals returns empty totals
func NewSeasonTotals() *SeasonTotals {
	return &SeasonTotals{points: make(map[int]map[int]float64)}
}

// Add books points for an entity in a season
func (t *SeasonTotals) Add(id, year int, points float64) {
	t.ids = nil
	seasons, ok := t.points[id]
	if !ok {
		seasons = make(map[int]float64)
		t.points[id] = seasons
	}
	seasons[year] += points
}

func (t *SeasonTotals) order() []int {
	if t.ids != nil || len(t.points) == 0 {
		return t.ids
	}
	type first struct{ year, id int }
	keys := make([]first, 0, len(t.points))
	for id, seasons := range t.points {
		keys = append(keys, first{year: sortedKeys(seasons)[0], id: id})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].id < keys[j].id
	})
	t.ids = make([]int, len(keys))
	for i, k := range keys {
		t.ids[i] = k.id
	}
	return t.ids
}

// History returns the seasons of an entity ordered by year
func (t *SeasonTotals) History(id int) (years, points []float64) {
	seasons := t.points[id]
	for _, y := range sortedKeys(seasons) {
		years = append(years, float64(y))
		points = append(points, seasons[y])
	}
	return years, points
}

// Project extrapolates every entity to the target year. Entities with two or
// more seasons follow their least squares line, the rest keep the mean of
// their season points. The result keeps encounter order.
func (t *SeasonTotals) Project(target int) ([]Forecast, error) {
	out := make([]Forecast, 0, len(t.points))
	for _, id := range t.order() {
		years, points := t.History(id)
		f := Forecast{ID: id, Seasons: len(years)}
		if len(years) >= 2 {
			line, err := learn.FitLinear(years, points)
			if err != nil {
				return nil, modelError(fmt.Sprintf("project %d", id), err)
			}
			f.Points = line.Predict(float64(target))
		} else {
			f.Points = points[0]
		}
		out = append(out, f)
	}
	return out, nil
}

// Leader is the first maximum in encounter order
func Leader(forecasts []Forecast) (Forecast, bool) {
	if len(forecasts) == 0 {
		return Forecast{}, false
	}
	best := forecasts[0]
	for _, f := range forecasts[1:] {
		if f.Points > best.Points {
			best = f
		}
	}
	return best, true
}

func seasonForecast(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionSeasonForecast, domain.CategoryPredictions, fmt.Sprintf("Season Forecast for %d", p.TargetYear), p)
	years := env.raceYears()

	drivers := NewSeasonTotals()
	for _, s := range env.Tables.DriverStandings {
		if year, ok := years[s.RaceID]; ok {
			drivers.Add(s.DriverID, year, s.Points)
		}
	}
	teams := NewSeasonTotals()
	for _, s := range env.Tables.ConstructorStandings {
		if year, ok := years[s.RaceID]; ok {
			teams.Add(s.ConstructorID, year, s.Points)
		}
	}
	if len(drivers.points) == 0 && len(teams.points) == 0 {
		warn(v, "No standings data available.")
		return v, nil
	}

	driverForecast, err := drivers.Project(p.TargetYear)
	if err != nil {
		return nil, modelError("driver forecast", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	teamForecast, err := teams.Project(p.TargetYear)
	if err != nil {
		return nil, modelError("constructor forecast", err)
	}

	driverChamp, haveDriver := Leader(driverForecast)
	if haveDriver {
		textMetric(v, "Predicted Driver Champion", env.Tables.DriverName(driverChamp.ID), driverChamp.Points)
		metric(v, "Predicted Driver Points", driverChamp.Points)
	} else {
		warn(v, "No driver standings available.")
	}
	if champ, ok := Leader(teamForecast); ok {
		textMetric(v, "Predicted Constructor Champion", env.Tables.ConstructorName(champ.ID), champ.Points)
		metric(v, "Predicted Constructor Points", champ.Points)
	} else {
		warn(v, "No constructor standings available.")
	}

	addTable(v, "Predicted Driver Standings", forecastColumns("driver", "Driver"),
		forecastRows(driverForecast, env.Tables.DriverName))
	addTable(v, "Predicted Constructor Standings", forecastColumns("constructor", "Constructor"),
		forecastRows(teamForecast, env.Tables.ConstructorName))

	if haveDriver {
		name := env.Tables.DriverName(driverChamp.ID)
		history := domain.ChartSeries{Name: "Season Points"}
		hy, hp := drivers.History(driverChamp.ID)
		for i := range hy {
			history.Data = append(history.Data, xy(hy[i], hp[i]))
		}
		forecast := domain.ChartSeries{Name: "Forecast", Data: []domain.ChartPoint{xy(float64(p.TargetYear), driverChamp.Points)}}
		addChart(v, chartLine, name+" Points History and Forecast", "Year", "Points", history, forecast)
	}
	return v, nil
}

func forecastColumns(key, label string) []domain.Column {
	return []domain.Column{
		integerCol("rank", "Rank"),
		textCol(key, label),
		integerCol("seasons", "Seasons"),
		numberCol("points", "Predicted Points"),
	}
}

// forecastRows ranks forecasts by points, highest first
func forecastRows(forecasts []Forecast, name func(int) string) [][]any {
	ranked := append([]Forecast(nil), forecasts...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Points > ranked[j].Points })
	rows := make([][]any, len(ranked))
	for i, f := range ranked {
		rows[i] = []any{i + 1, name(f.ID), f.Seasons, num(f.Points)}
	}
	return rows
}

func championshipRetention(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionChampionshipRetention, domain.CategoryPredictions, "Championship Retention Analysis", p)

	champions := SeasonChampions(env.Tables.Results, env.raceYears())
	if len(champions) == 0 {
		warn(v, "No race results available.")
		return v, nil
	}
	retained := Retention(champions)

	kept := 0
	rows := make([][]any, len(champions))
	series := domain.ChartSeries{Name: "Champion Points"}
	for i, c := range champions {
		answer := "No"
		if retained[i] {
			kept++
			answer = "Yes"
		}
		name := env.Tables.DriverName(c.DriverID)
		rows[i] = []any{c.Year, name, num(c.Points), answer}
		series.Data = append(series.Data, xy(float64(c.Year), c.Points))
	}
	rate := float64(kept) / float64(len(champions)) * 100

	textMetric(v, "Championship Retention Rate", fmt.Sprintf("%.2f%%", rate), rate)
	countMetric(v, "Seasons", len(champions))
	countMetric(v, "Titles Retained", kept)
	addTable(v, "Season Champions", []domain.Column{
		integerCol("year", "Year"),
		textCol("champion", "Champion"),
		numberCol("points", "Points"),
		textCol("retained", "Retained Title"),
	}, rows)
	addChart(v, chartLine, "Champion Points by Season", "Year", "Points", series)
	return v, nil
}

// ChampionAge is a champion's age in the season they won
type ChampionAge struct {
	Year     int
	DriverID int
	Age      int
}

var dobLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02"}

// birthYear parses a date of birth. ok is false when no layout matches.
func birthYear(dob string) (int, bool) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

// ChampionAges joins champions with their date of birth. Champions with an
// unknown driver or an unparseable dob are dropped.
func ChampionAges(champions []Champion, driver func(int) (domain.Driver, bool)) []ChampionAge {
	var out []ChampionAge
	for _, c := range champions {
		d, ok := driver(c.DriverID)
		if !ok {
			continue
		}
		born, ok := birthYear(d.DOB)
		if !ok {
			continue
		}
		out = append(out, ChampionAge{Year: c.Year, DriverID: c.DriverID, Age: c.Year - born})
	}
	return out
}

func championAge(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionChampionAge, domain.CategoryPredictions, "Champion Age Trends", p)

	ages := ChampionAges(SeasonChampions(env.Tables.Results, env.raceYears()), env.Tables.Driver)
	if len(ages) == 0 {
		warn(v, "No champion age data available.")
		return v, nil
	}

	values := make([]float64, len(ages))
	rows := make([][]any, len(ages))
	trend := domain.ChartSeries{Name: "Age"}
	var acc meanAcc
	youngest, oldest := ages[0], ages[0]
	for i, a := range ages {
		values[i] = float64(a.Age)
		acc.add(values[i])
		if a.Age < youngest.Age {
			youngest = a
		}
		if a.Age > oldest.Age {
			oldest = a
		}
		rows[i] = []any{a.Year, env.Tables.DriverName(a.DriverID), a.Age}
		trend.Data = append(trend.Data, xy(float64(a.Year), values[i]))
	}

	metric(v, "Average Champion Age", acc.mean())
	textMetric(v, "Youngest Champion",
		fmt.Sprintf("%s (%d, %d)", env.Tables.DriverName(youngest.DriverID), youngest.Age, youngest.Year), float64(youngest.Age))
	textMetric(v, "Oldest Champion",
		fmt.Sprintf("%s (%d, %d)", env.Tables.DriverName(oldest.DriverID), oldest.Age, oldest.Year), float64(oldest.Age))

	addChart(v, chartHistogram, "Age Distribution of Champions", "Age", "Count",
		domain.ChartSeries{Name: "Champions", Data: histogram(values, 15)})
	addChart(v, chartLine, "Champion Age by Season", "Year", "Age", trend)
	addTable(v, "Champion Ages", []domain.Column{
		integerCol("year", "Year"),
		textCol("champion", "Champion"),
		integerCol("age", "Age"),
	}, rows)
	return v, nil
}
