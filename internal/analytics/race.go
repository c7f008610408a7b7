package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"f1insights/internal/learn"
	"f1insights/pkg/contracts/domain"
)

func qualifyingVsRace(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionQualifyingVsRace, domain.CategoryRace, "Qualifying vs Race Performance Analysis", p)
	v.Selectors = append(v.Selectors, driverSelector(env, ParamDriver, "Driver", p.DriverID))

	driver, ok, err := selectDriver(env, v, p.DriverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v, nil
	}
	name := driver.FullName()

	finishes := make(map[int][]float64)
	for _, r := range driverResults(env.Tables.Results, driver.ID) {
		finishes[r.RaceID] = append(finishes[r.RaceID], r.PositionOrder)
	}
	var qualifying []domain.Qualifying
	for _, q := range env.Tables.Qualifying {
		if q.DriverID == driver.ID {
			qualifying = append(qualifying, q)
		}
	}
	if len(qualifying) == 0 || len(finishes) == 0 {
		fail(v, "Not enough data available for this driver.")
		return v, nil
	}

	var grid, finish []float64
	var raceIDs []int
	for _, q := range qualifying {
		for _, f := range finishes[q.RaceID] {
			grid = append(grid, q.Position)
			finish = append(finish, f)
			raceIDs = append(raceIDs, q.RaceID)
		}
	}

	overview := make([][]any, 0, 5)
	for i := 0; i < len(grid) && i < 5; i++ {
		overview = append(overview, []any{raceIDs[i], int(grid[i]), int(finish[i])})
	}
	addTable(v, "Data Overview for "+name, []domain.Column{
		integerCol("race_id", "Race"),
		integerCol("qualifying", "Qualifying Position"),
		integerCol("finish", "Race Finish Position"),
	}, overview)

	if len(grid) < 5 {
		warn(v, "Not enough data points for a reliable analysis.")
		return v, nil
	}

	metric(v, "Correlation", learn.Pearson(grid, finish))

	line, err := learn.FitLinear(grid, finish)
	if errors.Is(err, learn.ErrDegenerate) {
		warn(v, "Qualifying positions do not vary, so no regression line can be fitted.")
		return v, nil
	}
	if err != nil {
		return nil, modelError("fit qualifying line", err)
	}
	predicted := line.PredictAll(grid)

	metric(v, "Coefficient", line.Slope)
	metric(v, "Intercept", line.Intercept)
	metric(v, "R-squared", learn.RSquared(finish, predicted))
	metric(v, "RMSE", learn.RMSE(finish, predicted))

	actual := domain.ChartSeries{Name: "Actual Data"}
	for i := range grid {
		actual.Data = append(actual.Data, xy(grid[i], finish[i]))
	}
	order := make([]int, len(grid))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return grid[order[a]] < grid[order[b]] })
	fitted := domain.ChartSeries{Name: "Regression Line"}
	for _, i := range order {
		fitted.Data = append(fitted.Data, xy(grid[i], predicted[i]))
	}
	addChart(v, chartScatter, "Qualifying vs Race Finish Position for "+name,
		"Qualifying Position", "Race Finish Position", actual, fitted)

	residuals := learn.Residuals(finish, predicted)
	spread := domain.ChartSeries{Name: "Residuals"}
	for i := range residuals {
		spread.Data = append(spread.Data, xy(predicted[i], residuals[i]))
	}
	addChart(v, chartScatter, "Residuals vs Predicted Values", "Predicted Race Finish Position", "Residuals", spread)

	metric(v, fmt.Sprintf("Predicted Finish from P%.0f", p.QualifyingPosition), line.Predict(p.QualifyingPosition))
	return v, nil
}

// StopSummary is the pit stop load of one driver in one race
type StopSummary struct {
	RaceID   int
	DriverID int
	Stops    int
	TotalMs  float64
}

// SummarizeStops counts stops and sums their duration per race and driver,
// ordered by race then driver
func SummarizeStops(stops []domain.PitStop) []StopSummary {
	type key struct{ race, driver int }
	index := make(map[key]int)
	var out []StopSummary
	for _, s := range stops {
		k := key{s.RaceID, s.DriverID}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, StopSummary{RaceID: s.RaceID, DriverID: s.DriverID})
		}
		out[i].Stops++
		out[i].TotalMs += s.Milliseconds
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].RaceID != out[b].RaceID {
			return out[a].RaceID < out[b].RaceID
		}
		return out[a].DriverID < out[b].DriverID
	})
	return out
}

func pitStopStrategy(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionPitStopStrategy, domain.CategoryRace, "Pit Stop Strategies Analysis & Predictive Modeling", p)

	summaries := SummarizeStops(env.Tables.PitStops)
	if len(summaries) == 0 {
		warn(v, "No pit stop data available.")
		return v, nil
	}

	counts := make([]float64, len(summaries))
	seconds := make([]float64, len(summaries))
	for i, s := range summaries {
		counts[i] = float64(s.Stops)
		seconds[i] = s.TotalMs / 1000
	}
	addChart(v, chartHistogram, "Distribution of Pit Stop Counts", "Number of Pit Stops", "Count",
		domain.ChartSeries{Name: "Pit Stops", Data: integerHistogram(counts)})
	addChart(v, chartHistogram, "Distribution of Total Pit Stop Durations (s)", "Total Pit Stop Duration (s)", "Count",
		domain.ChartSeries{Name: "Duration", Data: histogram(seconds, 30)})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model, err := env.pitStops.get(ctx, env.trainPitStops)
	if errors.Is(err, learn.ErrInsufficientData) {
		info(v, "Not enough pit stop data joined with race results to train the model.")
		return v, nil
	}
	if err != nil {
		return nil, modelError("train pit stop model", err)
	}

	countMetric(v, "Samples", model.samples)
	metric(v, "RMSE", learn.RMSE(model.observed, model.predicted))
	metric(v, "R-squared", learn.RSquared(model.observed, model.predicted))

	scatter := domain.ChartSeries{Name: "Test Set"}
	for i := range model.observed {
		scatter.Data = append(scatter.Data, xy(model.observed[i], model.predicted[i]))
	}
	addChart(v, chartScatter, "Actual vs Predicted Race Finish Position",
		"Actual Finish Position", "Predicted Finish Position", scatter)

	predicted := model.forest.Predict([]float64{float64(*p.Stops), *p.StopSeconds})
	metric(v, "Predicted Race Finish Position", predicted)
	return v, nil
}

// trainPitStops fits the regressor of finishing position from stop count
// and total stop time in seconds
func (e *Env) trainPitStops(ctx context.Context) (*trainedModel, error) {
	finishes := make(map[[2]int][]float64)
	for _, r := range e.Tables.Results {
		k := [2]int{r.RaceID, r.DriverID}
		finishes[k] = append(finishes[k], r.PositionOrder)
	}

	var X [][]float64
	var y []float64
	for _, s := range SummarizeStops(e.Tables.PitStops) {
		for _, f := range finishes[[2]int{s.RaceID, s.DriverID}] {
			X = append(X, []float64{float64(s.Stops), s.TotalMs / 1000})
			y = append(y, f)
		}
	}
	if len(X) < 2 {
		return nil, learn.ErrInsufficientData
	}
	return e.trainForest(ctx, X, y, learn.FitRegressor)
}

func lapTimeEfficiency(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionLapTimeEfficiency, domain.CategoryRace, "Lap Time Efficiency Analysis", p)

	acc := make(map[int]*meanAcc)
	for _, l := range env.Tables.LapTimes {
		a, ok := acc[l.RaceID]
		if !ok {
			a = &meanAcc{}
			acc[l.RaceID] = a
		}
		a.add(l.Milliseconds / 1000)
	}

	type circuit struct {
		name string
		avg  float64
	}
	var circuits []circuit
	for _, id := range sortedKeys(acc) {
		race, ok := env.Tables.Race(id)
		if !ok {
			continue
		}
		circuits = append(circuits, circuit{name: race.Name, avg: acc[id].mean()})
	}
	if len(circuits) == 0 {
		warn(v, "No lap time data available.")
		return v, nil
	}
	sort.SliceStable(circuits, func(i, j int) bool { return circuits[i].avg < circuits[j].avg })

	series := domain.ChartSeries{Name: "Average Lap Time (s)"}
	rows := make([][]any, len(circuits))
	for i, c := range circuits {
		rows[i] = []any{c.name, num(c.avg)}
		series.Data = append(series.Data, labelled(c.name, c.avg))
	}

	fastest, slowest := circuits[0], circuits[len(circuits)-1]
	textMetric(v, "Fastest Circuit", fastest.name, fastest.avg)
	textMetric(v, "Slowest Circuit", slowest.name, slowest.avg)
	addChart(v, chartBar, "Average Lap Time by Circuit", "Circuit", "Lap Time (s)", series)
	addTable(v, "Detailed Statistics",
		[]domain.Column{textCol("name", "Race"), numberCol("lap_time_sec", "Average Lap Time (s)")}, rows)
	return v, nil
}
