package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"f1insights/internal/learn"
	"f1insights/pkg/contracts/domain"
)

func driverPerformance(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionDriverPerformance, domain.CategoryDriver, "Driver Performance Analysis", p)
	v.Selectors = append(v.Selectors, driverSelector(env, ParamDriver, "Driver", p.DriverID))

	driver, ok, err := selectDriver(env, v, p.DriverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v, nil
	}
	name := driver.FullName()

	results := driverResults(env.Tables.Results, driver.ID)
	if len(results) == 0 {
		warn(v, "No race results found for %s.", name)
		return v, nil
	}

	races := make(map[int]struct{})
	wins, podiums := 0, 0
	positions := make(map[int]int)
	for _, r := range results {
		races[r.RaceID] = struct{}{}
		if r.PositionOrder == 1 {
			wins++
		}
		if r.PositionOrder <= 3 {
			podiums++
		}
		positions[int(r.PositionOrder)]++
	}
	var standingPoints float64
	for _, s := range env.Tables.DriverStandings {
		if s.DriverID == driver.ID {
			standingPoints += s.Points
		}
	}

	countMetric(v, "Total Races", len(races))
	countMetric(v, "Total Wins", wins)
	countMetric(v, "Total Podiums", podiums)
	metric(v, "Total Points", standingPoints)

	series := domain.ChartSeries{Name: "Count"}
	for _, pos := range sortedKeys(positions) {
		series.Data = append(series.Data, labelled(strconv.Itoa(pos), float64(positions[pos])))
	}
	addChart(v, chartBar, "Finishing Positions for "+name, "Finishing Position", "Count", series)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	years, points := seasonPoints(results, env.raceYears())
	if len(years) < env.Config.MinForecastSeasons {
		info(v, "Not enough data to predict future performance.")
		return v, nil
	}
	line, err := learn.FitLinear(years, points)
	if err != nil {
		return nil, modelError("fit season points", err)
	}

	latest := years[len(years)-1]
	forecast := domain.ChartSeries{Name: "Predicted Points"}
	rows := make([][]any, 0, env.Config.ForecastHorizon)
	for i := 1; i <= env.Config.ForecastHorizon; i++ {
		year := latest + float64(i)
		predicted := line.Predict(year)
		forecast.Data = append(forecast.Data, xy(year, predicted))
		rows = append(rows, []any{int(year), num(predicted)})
	}
	history := domain.ChartSeries{Name: "Season Points"}
	for i := range years {
		history.Data = append(history.Data, xy(years[i], points[i]))
	}
	addChart(v, chartLine, "Predicted Points for "+name+" in Future Seasons", "Year", "Points", history, forecast)
	addTable(v, "Predicted Future Performance",
		[]domain.Column{integerCol("year", "Year"), numberCol("points", "Predicted Points")}, rows)
	return v, nil
}

// seasonPoints sums results points per season, ordered by year
func seasonPoints(results []domain.Result, raceYears map[int]int) ([]float64, []float64) {
	byYear := make(map[int]float64)
	for _, r := range results {
		if year, ok := raceYears[r.RaceID]; ok {
			byYear[year] += r.Points
		}
	}
	years := make([]float64, 0, len(byYear))
	points := make([]float64, 0, len(byYear))
	for _, y := range sortedKeys(byYear) {
		years = append(years, float64(y))
		points = append(points, byYear[y])
	}
	return years, points
}

// ConsistencyRow is one driver of the consistency ranking
type ConsistencyRow struct {
	DriverID int
	Mean     float64
	Std      float64
	Races    int
}

// Consistency ranks drivers with at least minRaces distinct races by the
// sample deviation of their finishing position, steadiest first
func Consistency(results []domain.Result, minRaces int) []ConsistencyRow {
	positions := make(map[int][]float64)
	races := make(map[int]map[int]struct{})
	for _, r := range results {
		positions[r.DriverID] = append(positions[r.DriverID], r.PositionOrder)
		if races[r.DriverID] == nil {
			races[r.DriverID] = make(map[int]struct{})
		}
		races[r.DriverID][r.RaceID] = struct{}{}
	}

	var rows []ConsistencyRow
	for _, id := range sortedKeys(positions) {
		if len(races[id]) < minRaces {
			continue
		}
		mean, std := learn.MeanStd(positions[id])
		rows = append(rows, ConsistencyRow{DriverID: id, Mean: mean, Std: std, Races: len(races[id])})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Std < rows[j].Std })
	return rows
}

func driverConsistency(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionDriverConsistency, domain.CategoryDriver, "Driver Performance & Consistency Analysis", p)

	results := env.Tables.Results
	if len(results) == 0 {
		warn(v, "No race results available.")
		return v, nil
	}

	ranked := Consistency(results, env.Config.MinConsistencyRaces)
	rows := make([][]any, 0, 10)
	for i, r := range ranked {
		if i == 10 {
			break
		}
		rows = append(rows, []any{env.Tables.DriverName(r.DriverID), num(r.Mean), num(r.Std), r.Races})
	}
	if len(ranked) == 0 {
		warn(v, "No drivers with at least %d races.", env.Config.MinConsistencyRaces)
	}
	addTable(v, "Top 10 Most Consistent Drivers", []domain.Column{
		textCol("driver", "Driver"),
		numberCol("mean_finish", "Mean Finish"),
		numberCol("std_finish", "Std Finish"),
		integerCol("races", "Races"),
	}, rows)

	model, err := env.consistency.get(ctx, env.trainTopFive)
	if errors.Is(err, learn.ErrInsufficientData) {
		info(v, "Not enough results to train the top 5 model.")
		return v, nil
	}
	if err != nil {
		return nil, modelError("train top 5 model", err)
	}

	metric(v, "Model Accuracy", learn.Accuracy(model.observed, model.predicted))
	prediction := model.forest.Predict([]float64{p.Grid, p.Laps, p.Milliseconds})
	if prediction == 1 {
		textMetric(v, "Prediction", "Top 5 Finish", 1)
	} else {
		textMetric(v, "Prediction", "Below Top 5", 0)
	}
	return v, nil
}

// trainTopFive fits the classifier of a top 5 finish from grid, laps and
// race time
func (e *Env) trainTopFive(ctx context.Context) (*trainedModel, error) {
	results := e.Tables.Results
	if len(results) < 2 {
		return nil, learn.ErrInsufficientData
	}
	X := make([][]float64, len(results))
	y := make([]float64, len(results))
	for i, r := range results {
		X[i] = []float64{r.Grid, r.Laps, r.Milliseconds}
		if r.PositionOrder <= 5 {
			y[i] = 1
		}
	}
	return e.trainForest(ctx, X, y, learn.FitClassifier)
}

type fitFunc func(context.Context, [][]float64, []float64, learn.ForestConfig) (*learn.Forest, error)

func (e *Env) trainForest(ctx context.Context, X [][]float64, y []float64, fit fitFunc) (*trainedModel, error) {
	split := learn.TrainTestSplit(len(X), e.Config.TestFraction, e.Config.ForestSeed)
	forest, err := fit(ctx, learn.Rows(X, split.Train), learn.Take(y, split.Train), e.forestConfig())
	if err != nil {
		return nil, err
	}
	return &trainedModel{
		forest:    forest,
		observed:  learn.Take(y, split.Test),
		predicted: forest.PredictAll(learn.Rows(X, split.Test)),
		samples:   len(X),
	}, nil
}

// Pair is an unordered pair of drivers, A < B
type Pair struct {
	A, B int
}

// Record counts the races a pair contested and who finished ahead
type Record struct {
	Races  int
	AAhead int
	BAhead int
}

// HeadToHead counts, for every unordered pair of drivers, the races both
// contested. A driver listed twice in a race counts once, at the better
// finishing position.
func HeadToHead(results []domain.Result) map[Pair]*Record {
	byRace := make(map[int][]domain.Result)
	for _, r := range results {
		byRace[r.RaceID] = append(byRace[r.RaceID], r)
	}

	records := make(map[Pair]*Record)
	for _, entries := range byRace {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].PositionOrder < entries[j].PositionOrder
		})
		order := make([]int, 0, len(entries))
		seen := make(map[int]struct{}, len(entries))
		for _, e := range entries {
			if _, dup := seen[e.DriverID]; dup {
				continue
			}
			seen[e.DriverID] = struct{}{}
			order = append(order, e.DriverID)
		}

		for i := 0; i < len(order); i++ {
			for j := i + 1; j < len(order); j++ {
				ahead, behind := order[i], order[j]
				pair := Pair{A: min(ahead, behind), B: max(ahead, behind)}
				rec, ok := records[pair]
				if !ok {
					rec = &Record{}
					records[pair] = rec
				}
				rec.Races++
				if ahead == pair.A {
					rec.AAhead++
				} else {
					rec.BAhead++
				}
			}
		}
	}
	return records
}

func headToHead(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionHeadToHead, domain.CategoryDriver, "Head-to-Head Driver Analysis", p)
	v.Selectors = append(v.Selectors,
		driverSelector(env, ParamDriver, "First Driver", p.DriverID),
		driverSelector(env, ParamDriverB, "Second Driver", p.DriverB))

	if len(env.Tables.Results) == 0 {
		warn(v, "No race results available.")
		return v, nil
	}

	records := HeadToHead(env.Tables.Results)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(records))
	for pair := range records {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		ri, rj := records[pairs[i]], records[pairs[j]]
		if ri.Races != rj.Races {
			return ri.Races > rj.Races
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	if p.TopN > 0 && len(pairs) > p.TopN {
		pairs = pairs[:p.TopN]
	}

	columns := []domain.Column{
		textCol("driver1", "Driver 1"),
		textCol("driver2", "Driver 2"),
		integerCol("races", "Races Together"),
		integerCol("driver1_ahead", "Driver 1 Ahead"),
		integerCol("driver2_ahead", "Driver 2 Ahead"),
	}
	rows := make([][]any, len(pairs))
	for i, pair := range pairs {
		rec := records[pair]
		rows[i] = []any{env.Tables.DriverName(pair.A), env.Tables.DriverName(pair.B), rec.Races, rec.AAhead, rec.BAhead}
	}
	addTable(v, "Head-to-Head Rivalries", columns, rows)

	first, ok, err := selectDriver(env, v, p.DriverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v, nil
	}
	second, ok, err := selectDriver(env, v, p.DriverB)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v, nil
	}
	if first.ID == second.ID {
		info(v, "Select two different drivers to compare.")
		return v, nil
	}

	pair := Pair{A: min(first.ID, second.ID), B: max(first.ID, second.ID)}
	rec, found := records[pair]
	if !found {
		info(v, "No direct head-to-head data available for %s and %s.", first.FullName(), second.FullName())
		return v, nil
	}

	firstAhead, secondAhead := rec.AAhead, rec.BAhead
	if first.ID != pair.A {
		firstAhead, secondAhead = secondAhead, firstAhead
	}
	countMetric(v, "Races Together", rec.Races)
	countMetric(v, first.FullName()+" Ahead", firstAhead)
	countMetric(v, second.FullName()+" Ahead", secondAhead)
	addTable(v, fmt.Sprintf("Head-to-Head Record between %s and %s", first.FullName(), second.FullName()), columns,
		[][]any{{first.FullName(), second.FullName(), rec.Races, firstAhead, secondAhead}})
	return v, nil
}

func trackStruggles(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionTrackStruggles, domain.CategoryDriver, "Driver Performance on Specific Tracks", p)
	v.Selectors = append(v.Selectors, driverSelector(env, ParamDriver, "Driver", p.DriverID))

	driver, ok, err := selectDriver(env, v, p.DriverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v, nil
	}

	acc := make(map[string]*meanAcc)
	for _, r := range driverResults(env.Tables.Results, driver.ID) {
		race, found := env.Tables.Race(r.RaceID)
		if !found {
			continue
		}
		a, seen := acc[race.Name]
		if !seen {
			a = &meanAcc{}
			acc[race.Name] = a
		}
		a.add(r.PositionOrder)
	}
	if len(acc) == 0 {
		warn(v, "No race results found for %s.", driver.FullName())
		return v, nil
	}

	tracks := make([]string, 0, len(acc))
	for name := range acc {
		tracks = append(tracks, name)
	}
	sort.Strings(tracks)

	series := domain.ChartSeries{Name: "Average Finish Position"}
	rows := make([][]any, len(tracks))
	worst, best := tracks[0], tracks[0]
	for i, name := range tracks {
		mean := acc[name].mean()
		rows[i] = []any{name, num(mean)}
		series.Data = append(series.Data, labelled(name, mean))
		if mean > acc[worst].mean() {
			worst = name
		}
		if mean < acc[best].mean() {
			best = name
		}
	}

	textMetric(v, "Toughest Track", worst, acc[worst].mean())
	textMetric(v, "Best Track", best, acc[best].mean())
	addTable(v, "Performance of "+driver.FullName()+" on Tracks",
		[]domain.Column{textCol("track", "Track"), numberCol("average_finish", "Average Finish Position")}, rows)
	addChart(v, chartBar, "Average Finish Position by Track", "Track", "Average Finish Position", series)
	return v, nil
}
