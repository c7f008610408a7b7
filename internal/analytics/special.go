package analytics

import (
	"context"
	"sort"
	"strconv"

	"f1insights/pkg/contracts/domain"
)

// SwapCandidate compares a driver's average finish with their usual team's
type SwapCandidate struct {
	DriverID      int
	ConstructorID int
	DriverMean    float64
	TeamMean      float64
	// Delta is DriverMean minus TeamMean; negative beats the team
	Delta float64
}

// SwapCandidates pairs each driver with their most frequent constructor,
// smallest id on ties, and splits out drivers more than one place better
// or worse than that constructor's average. Outperformers come best first,
// underperformers worst first.
func SwapCandidates(results []domain.Result) (out, under []SwapCandidate) {
	driverMeans := meanPositionBy(results, func(r domain.Result) int { return r.DriverID })
	teamMeans := meanPositionBy(results, func(r domain.Result) int { return r.ConstructorID })

	entries := make(map[int]map[int]int)
	for _, r := range results {
		if entries[r.DriverID] == nil {
			entries[r.DriverID] = make(map[int]int)
		}
		entries[r.DriverID][r.ConstructorID]++
	}

	for _, id := range sortedKeys(driverMeans) {
		team, most := 0, 0
		for _, c := range sortedKeys(entries[id]) {
			if n := entries[id][c]; n > most {
				team, most = c, n
			}
		}
		cand := SwapCandidate{
			DriverID:      id,
			ConstructorID: team,
			DriverMean:    driverMeans[id],
			TeamMean:      teamMeans[team],
		}
		cand.Delta = cand.DriverMean - cand.TeamMean
		switch {
		case cand.Delta < -1:
			out = append(out, cand)
		case cand.Delta > 1:
			under = append(under, cand)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Delta < out[j].Delta })
	sort.SliceStable(under, func(i, j int) bool { return under[i].Delta > under[j].Delta })
	return out, under
}

func driverSwaps(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionDriverSwaps, domain.CategorySpecial, "Hypothetical Driver Swaps", p)

	if len(env.Tables.Results) == 0 {
		warn(v, "No race results available.")
		return v, nil
	}
	out, under := SwapCandidates(env.Tables.Results)
	if len(out) == 0 || len(under) == 0 {
		info(v, "No significant outperformers or underperformers found.")
		return v, nil
	}

	columns := []domain.Column{
		textCol("driver", "Driver"),
		textCol("team", "Usual Team"),
		numberCol("driver_avg", "Driver Avg Finish"),
		numberCol("team_avg", "Team Avg Finish"),
		numberCol("delta", "Delta"),
	}
	addTable(v, "Outperformers", columns, swapRows(env, out))
	addTable(v, "Underperformers", columns, swapRows(env, under))

	best, worst := out[0], under[0]
	success(v, "Swap %s (delta=%.2f) with %s (delta=%.2f)",
		env.Tables.DriverName(best.DriverID), best.Delta,
		env.Tables.DriverName(worst.DriverID), worst.Delta)
	textMetric(v, "Top Outperformer", env.Tables.DriverName(best.DriverID), best.Delta)
	textMetric(v, "Top Underperformer", env.Tables.DriverName(worst.DriverID), worst.Delta)
	return v, nil
}

func swapRows(env *Env, cands []SwapCandidate) [][]any {
	rows := make([][]any, len(cands))
	for i, c := range cands {
		rows[i] = []any{
			env.Tables.DriverName(c.DriverID),
			env.Tables.ConstructorName(c.ConstructorID),
			num(c.DriverMean),
			num(c.TeamMean),
			num(c.Delta),
		}
	}
	return rows
}

// Transition is a driver changing constructor between consecutive races
type Transition struct {
	DriverID int
	RaceID   int
	From     int
	To       int
}

// Transitions walks each driver's races in calendar order (year, date,
// raceId) and emits one transition whenever the constructor differs from the
// previous race. Results of unknown races are skipped. Output is ordered by
// driver, then calendar.
func Transitions(results []domain.Result, races []domain.Race) []Transition {
	calendar := make(map[int]domain.Race, len(races))
	for _, r := range races {
		if _, seen := calendar[r.ID]; !seen {
			calendar[r.ID] = r
		}
	}

	byDriver := make(map[int][]domain.Result)
	for _, r := range results {
		if _, ok := calendar[r.RaceID]; ok {
			byDriver[r.DriverID] = append(byDriver[r.DriverID], r)
		}
	}

	var out []Transition
	for _, id := range sortedKeys(byDriver) {
		entries := byDriver[id]
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := calendar[entries[i].RaceID], calendar[entries[j].RaceID]
			if a.Year != b.Year {
				return a.Year < b.Year
			}
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.ID < b.ID
		})
		for i := 1; i < len(entries); i++ {
			if entries[i].ConstructorID != entries[i-1].ConstructorID {
				out = append(out, Transition{
					DriverID: id,
					RaceID:   entries[i].RaceID,
					From:     entries[i-1].ConstructorID,
					To:       entries[i].ConstructorID,
				})
			}
		}
	}
	return out
}

func driverMovements(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionDriverMovements, domain.CategorySpecial, "Driver Movements Between Teams", p)

	moves := Transitions(env.Tables.Results, env.Tables.Races)
	if len(moves) == 0 {
		fail(v, "No driver transitions found in the data.")
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type pair struct{ from, to int }
	counts := make(map[pair]int)
	fromTeams := make(map[int]struct{})
	toTeams := make(map[int]struct{})
	for _, m := range moves {
		counts[pair{m.From, m.To}]++
		fromTeams[m.From] = struct{}{}
		toTeams[m.To] = struct{}{}
	}
	froms, tos := sortedKeys(fromTeams), sortedKeys(toTeams)

	countMetric(v, "Transitions", len(moves))
	countMetric(v, "Distinct Moves", len(counts))

	columns := []domain.Column{textCol("from", "From \\ To")}
	for _, to := range tos {
		columns = append(columns, integerCol("to_"+strconv.Itoa(to), env.Tables.ConstructorName(to)))
	}
	matrix := make([][]any, 0, len(froms))
	heat := make([]domain.ChartSeries, 0, len(froms))
	for _, from := range froms {
		name := env.Tables.ConstructorName(from)
		row := []any{name}
		series := domain.ChartSeries{Name: name}
		for _, to := range tos {
			n := counts[pair{from, to}]
			row = append(row, n)
			series.Data = append(series.Data, labelled(env.Tables.ConstructorName(to), float64(n)))
		}
		matrix = append(matrix, row)
		heat = append(heat, series)
	}
	addChart(v, chartHeatmap, "Driver Transitions Between Teams", "To Team", "From Team", heat...)
	addTable(v, "Transition Counts", columns, matrix)

	pairs := make([]pair, 0, len(counts))
	for k := range counts {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if counts[pairs[i]] != counts[pairs[j]] {
			return counts[pairs[i]] > counts[pairs[j]]
		}
		if pairs[i].from != pairs[j].from {
			return pairs[i].from < pairs[j].from
		}
		return pairs[i].to < pairs[j].to
	})
	var top [][]any
	for i, k := range pairs {
		if i == 10 {
			break
		}
		top = append(top, []any{env.Tables.ConstructorName(k.from), env.Tables.ConstructorName(k.to), counts[k]})
	}
	addTable(v, "Top 10 Driver Transitions", []domain.Column{
		textCol("from", "From Team"),
		textCol("to", "To Team"),
		integerCol("count", "Number of Transitions"),
	}, top)
	return v, nil
}
