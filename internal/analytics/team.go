package analytics

import (
	"context"
	"sort"
	"strconv"

	"f1insights/pkg/contracts/domain"
)

func teamPerformance(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionTeamPerformance, domain.CategoryTeam, "Team Performance Analysis", p)
	v.Selectors = append(v.Selectors, constructorSelector(env, p.ConstructorID))

	team, ok, err := selectConstructor(env, v, p.ConstructorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v, nil
	}

	var acc meanAcc
	var rows [][]any
	series := domain.ChartSeries{Name: "Finishing Position"}
	for _, r := range env.Tables.Results {
		if r.ConstructorID != team.ID {
			continue
		}
		acc.add(r.PositionOrder)
		race, found := env.Tables.Race(r.RaceID)
		if !found {
			continue
		}
		rows = append(rows, []any{race.Name, int(r.PositionOrder)})
		series.Data = append(series.Data, labelled(race.Name, r.PositionOrder))
	}
	if acc.n == 0 {
		warn(v, "No race results found for %s.", team.Name)
		return v, nil
	}

	metric(v, "Average Finishing Position", acc.mean())
	addTable(v, "Race Results",
		[]domain.Column{textCol("race", "Race Name"), integerCol("position", "Finishing Position")}, rows)
	addChart(v, chartLine, team.Name+" Finishing Positions Over the Season", "Race", "Finishing Position", series)
	return v, nil
}

// LineupRow is a driver's average standings points per race entered
type LineupRow struct {
	DriverID      int
	PointsPerRace float64
}

// RankLineup divides each driver's summed standings points by their distinct
// races in results. Drivers missing from either table are left out. The
// ranking is best first, ties by driver id.
func RankLineup(results []domain.Result, standings []domain.DriverStanding) []LineupRow {
	races := make(map[int]map[int]struct{})
	for _, r := range results {
		if races[r.DriverID] == nil {
			races[r.DriverID] = make(map[int]struct{})
		}
		races[r.DriverID][r.RaceID] = struct{}{}
	}
	points := make(map[int]float64)
	for _, s := range standings {
		points[s.DriverID] += s.Points
	}

	var rows []LineupRow
	for _, id := range sortedKeys(points) {
		n := len(races[id])
		if n == 0 {
			continue
		}
		rows = append(rows, LineupRow{DriverID: id, PointsPerRace: points[id] / float64(n)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PointsPerRace > rows[j].PointsPerRace })
	return rows
}

func bestTeamLineup(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionBestTeamLineup, domain.CategoryTeam, "Best Team Lineup", p)

	ranked := RankLineup(env.Tables.Results, env.Tables.DriverStandings)
	if len(ranked) == 0 {
		warn(v, "No driver standings or race results available.")
		return v, nil
	}

	info(v, "The following drivers are the best team lineup based on average points per race:")
	for i := 0; i < len(ranked) && i < 2; i++ {
		textMetric(v, "Driver "+strconv.Itoa(i+1), env.Tables.DriverName(ranked[i].DriverID), ranked[i].PointsPerRace)
	}

	var rows [][]any
	for i, r := range ranked {
		if i == p.TopN {
			break
		}
		rows = append(rows, []any{i + 1, env.Tables.DriverName(r.DriverID), num(r.PointsPerRace)})
	}
	addTable(v, "Average Points per Race", []domain.Column{
		integerCol("rank", "Rank"),
		textCol("driver", "Driver"),
		numberCol("points_per_race", "Points per Race"),
	}, rows)
	return v, nil
}

func strugglingTeams(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	v := newView(ActionStrugglingTeams, domain.CategoryTeam, "Struggling Teams Analysis", p)

	means := meanPositionBy(env.Tables.Results, func(r domain.Result) int { return r.ConstructorID })
	if len(means) == 0 {
		warn(v, "No race results available.")
		return v, nil
	}

	ids := sortedKeys(means)
	sort.SliceStable(ids, func(i, j int) bool { return means[ids[i]] > means[ids[j]] })

	worst := ids[0]
	info(v, "Team most likely to underperform based on average finishing position:")
	textMetric(v, "Struggling Team", env.Tables.ConstructorName(worst), means[worst])

	var rows [][]any
	series := domain.ChartSeries{Name: "Average Finish Position"}
	for i, id := range ids {
		if i == p.TopN {
			break
		}
		name := env.Tables.ConstructorName(id)
		rows = append(rows, []any{i + 1, name, num(means[id])})
		series.Data = append(series.Data, labelled(name, means[id]))
	}
	addTable(v, "Average Finishing Position by Team", []domain.Column{
		integerCol("rank", "Rank"),
		textCol("team", "Team"),
		numberCol("average_finish", "Average Finish Position"),
	}, rows)
	addChart(v, chartBar, "Teams with the Worst Average Finish", "Team", "Average Finish Position", series)
	return v, nil
}
