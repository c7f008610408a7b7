package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"f1insights/internal/config"
	"f1insights/internal/dataset"
	"f1insights/internal/shared/testutil"
	"f1insights/pkg/contracts/domain"
)

func testConfig() config.AnalyticsConfig {
	cfg := config.DefaultAnalytics()
	cfg.ForestTrees = 10
	return cfg
}

func loadEnv(t *testing.T, b *testutil.DatasetBuilder) *Env {
	t.Helper()
	tables, err := dataset.LoadFS(context.Background(), b.FS())
	require.NoError(t, err)
	return NewEnv(tables, testConfig())
}

// seasonFixture covers 2016-2021 with two races a season. Hamilton wins
// every race up to 2019, Verstappen from 2020. Leclerc is third throughout
// and moves from Ferrari to Mercedes for 2020.
func seasonFixture() *testutil.DatasetBuilder {
	b := testutil.NewDataset().
		Driver(1, "Lewis", "Hamilton", "1985-01-07").
		Driver(2, "Max", "Verstappen", "1997-09-30").
		Driver(3, "Charles", "Leclerc", "1997-10-16").
		Constructor(1, "Mercedes").
		Constructor(6, "Ferrari").
		Constructor(9, "Red Bull")

	raceID := 0
	for year := 2016; year <= 2021; year++ {
		leader, second := 1, 2
		if year >= 2020 {
			leader, second = 2, 1
		}
		leclercTeam := 6
		if year >= 2020 {
			leclercTeam = 1
		}
		team := map[int]int{1: 1, 2: 9, 3: leclercTeam}

		for _, gp := range []struct{ name, date string }{
			{"Bahrain Grand Prix", fmt.Sprintf("%d-03-28", year)},
			{"Monaco Grand Prix", fmt.Sprintf("%d-05-23", year)},
		} {
			raceID++
			b.Race(raceID, year, gp.name, gp.date)
			b.Result(raceID, leader, team[leader], 1, 1, 25)
			b.Result(raceID, second, team[second], 2, 2, 18)
			b.Result(raceID, 3, team[3], 3, 3, 15)
			for pos, id := range []int{leader, second, 3} {
				b.Qualifying(raceID, id, float64(pos+1))
				b.PitStop(raceID, id, 1, float64(22000+1000*pos))
			}
			b.PitStop(raceID, second, 2, 24000)
		}
		b.DriverStanding(raceID, leader, 50)
		b.DriverStanding(raceID, second, 36)
		b.DriverStanding(raceID, 3, 30)
		b.ConstructorStanding(raceID, team[leader], 80)
		b.ConstructorStanding(raceID, 9, 60)
	}
	b.LapTime(1, 1, 1, 90000).LapTime(1, 2, 1, 92000)
	b.LapTime(2, 1, 1, 75000).LapTime(2, 2, 1, 77000)
	return b
}

func run(t *testing.T, env *Env, id string, p domain.AnalyticsParams) *domain.View {
	t.Helper()
	action, ok := Lookup(id)
	require.True(t, ok, id)
	v, err := action.Run(context.Background(), env, p)
	require.NoError(t, err)
	require.NotNil(t, v)
	return v
}

func metricValue(v *domain.View, label string) (string, bool) {
	for _, m := range v.Metrics {
		if m.Label == label {
			return m.Value, true
		}
	}
	return "", false
}

func hasMessage(v *domain.View, level domain.MessageLevel, text string) bool {
	for _, m := range v.Messages {
		if m.Level == level && m.Text == text {
			return true
		}
	}
	return false
}
