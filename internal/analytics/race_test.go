package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1insights/internal/shared/testutil"
	"f1insights/pkg/contracts/domain"
)

func TestQualifyingVsRace(t *testing.T) {
	env := loadEnv(t, seasonFixture())

	v := run(t, env, ActionQualifyingVsRace, domain.AnalyticsParams{DriverID: 1})
	for label, want := range map[string]string{
		"Correlation":               "1.00",
		"Coefficient":               "1.00",
		"Intercept":                 "0.00",
		"R-squared":                 "1.00",
		"RMSE":                      "0.00",
		"Predicted Finish from P10": "10.00",
	} {
		got, ok := metricValue(v, label)
		require.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}
	require.Len(t, v.Tables, 1)
	assert.Len(t, v.Tables[0].Rows, 5)
	require.Len(t, v.Charts, 2)
	assert.Len(t, v.Charts[0].Series, 2)
}

func TestQualifyingVsRaceSparse(t *testing.T) {
	b := testutil.NewDataset().
		Driver(1, "Lando", "Norris", "1999-11-13").
		Driver(2, "Logan", "Sargeant", "2000-12-31").
		Constructor(1, "McLaren").
		Race(1, 2024, "Miami Grand Prix", "2024-05-05").
		Race(2, 2024, "Imola Grand Prix", "2024-05-19").
		Result(1, 1, 1, 5, 1, 25).
		Result(2, 1, 1, 1, 2, 18).
		Result(1, 2, 1, 20, 18, 0).
		Qualifying(1, 1, 5).
		Qualifying(2, 1, 1)
	env := loadEnv(t, b)

	v := run(t, env, ActionQualifyingVsRace, domain.AnalyticsParams{DriverID: 1})
	assert.True(t, hasMessage(v, domain.LevelWarning, "Not enough data points for a reliable analysis."))
	require.Len(t, v.Tables, 1)
	assert.Len(t, v.Tables[0].Rows, 2)
	assert.Empty(t, v.Charts)

	v = run(t, env, ActionQualifyingVsRace, domain.AnalyticsParams{DriverID: 2})
	assert.True(t, hasMessage(v, domain.LevelError, "Not enough data available for this driver."))
}

func TestSummarizeStops(t *testing.T) {
	stops := []domain.PitStop{
		{RaceID: 2, DriverID: 1, Stop: 1, Milliseconds: 21000},
		{RaceID: 1, DriverID: 4, Stop: 1, Milliseconds: 20000},
		{RaceID: 2, DriverID: 1, Stop: 2, Milliseconds: 23000},
		{RaceID: 1, DriverID: 3, Stop: 1, Milliseconds: 25000},
	}

	assert.Equal(t, []StopSummary{
		{RaceID: 1, DriverID: 3, Stops: 1, TotalMs: 25000},
		{RaceID: 1, DriverID: 4, Stops: 1, TotalMs: 20000},
		{RaceID: 2, DriverID: 1, Stops: 2, TotalMs: 44000},
	}, SummarizeStops(stops))
	assert.Empty(t, SummarizeStops(nil))
}

func TestPitStopStrategy(t *testing.T) {
	env := loadEnv(t, seasonFixture())

	v := run(t, env, ActionPitStopStrategy, domain.AnalyticsParams{})
	samples, ok := metricValue(v, "Samples")
	require.True(t, ok)
	assert.Equal(t, "36", samples)
	_, ok = metricValue(v, "Predicted Race Finish Position")
	assert.True(t, ok)
	require.Len(t, v.Charts, 3)
	assert.Equal(t, chartHistogram, v.Charts[0].ChartType)

	var counted float64
	for _, p := range v.Charts[0].Series[0].Data {
		counted += p.Value
	}
	assert.Equal(t, 36.0, counted)
}

func TestPitStopModelIsCached(t *testing.T) {
	env := loadEnv(t, seasonFixture())

	first, err := env.pitStops.get(context.Background(), env.trainPitStops)
	require.NoError(t, err)
	second, err := env.pitStops.get(context.Background(), func(context.Context) (*trainedModel, error) {
		t.Fatal("retrained a cached model")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestPitStopsWithoutResults(t *testing.T) {
	env := loadEnv(t, testutil.NewDataset().PitStop(1, 1, 1, 22000))

	v := run(t, env, ActionPitStopStrategy, domain.AnalyticsParams{})
	assert.True(t, hasMessage(v, domain.LevelInfo,
		"Not enough pit stop data joined with race results to train the model."))
	assert.Len(t, v.Charts, 2)
}

func TestLapTimeEfficiency(t *testing.T) {
	env := loadEnv(t, seasonFixture())

	v := run(t, env, ActionLapTimeEfficiency, domain.AnalyticsParams{})
	fastest, _ := metricValue(v, "Fastest Circuit")
	slowest, _ := metricValue(v, "Slowest Circuit")
	assert.Equal(t, "Monaco Grand Prix", fastest)
	assert.Equal(t, "Bahrain Grand Prix", slowest)

	require.Len(t, v.Tables, 1)
	assert.Equal(t, []any{"Monaco Grand Prix", 76.0}, v.Tables[0].Rows[0])
}
