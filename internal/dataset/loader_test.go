package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "f1insights/internal/errors"
	"f1insights/internal/shared/testutil"
)

func sampleDataset() *testutil.DatasetBuilder {
	return testutil.NewDataset().
		Driver(1, "Lewis", "Hamilton", "1985-01-07").
		Driver(2, "Max", "Verstappen", "1997-09-30").
		Constructor(1, "Mercedes").
		Constructor(9, "Red Bull").
		Race(10, 2021, "Bahrain Grand Prix", "2021-03-28").
		Race(11, 2021, "Monaco Grand Prix", "2021-05-23").
		Result(10, 1, 1, 2, 1, 25).
		Result(10, 2, 9, 1, 2, 18).
		Result(11, 1, 1, 7, 7, 6).
		Result(11, 2, 9, 1, 1, 25).
		DriverStanding(11, 1, 31).
		DriverStanding(11, 2, 43).
		ConstructorStanding(11, 1, 60).
		ConstructorStanding(11, 9, 70).
		LapTime(10, 1, 1, 95000).
		PitStop(10, 1, 1, 23000).
		Qualifying(10, 1, 2)
}

func TestLoadFS(t *testing.T) {
	tables, err := LoadFS(context.Background(), sampleDataset().FS())
	require.NoError(t, err)

	assert.Len(t, tables.Drivers, 2)
	assert.Len(t, tables.Results, 4)
	assert.Len(t, tables.Raw, len(Specs))

	assert.Equal(t, "Lewis Hamilton", tables.DriverName(1))
	assert.Equal(t, "Driver 77", tables.DriverName(77))
	assert.Equal(t, "Red Bull", tables.ConstructorName(9))

	race, ok := tables.Race(11)
	require.True(t, ok)
	assert.Equal(t, 2021, race.Year)
	assert.Equal(t, "Monaco Grand Prix", race.Name)

	res := tables.Results[1]
	assert.Equal(t, 10, res.RaceID)
	assert.Equal(t, 9, res.ConstructorID)
	assert.Equal(t, 18.0, res.Points)
	assert.Equal(t, 5400000.0, res.Milliseconds)

	assert.Equal(t, 23000.0, tables.PitStops[0].Milliseconds)
	assert.Equal(t, 2.0, tables.Qualifying[0].Position)
}

func TestLoadFromDirectory(t *testing.T) {
	dir := sampleDataset().WriteDir(t)

	tables, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, tables.Races, 2)

	summaries := tables.Summaries()
	require.Len(t, summaries, len(Specs))
	assert.Equal(t, Drivers, summaries[0].Name)
	assert.Equal(t, 2, summaries[0].Rows)
	assert.Contains(t, summaries[2].Numeric, "points")
}

func TestLoadEmptyDataset(t *testing.T) {
	tables, err := LoadFS(context.Background(), testutil.NewDataset().FS())
	require.NoError(t, err)
	assert.Empty(t, tables.Results)
	assert.Empty(t, tables.Drivers)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir()+"/absent")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
}

func TestLoadMissingFile(t *testing.T) {
	for _, spec := range Specs {
		t.Run(spec.Name, func(t *testing.T) {
			_, err := LoadFS(context.Background(), sampleDataset().Without(spec.Name).FS())
			require.Error(t, err)
			assert.True(t, IsMissingFile(err))

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
			assert.Equal(t, spec.Name, appErr.Context["dataset"])
		})
	}
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	fsys := sampleDataset().
		Raw(Races, []string{"raceId", "name"}, []string{"1", "Bahrain Grand Prix"}).
		FS()

	_, err := LoadFS(context.Background(), fsys)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, Races, schemaErr.Dataset)
	assert.Equal(t, "year", schemaErr.Column)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
}

func TestLoadNonNumericRequiredColumn(t *testing.T) {
	fsys := sampleDataset().
		Raw(Races, []string{"raceId", "year", "name"},
			[]string{"1", "twenty-twenty", "Bahrain Grand Prix"}).
		FS()

	_, err := LoadFS(context.Background(), fsys)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "year", schemaErr.Column)
}

func TestLoadOptionalColumnsDefault(t *testing.T) {
	fsys := sampleDataset().
		Raw(Qualifying, []string{"raceId", "driverId", "position"}, []string{"10", "1", "3"}).
		FS()

	tables, err := LoadFS(context.Background(), fsys)
	require.NoError(t, err)
	require.Len(t, tables.Qualifying, 1)
	assert.Zero(t, tables.Qualifying[0].ConstructorID)
	assert.Equal(t, 3.0, tables.Qualifying[0].Position)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadFS(ctx, sampleDataset().FS())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFillsMissingValues(t *testing.T) {
	fsys := sampleDataset().
		Raw(Results,
			[]string{"raceId", "driverId", "constructorId", "grid", "positionOrder", "points", "laps", "milliseconds"},
			[]string{"10", "1", "1", "1", "1", "25", "50", `\N`},
			[]string{"10", "2", "9", "2", "2", "18", "50", "5000"},
			[]string{"10", "3", "9", "3", "3", "15", "50", "7000"},
		).
		FS()

	tables, err := LoadFS(context.Background(), fsys)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, tables.Results[0].Milliseconds)
}
