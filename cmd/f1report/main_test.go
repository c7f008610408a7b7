package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"f1insights/internal/shared/testutil"
)

func fixtureDir(t *testing.T) string {
	t.Helper()
	return testutil.NewDataset().
		Driver(1, "Kimi", "Raikkonen", "1979-10-17").
		Driver(4, "Fernando", "Alonso", "1981-07-29").
		Constructor(6, "Ferrari").
		Race(20, 2012, "Bahrain Grand Prix", "2012-04-22").
		Race(21, 2013, "Spanish Grand Prix", "2013-05-12").
		Result(20, 1, 6, 11, 2, 18).
		Result(20, 4, 6, 7, 7, 6).
		Result(21, 1, 6, 4, 2, 18).
		Result(21, 4, 6, 5, 1, 25).
		WriteDir(t)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMenu(t *testing.T) {
	out, err := runCLI(t, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "head-to-head")
	assert.Contains(t, out, "Predictions and Trends")
}

func TestDatasets(t *testing.T) {
	out, err := runCLI(t, "datasets", "--data-dir", fixtureDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "drivers")
	assert.Contains(t, out, "constructor_standings")
}

func TestRun_Table(t *testing.T) {
	out, err := runCLI(t, "run", "head-to-head", "--data-dir", fixtureDir(t), "--driver", "1", "--driver-b", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Head-to-Head")
}

func TestRun_JSON(t *testing.T) {
	out, err := runCLI(t, "run", "head-to-head", "--data-dir", fixtureDir(t), "--json")
	require.NoError(t, err)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &view), out)
	assert.Equal(t, "head-to-head", view["action"])
}

func TestRun_Errors(t *testing.T) {
	dir := fixtureDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown action", args: []string{"run", "fastest-pit-crew", "--data-dir", dir}, want: "unknown action"},
		{name: "out of range", args: []string{"run", "driver-consistency", "--data-dir", dir, "--grid", "99"}, want: "grid must be at most 20"},
		{name: "not a number", args: []string{"run", "driver-performance", "--data-dir", dir, "--driver", "abc"}, want: "driver_id must be a valid integer"},
		{name: "missing action", args: []string{"run"}, want: "accepts 1 arg"},
		{name: "missing data", args: []string{"run", "head-to-head", "--data-dir", filepath.Join(dir, "nope")}, want: "load dataset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExport_XLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "h2h.xlsx")

	stdout, err := runCLI(t, "export", "head-to-head", "--data-dir", fixtureDir(t), "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+out)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())
}

func TestExport_RejectsUnknownExtension(t *testing.T) {
	_, err := runCLI(t, "export", "head-to-head", "--data-dir", fixtureDir(t), "--out", "h2h.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out must end in .xlsx or .csv")
}
