package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"f1insights/pkg/contracts/domain"
)

func forecastView() *domain.View {
	return &domain.View{
		Action:   "season-forecast",
		Title:    "Season Forecast for 2025",
		Category: domain.CategoryPredictions,
		Messages: []domain.Message{{Level: domain.LevelInfo, Text: "Forecast uses 6 seasons."}},
		Metrics:  []domain.Metric{{Label: "Predicted Driver Champion", Value: "Max Verstappen"}},
		Tables: []domain.TableData{
			standingsTable(),
			{
				Title:   "Predicted Constructor Standings",
				Columns: []domain.Column{{Key: "team", Label: "Team"}, {Key: "points", Label: "Points"}},
				Rows:    [][]any{{"Red Bull", 612.0}},
			},
		},
	}
}

func TestXLSXWriter_WriteView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter().WriteView(&buf, forecastView()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Predicted Driver Standings", "Predicted Constructor Standings"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Season Forecast for 2025"}, summary[0])
	assert.Contains(t, summary, []string{"Predicted Driver Champion", "Max Verstappen"})
	assert.Contains(t, summary, []string{"info", "Forecast uses 6 seasons."})

	rows, err := f.GetRows("Predicted Driver Standings")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Rank", "Driver", "Points"}, rows[0])
	assert.Equal(t, []string{"1", "Max Verstappen", "437.5"}, rows[1])
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"summary": true}

	assert.Equal(t, "Top 10 - Drivers", sheetName("Top 10 / Drivers", 0, used))
	assert.Equal(t, "Table 2", sheetName("  ", 1, used))
	assert.Equal(t, "Summary (2)", sheetName("Summary", 2, used))
	assert.Equal(t, "SUMMARY (3)", sheetName("SUMMARY", 3, used))

	long := strings.Repeat("x", 40)
	first := sheetName(long, 4, used)
	second := sheetName(long, 5, used)
	assert.Len(t, first, maxSheetName)
	assert.Len(t, second, maxSheetName)
	assert.True(t, strings.HasSuffix(second, " (2)"))
}
