package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1insights/pkg/contracts/domain"
)

func standingsTable() domain.TableData {
	return domain.TableData{
		Title: "Predicted Driver Standings",
		Columns: []domain.Column{
			{Key: "rank", Label: "Rank", Type: "integer"},
			{Key: "driver", Label: "Driver", Type: "text"},
			{Key: "points", Label: "Points", Type: "number"},
		},
		Rows: [][]any{
			{1, "Max Verstappen", 437.5},
			{2, "Lando Norris, Jr.", nil},
			{3, "Charles Leclerc"},
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteTable(&buf, standingsTable(), false))

	assert.Equal(t, [][]string{
		{"Rank", "Driver", "Points"},
		{"1", "Max Verstappen", "437.50"},
		{"2", "Lando Norris, Jr.", ""},
		{"3", "Charles Leclerc", ""},
	}, readCSV(t, buf.Bytes()))
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteTable(&buf, standingsTable(), true))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))
	records := readCSV(t, data[len(utf8BOM):])
	assert.Equal(t, "Rank", records[0][0])
}

func TestCSVWriter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	table := domain.TableData{Title: "Empty", Columns: []domain.Column{{Key: "a", Label: "A"}}}
	require.NoError(t, NewCSVWriter(nil).WriteTable(&buf, table, false))
	assert.Equal(t, "A\n", buf.String())
}

func TestCSVWriter_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	err := NewCSVWriter(nil).WriteFile(path, WriteOptions{
		Headers: []string{"year", "champion"},
		Records: [][]string{{"2021", "Max Verstappen"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "year,champion\n2021,Max Verstappen\n", string(data))
}
