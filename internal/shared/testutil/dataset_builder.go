package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"
)

// csvFile is one in-memory dataset file
type csvFile struct {
	header []string
	rows   [][]string
}

// DatasetBuilder assembles the nine dataset CSV files for tests. Every file
// starts with its header only, so an empty builder is a valid, empty dataset.
type DatasetBuilder struct {
	files map[string]*csvFile
	order []string
}

// NewDataset creates a builder with header-only files for all datasets
func NewDataset() *DatasetBuilder {
	b := &DatasetBuilder{files: make(map[string]*csvFile)}
	b.set("drivers", "driverId", "driverRef", "code", "forename", "surname", "dob", "nationality")
	b.set("constructors", "constructorId", "constructorRef", "name", "nationality")
	b.set("races", "raceId", "year", "round", "circuitId", "name", "date")
	b.set("results", "resultId", "raceId", "driverId", "constructorId", "grid", "positionOrder", "points", "laps", "milliseconds", "statusId")
	b.set("driver_standings", "driverStandingsId", "raceId", "driverId", "points", "position", "wins")
	b.set("constructor_standings", "constructorStandingsId", "raceId", "constructorId", "points", "position", "wins")
	b.set("lap_times", "raceId", "driverId", "lap", "position", "milliseconds")
	b.set("pit_stops", "raceId", "driverId", "stop", "lap", "milliseconds")
	b.set("qualifying", "qualifyId", "raceId", "driverId", "constructorId", "position")
	return b
}

func (b *DatasetBuilder) set(name string, header ...string) {
	if _, ok := b.files[name]; !ok {
		b.order = append(b.order, name)
	}
	b.files[name] = &csvFile{header: header}
}

func (b *DatasetBuilder) add(name string, cells ...string) *DatasetBuilder {
	f := b.files[name]
	f.rows = append(f.rows, cells)
	return b
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Driver adds a driver row
func (b *DatasetBuilder) Driver(id int, forename, surname, dob string) *DatasetBuilder {
	return b.add("drivers", itoa(id), surname, `\N`, forename, surname, dob, "")
}

// Constructor adds a constructor row
func (b *DatasetBuilder) Constructor(id int, name string) *DatasetBuilder {
	return b.add("constructors", itoa(id), name, name, "")
}

// Race adds a race row
func (b *DatasetBuilder) Race(id, year int, name, date string) *DatasetBuilder {
	return b.add("races", itoa(id), itoa(year), "1", "1", name, date)
}

// Result adds a result with 50 laps and a 90 minute race time
func (b *DatasetBuilder) Result(raceID, driverID, constructorID int, grid, position, points float64) *DatasetBuilder {
	return b.ResultFull(raceID, driverID, constructorID, grid, position, points, 50, 5400000)
}

// ResultFull adds a result with explicit laps and milliseconds
func (b *DatasetBuilder) ResultFull(raceID, driverID, constructorID int, grid, position, points, laps, ms float64) *DatasetBuilder {
	id := len(b.files["results"].rows) + 1
	return b.add("results", itoa(id), itoa(raceID), itoa(driverID), itoa(constructorID),
		ftoa(grid), ftoa(position), ftoa(points), ftoa(laps), ftoa(ms), "1")
}

// DriverStanding adds a driver standings row
func (b *DatasetBuilder) DriverStanding(raceID, driverID int, points float64) *DatasetBuilder {
	id := len(b.files["driver_standings"].rows) + 1
	return b.add("driver_standings", itoa(id), itoa(raceID), itoa(driverID), ftoa(points), "1", "0")
}

// ConstructorStanding adds a constructor standings row
func (b *DatasetBuilder) ConstructorStanding(raceID, constructorID int, points float64) *DatasetBuilder {
	id := len(b.files["constructor_standings"].rows) + 1
	return b.add("constructor_standings", itoa(id), itoa(raceID), itoa(constructorID), ftoa(points), "1", "0")
}

// LapTime adds a lap time row
func (b *DatasetBuilder) LapTime(raceID, driverID, lap int, ms float64) *DatasetBuilder {
	return b.add("lap_times", itoa(raceID), itoa(driverID), itoa(lap), "1", ftoa(ms))
}

// PitStop adds a pit stop row
func (b *DatasetBuilder) PitStop(raceID, driverID, stop int, ms float64) *DatasetBuilder {
	return b.add("pit_stops", itoa(raceID), itoa(driverID), itoa(stop), itoa(stop*10), ftoa(ms))
}

// Qualifying adds a qualifying row
func (b *DatasetBuilder) Qualifying(raceID, driverID int, position float64) *DatasetBuilder {
	id := len(b.files["qualifying"].rows) + 1
	return b.add("qualifying", itoa(id), itoa(raceID), itoa(driverID), "1", ftoa(position))
}

// Raw replaces a file with the given header and rows
func (b *DatasetBuilder) Raw(name string, header []string, rows ...[]string) *DatasetBuilder {
	b.set(name, header...)
	b.files[name].rows = rows
	return b
}

// Without drops a file so loading it fails
func (b *DatasetBuilder) Without(name string) *DatasetBuilder {
	delete(b.files, name)
	return b
}

// Bytes renders one file as CSV
func (b *DatasetBuilder) Bytes(name string) []byte {
	f, ok := b.files[name]
	if !ok {
		return nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(f.header)
	w.WriteAll(f.rows)
	return buf.Bytes()
}

// FS returns the files as an in-memory file system
func (b *DatasetBuilder) FS() fstest.MapFS {
	fsys := make(fstest.MapFS, len(b.files))
	for _, name := range b.order {
		if _, ok := b.files[name]; !ok {
			continue
		}
		fsys[name+".csv"] = &fstest.MapFile{Data: b.Bytes(name), Mode: 0644}
	}
	return fsys
}

// WriteDir writes the files into a fresh temporary directory
func (b *DatasetBuilder) WriteDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range b.FS() {
		if err := os.WriteFile(filepath.Join(dir, name), data.Data, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
