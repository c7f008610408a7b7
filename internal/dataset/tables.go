package dataset

import (
	"sort"
	"strconv"
	"sync"

	"f1insights/pkg/contracts/domain"
)

// Tables holds the typed entities of the nine datasets. It is immutable after
// construction and safe for concurrent readers.
type Tables struct {
	Drivers              []domain.Driver
	Constructors         []domain.Constructor
	Races                []domain.Race
	Results              []domain.Result
	DriverStandings      []domain.DriverStanding
	ConstructorStandings []domain.ConstructorStanding
	LapTimes             []domain.LapTime
	PitStops             []domain.PitStop
	Qualifying           []domain.Qualifying

	// Raw holds the cleaned tables by dataset name
	Raw map[string]*Table

	indexOnce    sync.Once
	drivers      map[int]int
	constructors map[int]int
	races        map[int]int
}

func (t *Tables) index() {
	t.indexOnce.Do(func() {
		t.drivers = make(map[int]int, len(t.Drivers))
		for i, d := range t.Drivers {
			if _, seen := t.drivers[d.ID]; !seen {
				t.drivers[d.ID] = i
			}
		}
		t.constructors = make(map[int]int, len(t.Constructors))
		for i, c := range t.Constructors {
			if _, seen := t.constructors[c.ID]; !seen {
				t.constructors[c.ID] = i
			}
		}
		t.races = make(map[int]int, len(t.Races))
		for i, r := range t.Races {
			if _, seen := t.races[r.ID]; !seen {
				t.races[r.ID] = i
			}
		}
	})
}

// Driver returns the driver with the given id
func (t *Tables) Driver(id int) (domain.Driver, bool) {
	t.index()
	i, ok := t.drivers[id]
	if !ok {
		return domain.Driver{}, false
	}
	return t.Drivers[i], true
}

// Constructor returns the constructor with the given id
func (t *Tables) Constructor(id int) (domain.Constructor, bool) {
	t.index()
	i, ok := t.constructors[id]
	if !ok {
		return domain.Constructor{}, false
	}
	return t.Constructors[i], true
}

// Race returns the race with the given id
func (t *Tables) Race(id int) (domain.Race, bool) {
	t.index()
	i, ok := t.races[id]
	if !ok {
		return domain.Race{}, false
	}
	return t.Races[i], true
}

// DriverName returns the full name of a driver, or "Driver <id>" when unknown
func (t *Tables) DriverName(id int) string {
	if d, ok := t.Driver(id); ok {
		return d.FullName()
	}
	return "Driver " + strconv.Itoa(id)
}

// ConstructorName returns the name of a constructor, or "Constructor <id>"
func (t *Tables) ConstructorName(id int) string {
	if c, ok := t.Constructor(id); ok {
		return c.Name
	}
	return "Constructor " + strconv.Itoa(id)
}

// DriversByName returns the drivers sorted by surname then forename
func (t *Tables) DriversByName() []domain.Driver {
	out := append([]domain.Driver(nil), t.Drivers...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Surname != out[j].Surname {
			return out[i].Surname < out[j].Surname
		}
		return out[i].Forename < out[j].Forename
	})
	return out
}

// ConstructorsByName returns the constructors sorted by name
func (t *Tables) ConstructorsByName() []domain.Constructor {
	out := append([]domain.Constructor(nil), t.Constructors...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Summaries describes every loaded table in load order
func (t *Tables) Summaries() []domain.DatasetSummary {
	out := make([]domain.DatasetSummary, 0, len(Specs))
	for _, s := range Specs {
		raw, ok := t.Raw[s.Name]
		if !ok {
			continue
		}
		out = append(out, domain.DatasetSummary{
			Name:    s.Name,
			Rows:    raw.Len(),
			Columns: raw.ColumnNames(),
			Numeric: raw.NumericColumns(),
		})
	}
	return out
}

// FromTables converts cleaned, validated tables into typed entities
func FromTables(raw map[string]*Table) *Tables {
	t := &Tables{Raw: raw}

	if tb, ok := raw[Drivers]; ok {
		rows := newRowReader(tb)
		t.Drivers = make([]domain.Driver, tb.Len())
		for i := range t.Drivers {
			t.Drivers[i] = domain.Driver{
				ID:          rows.whole("driverId", i),
				Ref:         rows.text("driverRef", i),
				Code:        rows.text("code", i),
				Forename:    rows.text("forename", i),
				Surname:     rows.text("surname", i),
				DOB:         rows.text("dob", i),
				Nationality: rows.text("nationality", i),
			}
		}
	}

	if tb, ok := raw[Constructors]; ok {
		rows := newRowReader(tb)
		t.Constructors = make([]domain.Constructor, tb.Len())
		for i := range t.Constructors {
			t.Constructors[i] = domain.Constructor{
				ID:          rows.whole("constructorId", i),
				Ref:         rows.text("constructorRef", i),
				Name:        rows.text("name", i),
				Nationality: rows.text("nationality", i),
			}
		}
	}

	if tb, ok := raw[Races]; ok {
		rows := newRowReader(tb)
		t.Races = make([]domain.Race, tb.Len())
		for i := range t.Races {
			t.Races[i] = domain.Race{
				ID:        rows.whole("raceId", i),
				Year:      rows.whole("year", i),
				Round:     rows.whole("round", i),
				CircuitID: rows.whole("circuitId", i),
				Name:      rows.text("name", i),
				Date:      rows.text("date", i),
			}
		}
	}

	if tb, ok := raw[Results]; ok {
		rows := newRowReader(tb)
		t.Results = make([]domain.Result, tb.Len())
		for i := range t.Results {
			t.Results[i] = domain.Result{
				ID:            rows.whole("resultId", i),
				RaceID:        rows.whole("raceId", i),
				DriverID:      rows.whole("driverId", i),
				ConstructorID: rows.whole("constructorId", i),
				Grid:          rows.number("grid", i),
				PositionOrder: rows.number("positionOrder", i),
				Points:        rows.number("points", i),
				Laps:          rows.number("laps", i),
				Milliseconds:  rows.number("milliseconds", i),
				StatusID:      rows.whole("statusId", i),
			}
		}
	}

	if tb, ok := raw[DriverStandings]; ok {
		rows := newRowReader(tb)
		t.DriverStandings = make([]domain.DriverStanding, tb.Len())
		for i := range t.DriverStandings {
			t.DriverStandings[i] = domain.DriverStanding{
				ID:       rows.whole("driverStandingsId", i),
				RaceID:   rows.whole("raceId", i),
				DriverID: rows.whole("driverId", i),
				Points:   rows.number("points", i),
				Position: rows.number("position", i),
				Wins:     rows.number("wins", i),
			}
		}
	}

	if tb, ok := raw[ConstructorStandings]; ok {
		rows := newRowReader(tb)
		t.ConstructorStandings = make([]domain.ConstructorStanding, tb.Len())
		for i := range t.ConstructorStandings {
			t.ConstructorStandings[i] = domain.ConstructorStanding{
				ID:            rows.whole("constructorStandingsId", i),
				RaceID:        rows.whole("raceId", i),
				ConstructorID: rows.whole("constructorId", i),
				Points:        rows.number("points", i),
				Position:      rows.number("position", i),
				Wins:          rows.number("wins", i),
			}
		}
	}

	if tb, ok := raw[LapTimes]; ok {
		rows := newRowReader(tb)
		t.LapTimes = make([]domain.LapTime, tb.Len())
		for i := range t.LapTimes {
			t.LapTimes[i] = domain.LapTime{
				RaceID:       rows.whole("raceId", i),
				DriverID:     rows.whole("driverId", i),
				Lap:          rows.whole("lap", i),
				Position:     rows.number("position", i),
				Milliseconds: rows.number("milliseconds", i),
			}
		}
	}

	if tb, ok := raw[PitStops]; ok {
		rows := newRowReader(tb)
		t.PitStops = make([]domain.PitStop, tb.Len())
		for i := range t.PitStops {
			t.PitStops[i] = domain.PitStop{
				RaceID:       rows.whole("raceId", i),
				DriverID:     rows.whole("driverId", i),
				Stop:         rows.whole("stop", i),
				Lap:          rows.whole("lap", i),
				Milliseconds: rows.number("milliseconds", i),
			}
		}
	}

	if tb, ok := raw[Qualifying]; ok {
		rows := newRowReader(tb)
		t.Qualifying = make([]domain.Qualifying, tb.Len())
		for i := range t.Qualifying {
			t.Qualifying[i] = domain.Qualifying{
				ID:            rows.whole("qualifyId", i),
				RaceID:        rows.whole("raceId", i),
				DriverID:      rows.whole("driverId", i),
				ConstructorID: rows.whole("constructorId", i),
				Position:      rows.number("position", i),
			}
		}
	}

	t.index()
	return t
}

// rowReader reads optional columns, absent ones read as zero values
type rowReader struct {
	cols map[string]*Column
}

func newRowReader(t *Table) rowReader {
	cols := make(map[string]*Column, len(t.Columns))
	for _, c := range t.Columns {
		cols[c.Name] = c
	}
	return rowReader{cols: cols}
}

func (r rowReader) number(name string, i int) float64 {
	if c, ok := r.cols[name]; ok {
		return c.Float(i)
	}
	return 0
}

func (r rowReader) whole(name string, i int) int {
	return int(r.number(name, i))
}

func (r rowReader) text(name string, i int) string {
	if c, ok := r.cols[name]; ok {
		return c.String(i)
	}
	return ""
}
