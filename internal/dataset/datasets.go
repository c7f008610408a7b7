package dataset

// Dataset names, also the CSV base names
const (
	Drivers              = "drivers"
	Constructors         = "constructors"
	Results              = "results"
	Races                = "races"
	PitStops             = "pit_stops"
	LapTimes             = "lap_times"
	DriverStandings      = "driver_standings"
	ConstructorStandings = "constructor_standings"
	Qualifying           = "qualifying"
)

// Spec describes the columns a dataset file must provide
type Spec struct {
	Name string
	// Required columns that must be present
	Required []string
	// Numeric columns that must be numeric after cleaning
	Numeric []string
}

// FileName returns the CSV file name of the dataset
func (s Spec) FileName() string {
	return s.Name + ".csv"
}

// Specs lists the nine datasets in load order
var Specs = []Spec{
	{
		Name:     Drivers,
		Required: []string{"driverId", "forename", "surname", "dob"},
		Numeric:  []string{"driverId"},
	},
	{
		Name:     Constructors,
		Required: []string{"constructorId", "name"},
		Numeric:  []string{"constructorId"},
	},
	{
		Name:     Results,
		Required: []string{"raceId", "driverId", "constructorId", "grid", "positionOrder", "points", "laps", "milliseconds"},
		Numeric:  []string{"raceId", "driverId", "constructorId", "grid", "positionOrder", "points", "laps", "milliseconds"},
	},
	{
		Name:     Races,
		Required: []string{"raceId", "year", "name"},
		Numeric:  []string{"raceId", "year"},
	},
	{
		Name:     PitStops,
		Required: []string{"raceId", "driverId", "stop", "milliseconds"},
		Numeric:  []string{"raceId", "driverId", "stop", "milliseconds"},
	},
	{
		Name:     LapTimes,
		Required: []string{"raceId", "driverId", "lap", "milliseconds"},
		Numeric:  []string{"raceId", "driverId", "lap", "milliseconds"},
	},
	{
		Name:     DriverStandings,
		Required: []string{"raceId", "driverId", "points"},
		Numeric:  []string{"raceId", "driverId", "points"},
	},
	{
		Name:     ConstructorStandings,
		Required: []string{"raceId", "constructorId", "points"},
		Numeric:  []string{"raceId", "constructorId", "points"},
	},
	{
		Name:     Qualifying,
		Required: []string{"raceId", "driverId", "position"},
		Numeric:  []string{"raceId", "driverId", "position"},
	},
}

// SpecFor returns the spec of a dataset by name
func SpecFor(name string) (Spec, bool) {
	for _, s := range Specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Validate checks that a cleaned table satisfies the spec
func (s Spec) Validate(t *Table) error {
	for _, name := range s.Required {
		if _, ok := t.Column(name); !ok {
			return &SchemaError{Dataset: s.Name, Column: name, Reason: "missing required column"}
		}
	}
	for _, name := range s.Numeric {
		c, _ := t.Column(name)
		if !c.Numeric {
			return &SchemaError{Dataset: s.Name, Column: name, Reason: "column is not numeric"}
		}
	}
	return nil
}

// SchemaError reports a dataset that does not match its spec
type SchemaError struct {
	Dataset string
	Column  string
	Reason  string
}

func (e *SchemaError) Error() string {
	return e.Dataset + ": " + e.Reason + " " + e.Column
}
