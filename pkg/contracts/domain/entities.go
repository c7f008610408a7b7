package domain

// Driver identifies a competitor
type Driver struct {
	ID          int    `json:"driver_id"`
	Ref         string `json:"driver_ref,omitempty"`
	Code        string `json:"code,omitempty"`
	Forename    string `json:"forename"`
	Surname     string `json:"surname"`
	DOB         string `json:"dob"`
	Nationality string `json:"nationality,omitempty"`
}

// FullName returns "Forename Surname"
func (d Driver) FullName() string {
	return d.Forename + " " + d.Surname
}

// Constructor identifies a team
type Constructor struct {
	ID          int    `json:"constructor_id"`
	Ref         string `json:"constructor_ref,omitempty"`
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
}

// Race is a single grand prix within a season
type Race struct {
	ID        int    `json:"race_id"`
	Year      int    `json:"year"`
	Round     int    `json:"round"`
	CircuitID int    `json:"circuit_id,omitempty"`
	Name      string `json:"name"`
	Date      string `json:"date,omitempty"`
}

// Result is one classified entry of a driver in a race
type Result struct {
	ID            int     `json:"result_id,omitempty"`
	RaceID        int     `json:"race_id"`
	DriverID      int     `json:"driver_id"`
	ConstructorID int     `json:"constructor_id"`
	Grid          float64 `json:"grid"`
	PositionOrder float64 `json:"position_order"`
	Points        float64 `json:"points"`
	Laps          float64 `json:"laps"`
	Milliseconds  float64 `json:"milliseconds"`
	StatusID      int     `json:"status_id,omitempty"`
}

// DriverStanding is the cumulative championship snapshot of a driver after a race
type DriverStanding struct {
	ID       int     `json:"driver_standings_id,omitempty"`
	RaceID   int     `json:"race_id"`
	DriverID int     `json:"driver_id"`
	Points   float64 `json:"points"`
	Position float64 `json:"position"`
	Wins     float64 `json:"wins"`
}

// ConstructorStanding is the cumulative championship snapshot of a team after a race
type ConstructorStanding struct {
	ID            int     `json:"constructor_standings_id,omitempty"`
	RaceID        int     `json:"race_id"`
	ConstructorID int     `json:"constructor_id"`
	Points        float64 `json:"points"`
	Position      float64 `json:"position"`
	Wins          float64 `json:"wins"`
}

// LapTime is a single lap of a driver in a race
type LapTime struct {
	RaceID       int     `json:"race_id"`
	DriverID     int     `json:"driver_id"`
	Lap          int     `json:"lap"`
	Position     float64 `json:"position"`
	Milliseconds float64 `json:"milliseconds"`
}

// PitStop is a single stop of a driver in a race
type PitStop struct {
	RaceID       int     `json:"race_id"`
	DriverID     int     `json:"driver_id"`
	Stop         int     `json:"stop"`
	Lap          int     `json:"lap"`
	Milliseconds float64 `json:"milliseconds"`
}

// Qualifying is the qualifying classification of a driver for a race
type Qualifying struct {
	ID            int     `json:"qualify_id,omitempty"`
	RaceID        int     `json:"race_id"`
	DriverID      int     `json:"driver_id"`
	ConstructorID int     `json:"constructor_id,omitempty"`
	Position      float64 `json:"position"`
}
