package analytics

import (
	"context"

	"f1insights/pkg/contracts/domain"
)

// Module is the contract of every analytics action
type Module func(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error)

// Action ids
const (
	ActionDriverPerformance     = "driver-performance"
	ActionDriverConsistency     = "driver-consistency"
	ActionHeadToHead            = "head-to-head"
	ActionTrackStruggles        = "track-struggles"
	ActionQualifyingVsRace      = "qualifying-vs-race"
	ActionPitStopStrategy       = "pit-stop-strategy"
	ActionLapTimeEfficiency     = "lap-time-efficiency"
	ActionTeamPerformance       = "team-performance"
	ActionBestTeamLineup        = "best-team-lineup"
	ActionStrugglingTeams       = "struggling-teams"
	ActionSeasonForecast        = "season-forecast"
	ActionChampionshipRetention = "championship-retention"
	ActionChampionAge           = "champion-age"
	ActionDriverSwaps           = "driver-swaps"
	ActionDriverMovements       = "driver-movements"
)

// Selection params an action may read
const (
	ParamDriver       = "driver_id"
	ParamDriverB      = "driver_b"
	ParamConstructor  = "constructor_id"
	ParamGrid         = "grid"
	ParamLaps         = "laps"
	ParamMilliseconds = "milliseconds"
	ParamQualifying   = "qualifying_position"
	ParamStops        = "stops"
	ParamStopSeconds  = "stop_seconds"
	ParamTargetYear   = "target_year"
	ParamTopN         = "top_n"
)

// Action is one entry of the navigation menu
type Action struct {
	ID       string
	Title    string
	Category domain.Category
	// Params lists the selection params the action reads
	Params []string
	// TopN is the default ranking length for actions that read ParamTopN
	TopN int
	run  Module
}

// Run executes the action. Params the action reads and the caller left at
// zero take their defaults first.
func (a Action) Run(ctx context.Context, env *Env, p domain.AnalyticsParams) (*domain.View, error) {
	p = a.fill(env, p)
	return a.run(ctx, env, p)
}

// Defaults returns the initial selection of the action. Navigating to an
// action resets the selection to these values.
func (a Action) Defaults(env *Env) domain.AnalyticsParams {
	return a.fill(env, domain.AnalyticsParams{})
}

// Reads reports whether the action reads the given param
func (a Action) Reads(param string) bool {
	for _, p := range a.Params {
		if p == param {
			return true
		}
	}
	return false
}

func (a Action) fill(env *Env, p domain.AnalyticsParams) domain.AnalyticsParams {
	out := domain.AnalyticsParams{}
	drivers := env.Tables.Drivers
	constructors := env.Tables.Constructors

	for _, param := range a.Params {
		switch param {
		case ParamDriver:
			out.DriverID = p.DriverID
			if out.DriverID == 0 && len(drivers) > 0 {
				out.DriverID = drivers[0].ID
			}
		case ParamDriverB:
			out.DriverB = p.DriverB
			if out.DriverB == 0 && len(drivers) > 1 {
				out.DriverB = drivers[1].ID
			}
		case ParamConstructor:
			out.ConstructorID = p.ConstructorID
			if out.ConstructorID == 0 && len(constructors) > 0 {
				out.ConstructorID = constructors[0].ID
			}
		case ParamGrid:
			out.Grid = orDefault(p.Grid, 10)
		case ParamLaps:
			out.Laps = orDefault(p.Laps, 50)
		case ParamMilliseconds:
			out.Milliseconds = orDefault(p.Milliseconds, 100000)
		case ParamQualifying:
			out.QualifyingPosition = orDefault(p.QualifyingPosition, 10)
		case ParamStops:
			stops := 2
			if p.Stops != nil {
				stops = *p.Stops
			}
			out.Stops = &stops
		case ParamStopSeconds:
			seconds := 60.0
			if p.StopSeconds != nil {
				seconds = *p.StopSeconds
			}
			out.StopSeconds = &seconds
		case ParamTargetYear:
			out.TargetYear = p.TargetYear
			if out.TargetYear == 0 {
				out.TargetYear = env.Config.TargetYear
			}
		case ParamTopN:
			out.TopN = p.TopN
			if out.TopN <= 0 {
				out.TopN = a.TopN
			}
			if out.TopN <= 0 {
				out.TopN = env.Config.HeadToHeadTopN
			}
		}
	}
	return out
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

var actions = []Action{
	{ID: ActionDriverPerformance, Title: "Driver Performance", Category: domain.CategoryDriver,
		Params: []string{ParamDriver}, run: driverPerformance},
	{ID: ActionDriverConsistency, Title: "Driver Consistency", Category: domain.CategoryDriver,
		Params: []string{ParamGrid, ParamLaps, ParamMilliseconds}, run: driverConsistency},
	{ID: ActionHeadToHead, Title: "Head-to-Head Analysis", Category: domain.CategoryDriver,
		Params: []string{ParamDriver, ParamDriverB, ParamTopN}, run: headToHead},
	{ID: ActionTrackStruggles, Title: "Driver Track Struggles", Category: domain.CategoryDriver,
		Params: []string{ParamDriver}, run: trackStruggles},

	{ID: ActionQualifyingVsRace, Title: "Qualifying vs Race Performance", Category: domain.CategoryRace,
		Params: []string{ParamDriver, ParamQualifying}, run: qualifyingVsRace},
	{ID: ActionPitStopStrategy, Title: "Pit Stop Strategies", Category: domain.CategoryRace,
		Params: []string{ParamStops, ParamStopSeconds}, run: pitStopStrategy},
	{ID: ActionLapTimeEfficiency, Title: "Lap Time Efficiency", Category: domain.CategoryRace,
		run: lapTimeEfficiency},

	{ID: ActionTeamPerformance, Title: "Team Performance", Category: domain.CategoryTeam,
		Params: []string{ParamConstructor}, run: teamPerformance},
	{ID: ActionBestTeamLineup, Title: "Best Team Lineup", Category: domain.CategoryTeam,
		Params: []string{ParamTopN}, TopN: 10, run: bestTeamLineup},
	{ID: ActionStrugglingTeams, Title: "Struggling Teams", Category: domain.CategoryTeam,
		Params: []string{ParamTopN}, TopN: 10, run: strugglingTeams},

	{ID: ActionSeasonForecast, Title: "Season Forecast", Category: domain.CategoryPredictions,
		Params: []string{ParamTargetYear}, run: seasonForecast},
	{ID: ActionChampionshipRetention, Title: "Championship Retention", Category: domain.CategoryPredictions,
		run: championshipRetention},
	{ID: ActionChampionAge, Title: "Champion Age Trends", Category: domain.CategoryPredictions,
		run: championAge},

	{ID: ActionDriverSwaps, Title: "Hypothetical Driver Swaps", Category: domain.CategorySpecial,
		run: driverSwaps},
	{ID: ActionDriverMovements, Title: "Driver Movements", Category: domain.CategorySpecial,
		run: driverMovements},
}

var categories = []domain.Category{
	domain.CategoryDriver,
	domain.CategoryRace,
	domain.CategoryTeam,
	domain.CategoryPredictions,
	domain.CategorySpecial,
}

// Menu returns the five categories in display order with their actions
func Menu() []domain.MenuGroup {
	groups := make([]domain.MenuGroup, 0, len(categories))
	for _, c := range categories {
		g := domain.MenuGroup{Category: c}
		for _, a := range actions {
			if a.Category == c {
				g.Actions = append(g.Actions, domain.MenuAction{ID: a.ID, Title: a.Title})
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// Lookup resolves an action by id
func Lookup(id string) (Action, bool) {
	for _, a := range actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Actions returns every action in menu order
func Actions() []Action {
	return append([]Action(nil), actions...)
}
