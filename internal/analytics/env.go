package analytics

import (
	"context"
	"sync"

	"f1insights/internal/config"
	"f1insights/internal/dataset"
	"f1insights/internal/learn"
)

// Env is the read-only context shared by every action: the loaded tables,
// the analytics settings and the lazily trained models.
type Env struct {
	Tables *dataset.Tables
	Config config.AnalyticsConfig

	yearsOnce sync.Once
	years     map[int]int

	consistency lazyModel
	pitStops    lazyModel
}

// NewEnv wraps loaded tables. Zero settings take their defaults.
func NewEnv(tables *dataset.Tables, cfg config.AnalyticsConfig) *Env {
	def := config.DefaultAnalytics()
	if cfg.TargetYear == 0 {
		cfg.TargetYear = def.TargetYear
	}
	if cfg.ForecastHorizon <= 0 {
		cfg.ForecastHorizon = def.ForecastHorizon
	}
	if cfg.MinForecastSeasons <= 0 {
		cfg.MinForecastSeasons = def.MinForecastSeasons
	}
	if cfg.MinConsistencyRaces <= 0 {
		cfg.MinConsistencyRaces = def.MinConsistencyRaces
	}
	if cfg.HeadToHeadTopN <= 0 {
		cfg.HeadToHeadTopN = def.HeadToHeadTopN
	}
	if cfg.ForestTrees <= 0 {
		cfg.ForestTrees = def.ForestTrees
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = def.TestFraction
	}
	if tables == nil {
		tables = dataset.FromTables(nil)
	}
	return &Env{Tables: tables, Config: cfg}
}

// raceYears maps raceId to season year
func (e *Env) raceYears() map[int]int {
	e.yearsOnce.Do(func() {
		e.years = make(map[int]int, len(e.Tables.Races))
		for _, r := range e.Tables.Races {
			if _, seen := e.years[r.ID]; !seen {
				e.years[r.ID] = r.Year
			}
		}
	})
	return e.years
}

func (e *Env) forestConfig() learn.ForestConfig {
	return learn.ForestConfig{Trees: e.Config.ForestTrees, Seed: e.Config.ForestSeed}
}

// trainedModel is a fitted forest with its held-out evaluation
type trainedModel struct {
	forest    *learn.Forest
	observed  []float64
	predicted []float64
	samples   int
}

// lazyModel trains once. A failed or cancelled training is retried on the
// next call.
type lazyModel struct {
	mu    sync.Mutex
	model *trainedModel
}

func (m *lazyModel) get(ctx context.Context, train func(context.Context) (*trainedModel, error)) (*trainedModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.model != nil {
		return m.model, nil
	}
	model, err := train(ctx)
	if err != nil {
		return nil, err
	}
	m.model = model
	return model, nil
}
