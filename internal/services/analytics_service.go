package services

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"f1insights/internal/analytics"
	"f1insights/internal/config"
	"f1insights/internal/dataset"
	"f1insights/internal/infrastructure"
	"f1insights/pkg/contracts/domain"
)

// TracerName names the spans opened by the service layer
const TracerName = "f1insights/services"

// AnalyticsService owns the loaded dataset and runs analytics actions
// against it. It is safe for concurrent use; a reload swaps the dataset
// atomically for subsequent requests.
type AnalyticsService struct {
	cfg     config.AnalyticsConfig
	logger  *slog.Logger
	metrics *infrastructure.AnalyticsMetrics
	tracer  trace.Tracer

	mu       sync.RWMutex
	env      *analytics.Env
	loadedAt time.Time
	source   string
}

// NewAnalyticsService creates a service with no dataset attached. metrics
// may be nil.
func NewAnalyticsService(cfg config.AnalyticsConfig, logger *slog.Logger, metrics *infrastructure.AnalyticsMetrics) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "analytics_service")),
		metrics: metrics,
		tracer:  otel.Tracer(TracerName),
	}
}

// Load reads the dataset directory and attaches it
func (s *AnalyticsService) Load(ctx context.Context, dir string) error {
	ctx, span := s.tracer.Start(ctx, "dataset.load", trace.WithAttributes(attribute.String("dataset.dir", dir)))
	defer span.End()

	tables, err := dataset.Load(infrastructure.WithLogger(ctx, s.logger), dir)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("load dataset: %w", err)
	}
	s.attach(ctx, tables, dir)
	return nil
}

// LoadFS is Load over an arbitrary file system
func (s *AnalyticsService) LoadFS(ctx context.Context, fsys fs.FS) error {
	ctx, span := s.tracer.Start(ctx, "dataset.load")
	defer span.End()

	tables, err := dataset.LoadFS(infrastructure.WithLogger(ctx, s.logger), fsys)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("load dataset: %w", err)
	}
	s.attach(ctx, tables, "fs")
	return nil
}

func (s *AnalyticsService) attach(ctx context.Context, tables *dataset.Tables, source string) {
	env := analytics.NewEnv(tables, s.cfg)

	s.mu.Lock()
	s.env = env
	s.loadedAt = time.Now()
	s.source = source
	s.mu.Unlock()

	for _, summary := range tables.Summaries() {
		infrastructure.RecordDatasetRows(ctx, s.metrics, summary.Name, summary.Rows)
	}
	s.logger.InfoContext(ctx, "dataset attached",
		slog.String("source", source),
		slog.Int("drivers", len(tables.Drivers)),
		slog.Int("results", len(tables.Results)))
}

// Ready reports whether a dataset is attached
func (s *AnalyticsService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env != nil
}

// LoadedAt returns when the current dataset was attached and where it came from
func (s *AnalyticsService) LoadedAt() (time.Time, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt, s.source
}

func (s *AnalyticsService) current() (*analytics.Env, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.env, nil
}

// Menu returns the navigation menu
func (s *AnalyticsService) Menu() []domain.MenuGroup {
	return analytics.Menu()
}

// Datasets describes the loaded tables
func (s *AnalyticsService) Datasets(ctx context.Context) ([]domain.DatasetSummary, error) {
	env, err := s.current()
	if err != nil {
		return nil, err
	}
	return env.Tables.Summaries(), nil
}

// Drivers lists the driver selector options sorted by name
func (s *AnalyticsService) Drivers(ctx context.Context) ([]domain.Option, error) {
	env, err := s.current()
	if err != nil {
		return nil, err
	}
	drivers := env.Tables.DriversByName()
	out := make([]domain.Option, len(drivers))
	for i, d := range drivers {
		out[i] = domain.Option{Value: d.ID, Label: d.FullName()}
	}
	return out, nil
}

// Constructors lists the constructor selector options sorted by name
func (s *AnalyticsService) Constructors(ctx context.Context) ([]domain.Option, error) {
	env, err := s.current()
	if err != nil {
		return nil, err
	}
	constructors := env.Tables.ConstructorsByName()
	out := make([]domain.Option, len(constructors))
	for i, c := range constructors {
		out[i] = domain.Option{Value: c.ID, Label: c.Name}
	}
	return out, nil
}

// Defaults returns the initial selection of an action
func (s *AnalyticsService) Defaults(ctx context.Context, action string) (domain.AnalyticsParams, error) {
	a, ok := analytics.Lookup(action)
	if !ok {
		return domain.AnalyticsParams{}, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	env, err := s.current()
	if err != nil {
		return domain.AnalyticsParams{}, err
	}
	return a.Defaults(env), nil
}

// Run executes an action with the given selection
func (s *AnalyticsService) Run(ctx context.Context, action string, p domain.AnalyticsParams) (*domain.View, error) {
	a, ok := analytics.Lookup(action)
	if !ok {
		return nil, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	env, err := s.current()
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "analytics."+action,
		trace.WithAttributes(
			attribute.String("analytics.action", action),
			attribute.String("analytics.category", string(a.Category)),
		))
	defer span.End()

	start := time.Now()
	view, err := a.Run(ctx, env, p)
	duration := time.Since(start)
	infrastructure.RecordAnalyticsRun(ctx, s.metrics, action, duration, err)

	logger := s.logger.With(slog.String("action", action))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		logger.WarnContext(ctx, "analytics action failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, fmt.Errorf("run %s: %w", action, err)
	}

	span.SetAttributes(
		attribute.Int("analytics.tables", len(view.Tables)),
		attribute.Int("analytics.charts", len(view.Charts)),
		attribute.Int("analytics.messages", len(view.Messages)),
	)
	logger.DebugContext(ctx, "analytics action completed",
		slog.Duration("duration", duration))
	return view, nil
}
