package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"f1insights/internal/config"
	apierrors "f1insights/internal/errors"
	"f1insights/internal/exporter"
	"f1insights/internal/infrastructure"
	customMiddleware "f1insights/internal/middleware"
	"f1insights/internal/services"
	handlers "f1insights/internal/transport/http"
	ws "f1insights/internal/websocket"
	"f1insights/pkg/contracts"
)

// AppName is shown in startup logs
const AppName = "F1 Insights"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.AnalyticsMetrics
	Analytics     *services.AnalyticsService
	Health        *services.HealthService
	WebSocketHub  *ws.Hub
	Exporter      *exporter.Exporter
	FrontendFS    fs.FS

	validator     *customMiddleware.ValidationMiddleware
	errorHandler  *apierrors.ErrorHandler
	systemMetrics *infrastructure.SystemMetricsCollector
}

// NewApplication loads configuration, initializes logging and builds the
// application
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, frontendFS)
}

// New wires every component for cfg. The dataset is not loaded until
// Start or LoadDataset.
func New(cfg *config.Config, logger *slog.Logger, frontendFS fs.FS) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("data_format", contracts.DataFormatVersion))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.FromTelemetryConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	// Disabled exporters leave the global no-op implementations in place
	if otelProviders.Tracer == nil {
		otelProviders.Tracer = otel.Tracer(infrastructure.ServiceName)
	}
	if otelProviders.Meter == nil {
		otelProviders.Meter = otel.Meter(infrastructure.MeterName)
	}

	metrics, err := infrastructure.CreateAnalyticsMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		FrontendFS:    frontendFS,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.errorHandler = apierrors.NewErrorHandler(a.Logger, false)
	a.validator = customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler)
	a.Exporter = exporter.New(a.Logger)

	a.Analytics = services.NewAnalyticsService(a.Config.Analytics, a.Logger, a.Metrics)

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Logger, wsMetrics)

	a.Health = services.NewHealthService(
		contracts.Version,
		contracts.BuildTime,
		a.Analytics,
		a.WebSocketHub,
		a.Logger,
	)

	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 15*time.Second)
	if err != nil {
		return fmt.Errorf("failed to create system metrics collector: %w", err)
	}
	a.systemMetrics = collector

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Order: RequestID, RealIP, OTel, Logger, Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// The upgrade needs the raw connection, so it stays clear of the
	// header and compression middleware below
	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Analytics, a.validator, ws.HandlerOptions{
		WebSocket:      a.Config.WebSocket,
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		RequestTimeout: a.Config.Server.RequestTimeout,
	}, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(a.Analytics, a.validator, a.Exporter, a.Logger, a.errorHandler)
	clientLogHandler := handlers.NewClientLogHandler(a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Post("/client-log", clientLogHandler.Handle)

		r.Mount("/", analyticsHandler.Routes())
	})
}

// setupFrontendRoutes serves the embedded dashboard page
func (a *Application) setupFrontendRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("No frontend embedded, serving the API only")
		return
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		r.Get("/", handlers.ServeMainApp(a.FrontendFS))
		r.Get("/*", handlers.ServeStatic(a.FrontendFS))
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := append([]string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}, a.Config.Security.AllowedOrigins...)

	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			"X-Requested-With",
		},
		ExposedHeaders: []string{customMiddleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// LoadDataset reads the configured data directory into the analytics service.
// A missing or malformed file fails the whole load.
func (a *Application) LoadDataset(ctx context.Context) error {
	paths, err := a.Config.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	start := time.Now()
	if err := a.Analytics.Load(ctx, paths.DataDir); err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "Dataset loaded",
		slog.String("data_dir", paths.DataDir),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Start loads the dataset and starts the background services and the server
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	if err := a.LoadDataset(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	a.WebSocketHub.Start()
	go a.systemMetrics.Start(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Sessions are hijacked connections that Shutdown does not track
	a.WebSocketHub.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.systemMetrics.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck checks the data and log directories before the
// dataset is loaded
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	paths, err := a.Config.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	var warnings []string

	if !config.FileExists(paths.DataDir) {
		warnings = append(warnings, fmt.Sprintf("data directory not found: %s", paths.DataDir))
	}

	if a.Config.Logging.Output != "console" {
		testFile := filepath.Join(paths.LogsDir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("logs directory not writable: %s", paths.LogsDir))
		} else {
			os.Remove(testFile)
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed",
		slog.String("data_dir", paths.DataDir))
	return nil
}
