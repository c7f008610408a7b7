package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"f1insights/internal/infrastructure"
)

// DatasetStatus reports whether analytics can be served
type DatasetStatus interface {
	Ready() bool
	LoadedAt() (time.Time, string)
}

// ClientCounter reports the number of connected interactive sessions
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetStatus
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Since   string `json:"since,omitempty"`
}

// NewHealthService creates a health service. clients may be nil when no
// websocket hub is running.
func NewHealthService(version, buildTime string, dataset DatasetStatus, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck reports ready once a dataset is attached
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset":   hs.checkDatasetHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "readiness check failed", slog.String("status", status.Status))
	}
	return status
}

// LivenessCheck returns liveness status with runtime statistics
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.ReadRuntimeStats(hs.startTime)
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   &stats,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil || !hs.dataset.Ready() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "dataset not loaded",
		}
	}

	loadedAt, source := hs.dataset.LoadedAt()
	return ServiceHealth{
		Status:  "ready",
		Message: "dataset loaded from " + source,
		Since:   loadedAt.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{
			Status:  "ready",
			Message: "websocket disabled",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "websocket service is healthy",
		Since:   hs.startTime.Format(time.RFC3339),
	}
}

// DetailedHealth returns every check in one document
func (hs *HealthService) DetailedHealth(ctx context.Context) map[string]interface{} {
	clients := 0
	if hs.clients != nil {
		clients = hs.clients.ClientCount()
	}
	return map[string]interface{}{
		"health":            hs.HealthCheck(ctx),
		"readiness":         hs.ReadinessCheck(ctx),
		"liveness":          hs.LivenessCheck(ctx),
		"websocket_clients": clients,
	}
}
