package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of the Go runtime of the process
type RuntimeStats struct {
	Goroutines    int           `json:"goroutines"`
	HeapAllocMB   float64       `json:"heap_alloc_mb"`
	SystemMB      float64       `json:"system_mb"`
	GCCount       uint32        `json:"gc_count"`
	LastGCPause   time.Duration `json:"last_gc_pause_ns"`
	CPUCount      int           `json:"cpu_count"`
	GoVersion     string        `json:"go_version"`
	UptimeSeconds float64       `json:"uptime_seconds"`
}

// ReadRuntimeStats samples the runtime
func ReadRuntimeStats(startTime time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(mem.HeapAlloc) / 1024 / 1024,
		SystemMB:      float64(mem.Sys) / 1024 / 1024,
		GCCount:       mem.NumGC,
		LastGCPause:   time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		CPUCount:      runtime.NumCPU(),
		GoVersion:     runtime.Version(),
		UptimeSeconds: time.Since(startTime).Seconds(),
	}
}

// SystemMetrics publishes runtime stats as OTel gauges
type SystemMetrics struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Float64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
}

// NewSystemMetrics registers the runtime instruments on meter
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Float64Gauge(
		"system_heap_alloc_megabytes",
		metric.WithDescription("Heap memory allocated by the Go runtime"),
		metric.WithUnit("MBy"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"system_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goroutines: goroutines,
		heapAlloc:  heapAlloc,
		gcPause:    gcPause,
		uptime:     uptime,
	}, nil
}

// Record publishes a snapshot
func (sm *SystemMetrics) Record(ctx context.Context, stats RuntimeStats) {
	sm.goroutines.Record(ctx, int64(stats.Goroutines))
	sm.heapAlloc.Record(ctx, stats.HeapAllocMB)
	sm.uptime.Record(ctx, stats.UptimeSeconds)
	if stats.LastGCPause > 0 {
		sm.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}
}

// SystemMetricsCollector samples the runtime on an interval
type SystemMetricsCollector struct {
	metrics   *SystemMetrics
	startTime time.Time
	interval  time.Duration
	stopCh    chan struct{}
}

// NewSystemMetricsCollector creates a collector publishing to meter
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration) (*SystemMetricsCollector, error) {
	metrics, err := NewSystemMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}

	return &SystemMetricsCollector{
		metrics:   metrics,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start collects until Stop is called or ctx is done
func (smc *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(smc.interval)
	defer ticker.Stop()

	smc.metrics.Record(ctx, ReadRuntimeStats(smc.startTime))

	for {
		select {
		case <-ticker.C:
			smc.metrics.Record(ctx, ReadRuntimeStats(smc.startTime))
		case <-smc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the collection loop
func (smc *SystemMetricsCollector) Stop() {
	close(smc.stopCh)
}
