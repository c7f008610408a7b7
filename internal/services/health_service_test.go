package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1insights/internal/shared/testutil"
)

func TestHealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.0", "", nil, nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.0", status.Version)
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name    string
		ready   bool
		want    string
		dataset string
	}{
		{name: "dataset loaded", ready: true, want: "ready", dataset: "ready"},
		{name: "dataset missing", ready: false, want: "not_ready", dataset: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataset := new(MockDatasetStatus)
			dataset.On("Ready").Return(tt.ready)
			if tt.ready {
				dataset.On("LoadedAt").Return(time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC), "data")
			}
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("dev", "", dataset, nil, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			require.Contains(t, status.Services, "dataset")
			assert.Equal(t, tt.dataset, status.Services["dataset"].Status)
			dataset.AssertExpectations(t)
		})
	}
}

func TestReadinessWithoutDataset(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	hs := NewHealthService("dev", "", nil, nil, logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.True(t, logs.ContainsMessage("readiness check failed"))
}

func TestLivenessCheck(t *testing.T) {
	hs := NewHealthService("dev", "", nil, nil, nil)

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	require.NotNil(t, status.Runtime)
	assert.Positive(t, status.Runtime.Goroutines)
}

func TestVersionIncludesBuildTime(t *testing.T) {
	hs := NewHealthService("1.0.0", "2024-05-01T10:00:00Z", nil, nil, nil)

	info := hs.Version()
	assert.Equal(t, "1.0.0", info["version"])
	assert.Equal(t, "2024-05-01T10:00:00Z", info["build_time"])

	info = NewHealthService("1.0.0", "", nil, nil, nil).Version()
	assert.NotContains(t, info, "build_time")
}

func TestDetailedHealthCountsClients(t *testing.T) {
	clients := new(MockClientCounter)
	clients.On("ClientCount").Return(3)
	hs := NewHealthService("dev", "", nil, clients, nil)

	detail := hs.DetailedHealth(context.Background())
	assert.Equal(t, 3, detail["websocket_clients"])
	clients.AssertExpectations(t)
}
