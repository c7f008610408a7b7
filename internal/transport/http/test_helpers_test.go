package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"f1insights/internal/services"
	"f1insights/pkg/contracts/domain"
)

// MockAnalyticsService is a mock implementation of AnalyticsServiceInterface
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Menu() []domain.MenuGroup {
	return m.Called().Get(0).([]domain.MenuGroup)
}

func (m *MockAnalyticsService) Datasets(ctx context.Context) ([]domain.DatasetSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DatasetSummary), args.Error(1)
}

func (m *MockAnalyticsService) Drivers(ctx context.Context) ([]domain.Option, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Option), args.Error(1)
}

func (m *MockAnalyticsService) Constructors(ctx context.Context) ([]domain.Option, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Option), args.Error(1)
}

func (m *MockAnalyticsService) Defaults(ctx context.Context, action string) (domain.AnalyticsParams, error) {
	args := m.Called(action)
	return args.Get(0).(domain.AnalyticsParams), args.Error(1)
}

func (m *MockAnalyticsService) Run(ctx context.Context, action string, p domain.AnalyticsParams) (*domain.View, error) {
	args := m.Called(action, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.View), args.Error(1)
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func (m *MockHealthService) DetailedHealth(ctx context.Context) map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}
