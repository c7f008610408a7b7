package http

import (
	"context"

	"f1insights/pkg/contracts/domain"
)

// AnalyticsServiceInterface defines the analytics operations the HTTP layer needs
type AnalyticsServiceInterface interface {
	Menu() []domain.MenuGroup
	Datasets(ctx context.Context) ([]domain.DatasetSummary, error)
	Drivers(ctx context.Context) ([]domain.Option, error)
	Constructors(ctx context.Context) ([]domain.Option, error)
	Defaults(ctx context.Context, action string) (domain.AnalyticsParams, error)
	Run(ctx context.Context, action string, p domain.AnalyticsParams) (*domain.View, error)
}

