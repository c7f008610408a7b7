package websocket

import (
	"context"
	"fmt"
	"sync"

	"f1insights/internal/analytics"
	"f1insights/internal/services"
	"f1insights/pkg/contracts/domain"
)

// fakeService serves views that echo their params. Defaults differ per action.
type fakeService struct {
	mu       sync.Mutex
	defaults map[string]domain.AnalyticsParams
	runErr   error
	runs     []domain.AnalyticsParams
}

func newFakeService() *fakeService {
	return &fakeService{
		defaults: map[string]domain.AnalyticsParams{
			analytics.ActionDriverPerformance: {DriverID: 1},
			analytics.ActionHeadToHead:        {DriverID: 1, DriverB: 2, TopN: 20},
			analytics.ActionTeamPerformance:   {ConstructorID: 9},
			analytics.ActionQualifyingVsRace:  {QualifyingPosition: 5},
		},
	}
}

func (f *fakeService) Menu() []domain.MenuGroup {
	return analytics.Menu()
}

func (f *fakeService) Defaults(ctx context.Context, action string) (domain.AnalyticsParams, error) {
	p, ok := f.defaults[action]
	if !ok {
		return domain.AnalyticsParams{}, fmt.Errorf("%q: %w", action, services.ErrUnknownAction)
	}
	return p, nil
}

func (f *fakeService) Run(ctx context.Context, action string, p domain.AnalyticsParams) (*domain.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, p)
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &domain.View{Action: action, Title: action, Params: p}, nil
}

func (f *fakeService) lastRun() domain.AnalyticsParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[len(f.runs)-1]
}

func (f *fakeService) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}
