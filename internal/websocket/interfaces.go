package websocket

import (
	"context"
	"net"
	"time"

	"f1insights/pkg/contracts/domain"
)

// Connection is the subset of *websocket.Conn a client uses.
// Tests substitute a mock.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() net.Addr
}

// AnalyticsService is what a session needs to navigate and run actions
type AnalyticsService interface {
	Menu() []domain.MenuGroup
	Defaults(ctx context.Context, action string) (domain.AnalyticsParams, error)
	Run(ctx context.Context, action string, p domain.AnalyticsParams) (*domain.View, error)
}

// ParamsValidator checks a selection sent by the dashboard
type ParamsValidator interface {
	ValidateParams(p domain.AnalyticsParams) error
}
