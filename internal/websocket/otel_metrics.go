package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"f1insights/internal/infrastructure"
)

// OTelMetrics records dashboard session activity
type OTelMetrics struct {
	connectionsActive  metric.Int64UpDownCounter
	connectionsTotal   metric.Int64Counter
	connectionDuration metric.Float64Histogram
	messagesTotal      metric.Int64Counter
	messageBytes       metric.Int64Counter
	droppedMessages    metric.Int64Counter
}

// NewOTelMetrics registers the session instruments on meter. The active
// connection gauge is shared with the application metrics.
func NewOTelMetrics(meter metric.Meter, app *infrastructure.AnalyticsMetrics) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	if app != nil {
		m.connectionsActive = app.WebSocketConnections
	}

	var err error
	if m.connectionsActive == nil {
		if m.connectionsActive, err = meter.Int64UpDownCounter(
			"websocket_connections",
			metric.WithDescription("Number of open dashboard sessions"),
		); err != nil {
			return nil, err
		}
	}
	if m.connectionsTotal, err = meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of dashboard sessions opened"),
	); err != nil {
		return nil, err
	}
	if m.connectionDuration, err = meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Duration of dashboard sessions"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.messagesTotal, err = meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Total number of session messages"),
	); err != nil {
		return nil, err
	}
	if m.messageBytes, err = meter.Int64Counter(
		"websocket_message_bytes_total",
		metric.WithDescription("Total bytes of session messages"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.droppedMessages, err = meter.Int64Counter(
		"websocket_dropped_messages_total",
		metric.WithDescription("Messages dropped because a client buffer was full"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// noopMetrics is used when no meter is configured
func noopMetrics() *OTelMetrics {
	m, _ := NewOTelMetrics(noop.NewMeterProvider().Meter("websocket"), nil)
	return m
}

// RecordConnection records a new session
func (m *OTelMetrics) RecordConnection(ctx context.Context) {
	m.connectionsTotal.Add(ctx, 1)
	m.connectionsActive.Add(ctx, 1)
}

// RecordDisconnection records a closed session
func (m *OTelMetrics) RecordDisconnection(ctx context.Context, duration time.Duration) {
	m.connectionsActive.Add(ctx, -1)
	m.connectionDuration.Record(ctx, duration.Seconds())
}

// RecordMessage records one message in direction "in" or "out"
func (m *OTelMetrics) RecordMessage(ctx context.Context, direction, messageType string, size int) {
	attrs := metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("type", messageType),
	)
	m.messagesTotal.Add(ctx, 1, attrs)
	m.messageBytes.Add(ctx, int64(size), attrs)
}

// RecordDroppedMessage records a message that could not be queued
func (m *OTelMetrics) RecordDroppedMessage(ctx context.Context, messageType string) {
	m.droppedMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("type", messageType)))
}
