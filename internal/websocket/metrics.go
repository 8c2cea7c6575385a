package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics exports hub activity through the OTel meter: connection churn,
// connection lifetimes, and broadcast delivery counts. A nil *Metrics is a
// valid no-op recorder, so the hub can run uninstrumented in tests and in
// the CLI.
type Metrics struct {
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram
	broadcastsTotal    metric.Int64Counter
	messagesSent       metric.Int64Counter
	clientsDropped     metric.Int64Counter
}

// NewMetrics creates the hub instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	connectionsTotal, err := meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections accepted"),
	)
	if err != nil {
		return nil, err
	}

	connectionsActive, err := meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Number of currently connected WebSocket clients"),
	)
	if err != nil {
		return nil, err
	}

	connectionDuration, err := meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Lifetime of closed WebSocket connections"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	broadcastsTotal, err := meter.Int64Counter(
		"websocket_broadcasts_total",
		metric.WithDescription("Number of events broadcast to all clients"),
	)
	if err != nil {
		return nil, err
	}

	messagesSent, err := meter.Int64Counter(
		"websocket_messages_sent_total",
		metric.WithDescription("Messages delivered to client send buffers"),
	)
	if err != nil {
		return nil, err
	}

	clientsDropped, err := meter.Int64Counter(
		"websocket_clients_dropped_total",
		metric.WithDescription("Clients disconnected because their send buffer was full"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		connectionsTotal:   connectionsTotal,
		connectionsActive:  connectionsActive,
		connectionDuration: connectionDuration,
		broadcastsTotal:    broadcastsTotal,
		messagesSent:       messagesSent,
		clientsDropped:     clientsDropped,
	}, nil
}

// ClientConnected records a new registration.
func (m *Metrics) ClientConnected(ctx context.Context) {
	if m == nil {
		return
	}
	m.connectionsTotal.Add(ctx, 1)
	m.connectionsActive.Add(ctx, 1)
}

// ClientDisconnected records a closed connection and its lifetime.
func (m *Metrics) ClientDisconnected(ctx context.Context, connectedFor time.Duration) {
	if m == nil {
		return
	}
	m.connectionsActive.Add(ctx, -1)
	m.connectionDuration.Record(ctx, connectedFor.Seconds())
}

// BroadcastSent records one broadcast: how many clients received it and how
// many were dropped for having a full send buffer.
func (m *Metrics) BroadcastSent(ctx context.Context, delivered, dropped int) {
	if m == nil {
		return
	}
	m.broadcastsTotal.Add(ctx, 1)
	if delivered > 0 {
		m.messagesSent.Add(ctx, int64(delivered))
	}
	if dropped > 0 {
		m.clientsDropped.Add(ctx, int64(dropped))
	}
}
