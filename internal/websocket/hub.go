package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"f1insights/internal/infrastructure"
)

// Hub maintains the set of open dashboard sessions
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *OTelMetrics

	totalConnections int64
	messagesSent     int64

	quit     chan struct{}
	running  bool
	stopOnce sync.Once

	reportInterval time.Duration
}

// NewHub creates a hub. A nil metrics records nothing.
func NewHub(logger *slog.Logger, metrics *OTelMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if metrics == nil {
		metrics = noopMetrics()
	}

	return &Hub{
		clients:        make(map[*Client]struct{}),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger.With(slog.String("component", "websocket.hub")),
		metrics:        metrics,
		quit:           make(chan struct{}),
		reportInterval: 30 * time.Second,
	}
}

// Start starts the hub loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub loop. New clients get a connection message and the menu.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.running {
				h.mu.Unlock()
				client.close()
				continue
			}
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.RecordConnection(ctx)
			h.logger.InfoContext(ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			client.Enqueue(newMessage(TypeConnection, map[string]interface{}{
				"status":    "connected",
				"client_id": client.id,
				"trace_id":  client.traceID,
			}))
			client.Enqueue(client.session.Menu())

		case client := <-h.unregister:
			h.remove(client, "client unregistered")

		case <-ticker.C:
			h.mu.RLock()
			active := len(h.clients)
			total := h.totalConnections
			sent := h.messagesSent
			h.mu.RUnlock()

			h.logger.Debug("websocket hub metrics",
				slog.Int("active_clients", active),
				slog.Int64("total_connections", total),
				slog.Int64("broadcast_messages", sent))
		}
	}
}

func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	count := len(h.clients)
	h.mu.Unlock()

	client.close()
	if !ok {
		return
	}

	ctx := client.context()
	duration := time.Since(client.connectedAt)
	h.metrics.RecordDisconnection(ctx, duration)
	h.logger.InfoContext(ctx, reason,
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", duration))
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.close()
	}
}

// Unregister removes a client and stops its write pump
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
		client.close()
	}
}

// Broadcast sends msg to every client and returns how many queued it
func (h *Hub) Broadcast(msg *ServerMessage) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return 0
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range clients {
		if client.enqueueRaw(msg.Type, data) {
			delivered++
		}
	}

	h.mu.Lock()
	h.messagesSent += int64(delivered)
	h.mu.Unlock()

	if delivered < len(clients) {
		h.logger.Warn("some clients missed a broadcast",
			slog.String("type", msg.Type),
			slog.Int("delivered", delivered),
			slog.Int("clients", len(clients)))
	}
	return delivered
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns hub counters for the detailed health report
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":     len(h.clients),
		"total_connections":  h.totalConnections,
		"broadcast_messages": h.messagesSent,
	}
}

// Stop tells every client the server is going away and closes them
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.Broadcast(newMessage(TypeShutdown, map[string]string{"message": "server is shutting down"}))

		h.mu.Lock()
		h.running = false
		close(h.quit)
		clients := make([]*Client, 0, len(h.clients))
		for client := range h.clients {
			clients = append(clients, client)
			delete(h.clients, client)
		}
		h.mu.Unlock()

		for _, client := range clients {
			client.close()
			h.metrics.RecordDisconnection(context.Background(), time.Since(client.connectedAt))
		}
		h.logger.Info("hub stopped", slog.Int("closed_clients", len(clients)))
	})
}
