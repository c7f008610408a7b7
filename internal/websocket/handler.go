package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"f1insights/internal/config"
	"f1insights/internal/infrastructure"
)

// Handler upgrades /ws requests into dashboard sessions
type Handler struct {
	hub            *Hub
	service        AnalyticsService
	validator      ParamsValidator
	upgrader       websocket.Upgrader
	cfg            config.WebSocketConfig
	requestTimeout time.Duration
	logger         *slog.Logger
}

// HandlerOptions configures the upgrade handler
type HandlerOptions struct {
	WebSocket      config.WebSocketConfig
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewHandler creates the upgrade handler
func NewHandler(hub *Hub, service AnalyticsService, validator ParamsValidator, opts HandlerOptions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.handler"))

	h := &Handler{
		hub:            hub,
		service:        service,
		validator:      validator,
		cfg:            opts.WebSocket,
		requestTimeout: opts.RequestTimeout,
		logger:         logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.WebSocket.ReadBufferSize,
		WriteBufferSize: opts.WebSocket.WriteBufferSize,
		CheckOrigin:     h.checkOrigin(opts.AllowedOrigins),
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			logger.WarnContext(r.Context(), "websocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// checkOrigin allows requests without an Origin header, same-host
// requests and the configured origins
func (h *Handler) checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"); strings.EqualFold(host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		h.logger.WarnContext(r.Context(), "websocket origin not allowed",
			slog.String("origin", origin),
			slog.Any("allowed_origins", allowed))
		return false
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := infrastructure.GetTraceID(r.Context())

	h.logger.InfoContext(r.Context(), "websocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request
		return
	}

	// The session outlives the request, keep only its values
	ctx := context.WithoutCancel(r.Context())

	session := NewSession(h.service, h.validator, h.logger)
	client := NewClient(h.hub, conn, session, ClientOptions{
		WebSocket:      h.cfg,
		RequestTimeout: h.requestTimeout,
		TraceID:        traceID,
	}, h.logger)
	h.hub.Register(client)

	go h.guard(ctx, "write pump", client.WritePump)
	go h.guard(ctx, "read pump", func() { client.ReadPump(ctx) })
}

func (h *Handler) guard(ctx context.Context, name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.ErrorContext(ctx, "websocket "+name+" panic",
				slog.Any("panic", rec))
		}
	}()
	fn()
}
