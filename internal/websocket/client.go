package websocket

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"f1insights/internal/config"
	"f1insights/internal/infrastructure"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outbound messages buffered per client
	sendBufferSize = 64
)

// Client is a middleman between one websocket connection, its session
// and the hub
type Client struct {
	hub     *Hub
	conn    Connection
	session *Session
	metrics *OTelMetrics

	// Buffered channel of outbound messages
	send      chan outbound
	done      chan struct{}
	closeOnce sync.Once

	// Client metadata
	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	maxMessageSize int64
	pongWait       time.Duration
	requestTimeout time.Duration

	logger *slog.Logger

	messagesSent     int64
	messagesReceived int64
	bytesSent        int64
	bytesReceived    int64
}

type outbound struct {
	msgType string
	data    []byte
}

// ClientOptions configures a client
type ClientOptions struct {
	WebSocket      config.WebSocketConfig
	RequestTimeout time.Duration
	TraceID        string
}

// NewClient creates a client for conn driving session
func NewClient(hub *Hub, conn Connection, session *Session, opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if opts.TraceID != "" {
		logger = logger.With(slog.String("trace_id", opts.TraceID))
	}

	pongWait := opts.WebSocket.PongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	maxMessageSize := opts.WebSocket.MaxMessageSize
	if maxMessageSize <= 0 {
		maxMessageSize = 4096
	}
	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	remoteAddr := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remoteAddr = addr.String()
	}

	metrics := noopMetrics()
	if hub != nil && hub.metrics != nil {
		metrics = hub.metrics
	}

	return &Client{
		hub:            hub,
		conn:           conn,
		session:        session,
		metrics:        metrics,
		send:           make(chan outbound, sendBufferSize),
		done:           make(chan struct{}),
		id:             id,
		traceID:        opts.TraceID,
		remoteAddr:     remoteAddr,
		connectedAt:    time.Now(),
		maxMessageSize: maxMessageSize,
		pongWait:       pongWait,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// ID returns the client id
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// close stops the write pump. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Enqueue queues a message for the write pump. A full buffer drops the
// message.
func (c *Client) Enqueue(msg *ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return false
	}
	return c.enqueueRaw(msg.Type, data)
}

func (c *Client) enqueueRaw(msgType string, data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- outbound{msgType: msgType, data: data}:
		return true
	case <-c.done:
		return false
	default:
		c.metrics.RecordDroppedMessage(c.context(), msgType)
		c.logger.Warn("client send buffer full, dropping message",
			slog.String("type", msgType))
		return false
	}
}

// ReadPump reads client messages and applies them to the session in
// order. It returns when the connection fails or closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.logger.InfoContext(ctx, "websocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived),
			slog.Int64("bytes_received", c.bytesReceived))
		if c.hub != nil {
			c.hub.Unregister(c)
		} else {
			c.close()
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.WarnContext(ctx, "unexpected websocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		raw = bytes.TrimSpace(raw)

		c.messagesReceived++
		c.bytesReceived += int64(len(raw))

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.metrics.RecordMessage(ctx, "in", "invalid", len(raw))
			c.Enqueue(newErrorMessage(CodeInvalidMessage, "message is not valid JSON", nil))
			continue
		}
		c.metrics.RecordMessage(ctx, "in", msg.Type, len(raw))

		// Any client message proves the peer is alive
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

		reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		reply := c.session.Handle(reqCtx, msg)
		cancel()

		if reply != nil {
			c.Enqueue(reply)
		}
	}
}

// WritePump writes queued messages and keepalive pings to the connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	ctx := c.context()
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(ctx, "websocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent),
			slog.Int64("bytes_sent", c.bytesSent))
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message.data); err != nil {
				c.logger.WarnContext(ctx, "failed to write message",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++
			c.bytesSent += int64(len(message.data))
			c.metrics.RecordMessage(ctx, "out", message.msgType, len(message.data))

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(ctx, "failed to send ping",
					slog.String("error", err.Error()))
				return
			}

		case <-c.done:
			// Flush what is already queued, then say goodbye
			for {
				select {
				case message := <-c.send:
					if err := c.write(websocket.TextMessage, message.data); err != nil {
						return
					}
					c.messagesSent++
					c.bytesSent += int64(len(message.data))
				default:
					c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
