package websocket

import (
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1insights/internal/analytics"
	apierrors "f1insights/internal/errors"
	"f1insights/internal/middleware"
	"f1insights/internal/shared/testutil"
)

type received struct {
	Type    string          `json:"type"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// quietLogger buffers records without t.Logf; pump goroutines may log
// after the test has returned
func quietLogger() *slog.Logger {
	return slog.New(testutil.NewBufferedSlogHandler(nil))
}

func nextMessage(t *testing.T, conn *mockConnection) received {
	t.Helper()
	select {
	case raw := <-conn.written:
		var msg received
		require.NoError(t, json.Unmarshal(raw, &msg), string(raw))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a server message")
		return received{}
	}
}

// connect registers a client over an in-memory connection and starts its pumps
func connect(t *testing.T, hub *Hub, svc *fakeService) (*Client, *mockConnection) {
	t.Helper()
	logger := quietLogger()
	validator := middleware.NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))

	conn := newMockConnection()
	client := NewClient(hub, conn, NewSession(svc, validator, logger), ClientOptions{TraceID: "trace-1"}, logger)
	hub.Register(client)

	go client.WritePump()
	go client.ReadPump(client.context())
	return client, conn
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(quietLogger(), nil)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func TestHub_GreetsNewClients(t *testing.T) {
	hub := newTestHub(t)
	client, conn := connect(t, hub, newFakeService())

	first := nextMessage(t, conn)
	assert.Equal(t, TypeConnection, first.Type)
	var greeting map[string]string
	require.NoError(t, json.Unmarshal(first.Data, &greeting))
	assert.Equal(t, client.ID(), greeting["client_id"])
	assert.Equal(t, "trace-1", greeting["trace_id"])

	assert.Equal(t, TypeMenu, nextMessage(t, conn).Type)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return conn.ReadLimit() == 4096 }, time.Second, 10*time.Millisecond)
}

func TestHub_SelectAndParamsRoundTrip(t *testing.T) {
	hub := newTestHub(t)
	svc := newFakeService()
	_, conn := connect(t, hub, svc)
	nextMessage(t, conn)
	nextMessage(t, conn)

	conn.Push(`{"type":"select","action":"head-to-head"}`)
	view := nextMessage(t, conn)
	require.Equal(t, TypeView, view.Type)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(view.Data, &data))
	assert.Equal(t, analytics.ActionHeadToHead, data["action"])

	conn.Push(`{"type":"params","params":{"driver_id":4,"driver_b":5}}`)
	require.Equal(t, TypeView, nextMessage(t, conn).Type)
	assert.Equal(t, 4, svc.lastRun().DriverID)
	assert.Equal(t, 2, svc.runCount())
}

func TestHub_InvalidJSON(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub, newFakeService())
	nextMessage(t, conn)
	nextMessage(t, conn)

	conn.Push(`{"type":`)
	msg := nextMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, CodeInvalidMessage, msg.Code)

	// The session keeps working after a bad frame
	conn.Push(`{"type":"select","action":"team-performance"}`)
	assert.Equal(t, TypeView, nextMessage(t, conn).Type)
}

func TestHub_HeartbeatGetsNoReply(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub, newFakeService())
	nextMessage(t, conn)
	nextMessage(t, conn)

	conn.Push(`{"type":"heartbeat"}`)
	conn.Push(`{"type":"reset"}`)

	// The first reply belongs to reset
	msg := nextMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, CodeNoSelection, msg.Code)
}

func TestHub_UnregistersOnHangup(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub, newFakeService())
	nextMessage(t, conn)
	nextMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Hangup()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.Stats()["total_connections"])
}

func TestHub_Broadcast(t *testing.T) {
	hub := newTestHub(t)
	_, a := connect(t, hub, newFakeService())
	_, b := connect(t, hub, newFakeService())
	for _, conn := range []*mockConnection{a, b} {
		nextMessage(t, conn)
		nextMessage(t, conn)
	}

	delivered := hub.Broadcast(newMessage(TypeMenu, analytics.Menu()))

	assert.Equal(t, 2, delivered)
	assert.Equal(t, TypeMenu, nextMessage(t, a).Type)
	assert.Equal(t, TypeMenu, nextMessage(t, b).Type)
}

func TestHub_StopSendsShutdown(t *testing.T) {
	logger := quietLogger()
	hub := NewHub(logger, nil)
	hub.Start()

	_, conn := connect(t, hub, newFakeService())
	nextMessage(t, conn)
	nextMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Stop()

	assert.Equal(t, TypeShutdown, nextMessage(t, conn).Type)
	assert.Eventually(t, func() bool {
		for _, c := range conn.Controls() {
			if c == websocket.CloseMessage {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())

	// A stopped hub turns new clients away
	client := NewClient(hub, newMockConnection(), nil, ClientOptions{}, logger)
	hub.Register(client)
	assert.False(t, client.Enqueue(newMessage(TypeMenu, nil)))
}
