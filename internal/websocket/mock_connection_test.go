package websocket

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// mockConnection is an in-memory Connection. Frames pushed with Push are
// returned by ReadMessage; text frames written are delivered on Written.
type mockConnection struct {
	mu sync.Mutex

	incoming  chan []byte
	written   chan []byte
	control   []int
	closed    chan struct{}
	closeOnce sync.Once

	readLimit int64
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		incoming: make(chan []byte, 16),
		written:  make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
}

// Push queues a frame for ReadMessage
func (m *mockConnection) Push(frame string) {
	m.incoming <- []byte(frame)
}

// Hangup makes the next ReadMessage report a normal close
func (m *mockConnection) Hangup() {
	close(m.incoming)
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	select {
	case <-m.closed:
		return errors.New("connection closed")
	default:
	}

	if messageType != websocket.TextMessage {
		m.mu.Lock()
		m.control = append(m.control, messageType)
		m.mu.Unlock()
		return nil
	}
	m.written <- append([]byte(nil), data...)
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-m.incoming:
		if !ok {
			return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
		}
		return websocket.TextMessage, data, nil
	case <-m.closed:
		return 0, nil, net.ErrClosed
	}
}

func (m *mockConnection) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *mockConnection) Controls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.control...)
}

func (m *mockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConnection) SetPongHandler(func(string) error) {}

func (m *mockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	m.readLimit = limit
	m.mu.Unlock()
}

func (m *mockConnection) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50123}
}

func (m *mockConnection) ReadLimit() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readLimit
}
