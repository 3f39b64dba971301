package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MockConnection is an in-memory Connection. ReadMessage blocks until the
// connection is closed.
type MockConnection struct {
	mu      sync.Mutex
	written []MockMessage
	closed  chan struct{}
	once    sync.Once

	RemoteAddress string
}

// MockMessage is a frame written to a MockConnection.
type MockMessage struct {
	Type int
	Data []byte
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		closed:        make(chan struct{}),
		RemoteAddress: "127.0.0.1:8080",
	}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	select {
	case <-m.closed:
		return errors.New("connection closed")
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, MockMessage{Type: messageType, Data: append([]byte(nil), data...)})
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	<-m.closed
	return 0, nil, errors.New("connection closed")
}

func (m *MockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *MockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *MockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *MockConnection) SetReadLimit(int64)               {}
func (m *MockConnection) SetPongHandler(func(string) error) {}
func (m *MockConnection) RemoteAddr() string               { return m.RemoteAddress }

// TextMessages returns the text frames written so far.
func (m *MockConnection) TextMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]byte
	for _, msg := range m.written {
		if msg.Type == websocket.TextMessage {
			out = append(out, msg.Data)
		}
	}
	return out
}

func (m *MockConnection) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}
