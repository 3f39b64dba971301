package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"unistats/internal/infrastructure"
)

// Message types
const (
	TypeConnection = "connection"
	TypeDataUpdate = "data_update"
	ActionRefresh  = "refresh"
)

const broadcastBuffer = 16

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type      string      `json:"type"`
	Action    string      `json:"action,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// HubStats is a snapshot of hub counters.
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	DroppedMessages  int64 `json:"dropped_messages"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu     sync.RWMutex
	logger *slog.Logger

	totalConnections int64
	messagesSent     int64
	droppedMessages  int64
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client. It always returns nil.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.InfoContext(client.context(), "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.greet(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.InfoContext(client.context(), "client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) greet(client *Client) {
	data, err := json.Marshal(Message{
		Type: TypeConnection,
		Data: map[string]interface{}{
			"status":    "connected",
			"client_id": client.id,
		},
		Timestamp: time.Now().Format(time.RFC3339),
		TraceID:   client.traceID,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("client buffer full, connection message dropped",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	failed := 0
	for client := range h.clients {
		select {
		case client.send <- message:
			h.messagesSent++
		default:
			failed++
			close(client.send)
			delete(h.clients, client)
			h.logger.Warn("client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
	h.logger.Debug("broadcast delivered",
		slog.Int("clients", len(h.clients)),
		slog.Int("failed", failed),
		slog.Int("message_size", len(message)))
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.logger.Info("hub stopped")
}

// Register adds a client to the hub. A client registered after the hub
// stopped is closed immediately.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every connected client. When the queue is
// full the message is dropped.
func (h *Hub) Broadcast(ctx context.Context, messageType, action string, data interface{}) {
	payload, err := json.Marshal(Message{
		Type:      messageType,
		Action:    action,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
		TraceID:   infrastructure.GetTraceID(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", messageType))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		h.mu.Lock()
		h.droppedMessages++
		h.mu.Unlock()
		h.logger.WarnContext(ctx, "broadcast queue full, message dropped",
			slog.String("message_type", messageType))
	}
}

// BroadcastDataUpdate tells clients that source workbooks changed and
// views should be reloaded.
func (h *Hub) BroadcastDataUpdate(ctx context.Context, changed []string) {
	h.Broadcast(ctx, TypeDataUpdate, ActionRefresh, map[string]interface{}{
		"files": changed,
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns current hub counters
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HubStats{
		ActiveClients:    len(h.clients),
		TotalConnections: h.totalConnections,
		MessagesSent:     h.messagesSent,
		DroppedMessages:  h.droppedMessages,
	}
}
