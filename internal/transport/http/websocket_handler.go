package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"unistats/internal/config"
	apierrors "unistats/internal/errors"
	"unistats/internal/middleware"
	ws "unistats/internal/websocket"
)

// WebSocketHandler upgrades /ws requests and attaches them to the hub.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a handler accepting same-origin connections
// and those from the origins cors allows.
func NewWebSocketHandler(hub *ws.Hub, cors middleware.CORSConfig, cfg config.WebSocketConfig, logger *slog.Logger) *WebSocketHandler {
	logger = logger.With(slog.String("handler", "websocket"))
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || cors.OriginAllowed(origin) {
					return true
				}
				if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
					return true
				}
				logger.WarnContext(r.Context(), "WebSocket origin rejected",
					slog.String("origin", origin))
				return false
			},
		},
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetRequestID(ctx)

	h.logger.DebugContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", reqID))

	var respHeader http.Header
	if reqID != "" {
		respHeader = http.Header{middleware.RequestIDHeader: []string{reqID}}
	}
	conn, err := h.upgrader.Upgrade(w, r, respHeader)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.ErrorContext(ctx, apierrors.ErrWebSocketUpgrade.Message,
			slog.String("error_code", apierrors.ErrWebSocketUpgrade.ErrorCode),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		return
	}

	client := ws.ServeWS(h.hub, ws.WrapConn(conn), reqID, h.logger)
	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", reqID))
}
