package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/codebreaker/internal/api/apierr"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/push"
)

// StreamHandler serves the push channels
type StreamHandler struct {
	connections *push.ConnectionManager
	wsOptions   push.WebSocketOptions
	logger      *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(connections *push.ConnectionManager, allowedOrigins []string, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		connections: connections,
		wsOptions:   push.WebSocketOptions{OriginPatterns: allowedOrigins},
		logger:      logger,
	}
}

// SSE handles GET /lobby/{id}/stream?playerId=
func (h *StreamHandler) SSE(w http.ResponseWriter, r *http.Request) {
	client, ok := h.subscribe(w, r, push.TransportSSE)
	if !ok {
		return
	}
	defer h.connections.Unsubscribe(client)

	push.ServeSSE(w, r, client)
}

// WebSocket handles GET /lobby/{id}/ws?playerId=
func (h *StreamHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	client, ok := h.subscribe(w, r, push.TransportWebSocket)
	if !ok {
		return
	}
	defer h.connections.Unsubscribe(client)

	conn, err := push.Upgrade(w, r, h.wsOptions)
	if err != nil {
		h.logger.Debug("websocket upgrade failed",
			slog.String("lobby_id", string(client.LobbyID())),
			slog.Any("error", err))
		return
	}

	push.ServeWebSocket(r.Context(), conn, client, h.logger)
}

func (h *StreamHandler) subscribe(w http.ResponseWriter, r *http.Request, transport string) (*push.Client, bool) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		writeError(w, r, h.logger, apierr.NewInvalidRequestError("playerId is required"))
		return nil, false
	}

	client, err := h.connections.Subscribe(r.Context(), lobbyID(r), model.PlayerID(playerID), transport)
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil, false
	}

	// Push connections outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	return client, true
}
