package push

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mcoot/codebreaker/internal/api/response"
)

// Time allowed to write a message to the peer
const writeWait = 5 * time.Second

// WebSocketOptions configures the WebSocket upgrade
type WebSocketOptions struct {
	// OriginPatterns lists allowed cross-origin hosts; "*" allows any
	OriginPatterns []string
}

// Upgrade accepts the WebSocket handshake. On failure a response has already
// been written.
func Upgrade(w http.ResponseWriter, r *http.Request, opts WebSocketOptions) (*websocket.Conn, error) {
	accept := &websocket.AcceptOptions{}
	for _, pattern := range opts.OriginPatterns {
		if pattern == "*" {
			accept.InsecureSkipVerify = true
			break
		}
	}
	if !accept.InsecureSkipVerify {
		for _, pattern := range opts.OriginPatterns {
			accept.OriginPatterns = append(accept.OriginPatterns, originHost(pattern))
		}
	}
	return websocket.Accept(w, r, accept)
}

// ServeWebSocket streams a registered client's frames over an accepted
// connection. The channel is push-only: any data message from the peer
// closes the connection.
func ServeWebSocket(ctx context.Context, conn *websocket.Conn, client *Client, logger *slog.Logger) {
	ctx = conn.CloseRead(ctx)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-client.send:
			if !ok {
				closeClosedClient(ctx, conn, client)
				return
			}
			if err := writeFrame(ctx, conn, frame); err != nil {
				logWriteError(logger, client, err)
				_ = conn.Close(websocket.StatusInternalError, "write failed")
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				_ = conn.CloseNow()
				return
			}

		case <-ctx.Done():
			_ = conn.CloseNow()
			return
		}
	}
}

// closeClosedClient ends a connection whose frame channel the hub closed.
// Only a replaced subscription is told it was superseded.
func closeClosedClient(ctx context.Context, conn *websocket.Conn, client *Client) {
	switch client.CloseReason() {
	case CloseSuperseded:
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		_ = wsjson.Write(writeCtx, conn, response.Push{Type: response.PushTypeSuperseded})
		cancel()
		_ = conn.Close(websocket.StatusGoingAway, "superseded")
	case CloseHubShutdown:
		_ = conn.Close(websocket.StatusGoingAway, "lobby closed")
	default:
		_ = conn.Close(websocket.StatusNormalClosure, "unsubscribed")
	}
}

// originHost reduces a configured origin such as "https://example.com" to
// the host pattern the handshake matches against
func originHost(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Host
	}
	return origin
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame Frame) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(writeCtx, conn, response.Push{
		Type:  response.PushTypeSnapshot,
		Lobby: json.RawMessage(frame.Payload),
	})
}

func logWriteError(logger *slog.Logger, client *Client, err error) {
	if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) != -1 {
		return
	}
	logger.Warn("websocket write failed",
		slog.String("lobby_id", string(client.lobbyID)),
		slog.String("player_id", string(client.playerID)),
		slog.String("error", err.Error()))
}
