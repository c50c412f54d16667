package push

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/codebreaker/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Pending snapshots per client; the oldest is replaced when full
	sendBufferSize = 8

	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// CloseReason records why the hub closed a client's frame channel
type CloseReason int

const (
	CloseUnsubscribed CloseReason = iota
	CloseSuperseded
	CloseHubShutdown
)

func (r CloseReason) String() string {
	switch r {
	case CloseSuperseded:
		return "superseded"
	case CloseHubShutdown:
		return "hub shutdown"
	default:
		return "unsubscribed"
	}
}

// Client is one live push connection for a player
type Client struct {
	hub         *Hub
	lobbyID     model.LobbyID
	playerID    model.PlayerID
	transport   string
	connectedAt time.Time
	send        chan Frame

	// lastVersion is only touched by the hub goroutine
	lastVersion int64
	// closeReason is written before send is closed
	closeReason CloseReason
}

// NewClient creates a new push client
func NewClient(hub *Hub, playerID model.PlayerID, transport string) *Client {
	return &Client{
		hub:         hub,
		lobbyID:     hub.lobbyID,
		playerID:    playerID,
		transport:   transport,
		connectedAt: time.Now(),
		send:        make(chan Frame, sendBufferSize),
	}
}

// Frames returns the channel of snapshots to deliver. It is closed when the
// client is unregistered, superseded, or its hub shuts down.
func (c *Client) Frames() <-chan Frame {
	return c.send
}

// CloseReason reports why Frames was closed. Only meaningful once the
// channel has been observed closed.
func (c *Client) CloseReason() CloseReason {
	return c.closeReason
}

func (c *Client) close(reason CloseReason) {
	c.closeReason = reason
	close(c.send)
}

// PlayerID returns the subscribed player
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// LobbyID returns the subscribed lobby
func (c *Client) LobbyID() model.LobbyID {
	return c.lobbyID
}

// offer enqueues a frame without blocking. Frames no newer than the last one
// offered are skipped. When the buffer is full the oldest pending frame is
// discarded; reports whether that happened.
func (c *Client) offer(frame Frame) (replaced bool) {
	if frame.Version <= c.lastVersion {
		return false
	}
	c.lastVersion = frame.Version
	for {
		select {
		case c.send <- frame:
			return replaced
		default:
			select {
			case <-c.send:
				replaced = true
			default:
			}
		}
	}
}

// ServeSSE streams a registered client's frames as server-sent events until
// the request ends or the client's channel closes
func ServeSSE(w http.ResponseWriter, r *http.Request, client *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(formatSSEMessage("", strconv.FormatInt(frame.Version, 10), string(frame.Payload))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// formatSSEMessage formats an SSE message. An empty event name produces a
// default "message" event. Multi-line data gets a "data: " prefix per line.
func formatSSEMessage(eventName, id, data string) []byte {
	var b strings.Builder
	if eventName != "" {
		b.WriteString("event: " + eventName + "\n")
	}
	if id != "" {
		b.WriteString("id: " + id + "\n")
	}
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
