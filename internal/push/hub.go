package push

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/mcoot/codebreaker/internal/model"
)

// ErrHubClosed is returned when registering with a hub that has shut down
var ErrHubClosed = errors.New("push hub closed")

const inboxSize = 256

// hubMsg is the closed set of messages a hub processes, in arrival order
type hubMsg interface{ isHubMsg() }

type registerMsg struct {
	client  *Client
	initial Frame
	done    chan struct{}
}

type unregisterMsg struct{ client *Client }

type publishMsg struct{ frame Frame }

func (registerMsg) isHubMsg()   {}
func (unregisterMsg) isHubMsg() {}
func (publishMsg) isHubMsg()    {}

// Hub fans snapshots out to every connection subscribed to one lobby.
// A single goroutine owns delivery; every message goes through one inbox so
// registrations and publishes are handled in the order they were sent.
type Hub struct {
	lobbyID model.LobbyID
	logger  *slog.Logger

	mu       sync.RWMutex
	clients  map[*Client]struct{}
	byPlayer map[model.PlayerID]*Client

	inbox     chan hubMsg
	done      chan struct{}
	closeOnce sync.Once

	// latest holds the newest frame that did not fit in the inbox
	latestMu sync.Mutex
	latest   *Frame
	wake     chan struct{}
}

// NewHub creates a new Hub for a lobby
func NewHub(lobbyID model.LobbyID, logger *slog.Logger) *Hub {
	return &Hub{
		lobbyID:  lobbyID,
		logger:   logger.With(slog.String("lobby_id", string(lobbyID))),
		clients:  make(map[*Client]struct{}),
		byPlayer: make(map[model.PlayerID]*Client),
		inbox:    make(chan hubMsg, inboxSize),
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("push hub started")
	for {
		select {
		case msg := <-h.inbox:
			switch m := msg.(type) {
			case registerMsg:
				h.handleRegister(m)
			case unregisterMsg:
				h.handleUnregister(m.client)
			case publishMsg:
				h.handlePublish(m.frame)
			}

		case <-h.wake:
			if frame, ok := h.takeLatest(); ok {
				h.handlePublish(frame)
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				client.close(CloseHubShutdown)
			}
			h.clients = make(map[*Client]struct{})
			h.byPlayer = make(map[model.PlayerID]*Client)
			h.mu.Unlock()
			h.logger.Info("push hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) handleRegister(m registerMsg) {
	defer close(m.done)

	m.client.offer(m.initial)

	h.mu.Lock()
	stale := h.byPlayer[m.client.playerID]
	if stale != nil {
		delete(h.clients, stale)
		stale.close(CloseSuperseded)
	}
	h.clients[m.client] = struct{}{}
	h.byPlayer[m.client.playerID] = m.client
	clientCount := len(h.clients)
	h.mu.Unlock()

	if stale != nil {
		h.logger.Info("push subscription superseded",
			slog.String("player_id", string(m.client.playerID)),
			slog.String("transport", stale.transport))
	}
	h.logger.Info("push client registered",
		slog.String("player_id", string(m.client.playerID)),
		slog.String("transport", m.client.transport),
		slog.Int("total_clients", clientCount))
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	if h.byPlayer[client.playerID] == client {
		delete(h.byPlayer, client.playerID)
	}
	client.close(CloseUnsubscribed)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("push client unregistered",
		slog.String("player_id", string(client.playerID)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

func (h *Hub) handlePublish(frame Frame) {
	h.mu.RLock()
	replaced := 0
	for client := range h.clients {
		if client.offer(frame) {
			replaced++
			h.logger.Warn("push client lagging - replaced pending snapshot",
				slog.String("player_id", string(client.playerID)))
		}
	}
	sent := len(h.clients)
	h.mu.RUnlock()

	h.logger.Debug("push snapshot delivered",
		slog.Int64("version", frame.Version),
		slog.Int("clients", sent),
		slog.Int("replaced", replaced))
}

// Register adds a client, queueing initial as its first frame. A live
// client for the same player is closed. Returns once the hub has processed it.
func (h *Hub) Register(client *Client, initial Frame) error {
	msg := registerMsg{client: client, initial: initial, done: make(chan struct{})}
	select {
	case h.inbox <- msg:
	case <-h.done:
		return ErrHubClosed
	}
	select {
	case <-msg.done:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	select {
	case h.inbox <- unregisterMsg{client: client}:
	case <-h.done:
	}
}

// Publish queues a frame for every client without blocking the caller. When
// the inbox is full the frame is held aside, replacing any older held frame,
// so the newest version is always delivered.
func (h *Hub) Publish(frame Frame) {
	select {
	case h.inbox <- publishMsg{frame: frame}:
	case <-h.done:
	default:
		h.holdLatest(frame)
	}
}

func (h *Hub) holdLatest(frame Frame) {
	h.latestMu.Lock()
	if h.latest == nil || frame.Version > h.latest.Version {
		h.latest = &frame
	}
	h.latestMu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
	h.logger.Warn("push hub inbox full - coalescing publishes",
		slog.Int64("version", frame.Version))
}

func (h *Hub) takeLatest() (Frame, bool) {
	h.latestMu.Lock()
	defer h.latestMu.Unlock()
	if h.latest == nil {
		return Frame{}, false
	}
	frame := *h.latest
	h.latest = nil
	return frame, true
}

// Close shuts down the hub and closes every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HasPlayer reports whether the player has a live subscription
func (h *Hub) HasPlayer(playerID model.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.byPlayer[playerID]
	return ok
}

// HubManager manages hubs for all lobbies
type HubManager struct {
	hubs   *xsync.Map[model.LobbyID, *Hub]
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   xsync.NewMap[model.LobbyID, *Hub](),
		logger: logger.With(slog.String("component", "push")),
	}
}

// GetOrCreateHub returns the hub for a lobby, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(lobbyID model.LobbyID) *Hub {
	if hub, ok := m.hubs.Load(lobbyID); ok {
		return hub
	}
	hub := NewHub(lobbyID, m.logger)
	actual, loaded := m.hubs.LoadOrStore(lobbyID, hub)
	if !loaded {
		go hub.Run()
	}
	return actual
}

// GetHub returns the hub for a lobby, or nil if it doesn't exist
func (m *HubManager) GetHub(lobbyID model.LobbyID) *Hub {
	hub, _ := m.hubs.Load(lobbyID)
	return hub
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(lobbyID model.LobbyID) {
	if hub, ok := m.hubs.LoadAndDelete(lobbyID); ok {
		hub.Close()
		m.logger.Info("push hub removed", slog.String("lobby_id", string(lobbyID)))
	}
}

// RemoveHubIfEmpty removes the lobby's hub when nobody is subscribed.
// Callers must hold the lobby's lock so no registration can race the check.
func (m *HubManager) RemoveHubIfEmpty(lobbyID model.LobbyID) bool {
	hub, ok := m.hubs.Load(lobbyID)
	if !ok || hub.ClientCount() > 0 {
		return false
	}
	m.RemoveHub(lobbyID)
	return true
}

// LobbyIDs returns the lobbies that currently have a hub
func (m *HubManager) LobbyIDs() []model.LobbyID {
	ids := make([]model.LobbyID, 0, m.hubs.Size())
	m.hubs.Range(func(id model.LobbyID, _ *Hub) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
