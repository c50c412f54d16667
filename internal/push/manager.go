package push

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/mcoot/codebreaker/internal/model"
)

// leaveTimeout bounds the leave issued after a disconnect grace period
const leaveTimeout = 5 * time.Second

// LobbySource is the part of the lobby registry the connection manager needs
type LobbySource interface {
	View(ctx context.Context, id model.LobbyID, fn func(snapshot *model.Lobby) error) error
	LeaveLobby(ctx context.Context, id model.LobbyID, playerID model.PlayerID) (*model.Lobby, error)
}

// AfterLeaveFunc runs after a disconnected player has been removed from a lobby
type AfterLeaveFunc func(ctx context.Context, lobbyID model.LobbyID)

// ConnectionManager attaches push connections to lobby hubs. Registration
// happens under the lobby's lock, so the initial snapshot and every later
// publish arrive in version order.
type ConnectionManager struct {
	hubs       *HubManager
	lobbies    LobbySource
	leaveGrace time.Duration
	pending    *xsync.Map[string, *time.Timer]
	afterLeave AfterLeaveFunc
	logger     *slog.Logger
}

// NewConnectionManager creates a ConnectionManager. A positive leaveGrace
// removes players whose last connection has been gone that long.
func NewConnectionManager(hubs *HubManager, lobbies LobbySource, leaveGrace time.Duration, logger *slog.Logger) *ConnectionManager {
	return &ConnectionManager{
		hubs:       hubs,
		lobbies:    lobbies,
		leaveGrace: leaveGrace,
		pending:    xsync.NewMap[string, *time.Timer](),
		logger:     logger.With(slog.String("component", "push-connections")),
	}
}

// SetAfterLeave installs a hook run after each grace-period removal. Set it
// before any connection is detached.
func (m *ConnectionManager) SetAfterLeave(fn AfterLeaveFunc) {
	m.afterLeave = fn
}

// Subscribe registers a connection for a player in the lobby and queues the
// current snapshot as its first frame
func (m *ConnectionManager) Subscribe(ctx context.Context, lobbyID model.LobbyID, playerID model.PlayerID, transport string) (*Client, error) {
	m.cancelPendingLeave(lobbyID, playerID)

	var client *Client
	err := m.lobbies.View(ctx, lobbyID, func(snapshot *model.Lobby) error {
		if snapshot.GetPlayer(playerID) == nil {
			return model.ErrPlayerNotFound
		}
		frame, err := EncodeSnapshot(snapshot)
		if err != nil {
			return err
		}
		hub := m.hubs.GetOrCreateHub(lobbyID)
		client = NewClient(hub, playerID, transport)
		return hub.Register(client, frame)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Unsubscribe detaches a connection. The player keeps their seat unless a
// leave grace period is configured and they do not reconnect within it.
func (m *ConnectionManager) Unsubscribe(client *Client) {
	client.hub.Unregister(client)
	if m.leaveGrace <= 0 {
		return
	}

	lobbyID, playerID := client.lobbyID, client.playerID
	key := pendingKey(lobbyID, playerID)
	timer := time.AfterFunc(m.leaveGrace, func() {
		m.pending.Delete(key)
		m.leaveIfDisconnected(lobbyID, playerID)
	})
	if previous, loaded := m.pending.LoadAndDelete(key); loaded {
		previous.Stop()
	}
	m.pending.Store(key, timer)
}

func (m *ConnectionManager) leaveIfDisconnected(lobbyID model.LobbyID, playerID model.PlayerID) {
	if hub := m.hubs.GetHub(lobbyID); hub != nil && hub.HasPlayer(playerID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()

	_, err := m.lobbies.LeaveLobby(ctx, lobbyID, playerID)
	switch {
	case err == nil:
		m.logger.Info("player removed after disconnect",
			slog.String("lobby_id", string(lobbyID)),
			slog.String("player_id", string(playerID)),
			slog.Duration("grace", m.leaveGrace))
		if m.afterLeave != nil {
			m.afterLeave(ctx, lobbyID)
		}
	case errors.Is(err, model.ErrPlayerNotFound), errors.Is(err, model.ErrLobbyNotFound):
	default:
		m.logger.Error("failed to remove disconnected player",
			slog.String("lobby_id", string(lobbyID)),
			slog.String("player_id", string(playerID)),
			slog.Any("error", err))
	}
}

func (m *ConnectionManager) cancelPendingLeave(lobbyID model.LobbyID, playerID model.PlayerID) {
	if timer, ok := m.pending.LoadAndDelete(pendingKey(lobbyID, playerID)); ok {
		timer.Stop()
	}
}

// CleanupEmptyHubs removes hubs with no connections and hubs whose lobby no
// longer exists. Returns how many were removed.
func (m *ConnectionManager) CleanupEmptyHubs(ctx context.Context) int {
	removed := 0
	for _, id := range m.hubs.LobbyIDs() {
		err := m.lobbies.View(ctx, id, func(*model.Lobby) error {
			if m.hubs.RemoveHubIfEmpty(id) {
				removed++
			}
			return nil
		})
		if errors.Is(err, model.ErrLobbyNotFound) {
			m.hubs.RemoveHub(id)
			removed++
			continue
		}
		if err != nil {
			m.logger.Warn("push hub cleanup failed",
				slog.String("lobby_id", string(id)),
				slog.Any("error", err))
		}
	}
	return removed
}

// Stop cancels every pending disconnect leave
func (m *ConnectionManager) Stop() {
	m.pending.Range(func(key string, timer *time.Timer) bool {
		timer.Stop()
		m.pending.Delete(key)
		return true
	})
}

func pendingKey(lobbyID model.LobbyID, playerID model.PlayerID) string {
	return string(lobbyID) + "/" + string(playerID)
}
