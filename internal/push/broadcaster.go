package push

import (
	"log/slog"

	"github.com/mcoot/codebreaker/internal/model"
)

// Broadcaster hands every new lobby snapshot to the lobby's hub
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "push-broadcaster")),
	}
}

// Publish encodes the snapshot once and fans it out. Lobbies nobody is
// watching have no hub and are skipped.
func (b *Broadcaster) Publish(snapshot *model.Lobby) {
	hub := b.hubManager.GetHub(snapshot.ID)
	if hub == nil {
		return
	}

	frame, err := EncodeSnapshot(snapshot)
	if err != nil {
		b.logger.Error("push failed to encode snapshot",
			slog.String("lobby_id", string(snapshot.ID)),
			slog.Int64("version", snapshot.Version),
			slog.Any("error", err))
		return
	}
	hub.Publish(frame)
}

// Close disconnects everyone watching a lobby
func (b *Broadcaster) Close(id model.LobbyID) {
	b.hubManager.RemoveHub(id)
}
