package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/mcoot/codebreaker/internal/dependencies/clock"
	"github.com/mcoot/codebreaker/internal/dependencies/random"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/game"
	"github.com/mcoot/codebreaker/internal/storage"
)

const (
	// LobbyCodeLength is the length of generated lobby codes
	LobbyCodeLength = 6
	// LobbyCodeAlphabet is the characters used in lobby codes (avoid confusing chars)
	LobbyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// maxCodeAttempts bounds retries on lobby code collisions
	maxCodeAttempts = 16
	// MaxNameLength caps player display names
	MaxNameLength = 32
)

// Publisher receives a snapshot after every successful mutation
type Publisher interface {
	Publish(snapshot *model.Lobby)
	Close(id model.LobbyID)
}

// Controller is the lobby registry. Every mutation of a lobby runs under that
// lobby's own lock and is published before the lock is released, so snapshots
// reach the publisher in version order.
type Controller struct {
	storage        storage.Storage
	gameController *game.Controller
	publisher      Publisher
	locks          *xsync.Map[model.LobbyID, *sync.Mutex]
	clock          clock.Clock
	random         random.Random
	logger         *slog.Logger
}

// NewController creates a new LobbyController
func NewController(
	storage storage.Storage,
	gameController *game.Controller,
	publisher Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:        storage,
		gameController: gameController,
		publisher:      publisher,
		locks:          xsync.NewMap[model.LobbyID, *sync.Mutex](),
		clock:          clock,
		random:         random,
		logger:         logger.With(slog.String("component", "lobby-registry")),
	}
}

// CreateLobby validates the configuration and stores a new empty lobby
func (c *Controller) CreateLobby(ctx context.Context, cfg model.LobbyConfig) (*model.Lobby, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	for range maxCodeAttempts {
		id := model.LobbyID(c.random.String(LobbyCodeLength, LobbyCodeAlphabet))
		if id == "" {
			return nil, errors.New("lobby code generator returned an empty code")
		}

		lobby := model.NewLobby(id, cfg, now)
		lobby.Version = 1
		lobby.LastEvent = model.Event{Type: model.EventLobbyCreated, Timestamp: now}

		err := c.storage.CreateLobby(ctx, lobby)
		if errors.Is(err, storage.ErrLobbyExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		c.logger.Info("lobby created",
			slog.String("lobby_id", string(id)),
			slog.Int("num_games", cfg.NumGames),
			slog.Int("max_winners", cfg.MaxWinners),
			slog.Int("code_length", cfg.CodeLength),
			slog.Bool("show_all_guesses", cfg.ShowAllGuesses),
		)
		return lobby, nil
	}
	return nil, fmt.Errorf("could not allocate a unique lobby code after %d attempts", maxCodeAttempts)
}

// GetLobby returns a point-in-time snapshot of a lobby
func (c *Controller) GetLobby(ctx context.Context, id model.LobbyID) (*model.Lobby, error) {
	return c.storage.GetLobby(ctx, id)
}

// ListLobbies returns the IDs of every stored lobby
func (c *Controller) ListLobbies(ctx context.Context) ([]model.LobbyID, error) {
	return c.storage.ListLobbies(ctx)
}

// View runs fn with a snapshot of the lobby while holding the lobby's lock.
// Nothing can be published for the lobby until fn returns.
func (c *Controller) View(ctx context.Context, id model.LobbyID, fn func(snapshot *model.Lobby) error) error {
	mu := c.lock(id)
	defer mu.Unlock()

	lobby, err := c.storage.GetLobby(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrLobbyNotFound) {
			c.locks.Delete(id)
		}
		return err
	}
	return fn(lobby)
}

// JoinLobby adds a new human player. Returns the snapshot and the new player.
func (c *Controller) JoinLobby(ctx context.Context, id model.LobbyID, name string) (*model.Lobby, *model.Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, nil, err
	}
	player := model.NewPlayer(model.PlayerID(uuid.NewString()), name, c.clock.Now())
	return c.AddPlayer(ctx, id, player)
}

// AddPlayer appends a prepared player to a lobby that has not started
func (c *Controller) AddPlayer(ctx context.Context, id model.LobbyID, player model.Player) (*model.Lobby, *model.Player, error) {
	snapshot, err := c.mutate(ctx, id, func(lobby *model.Lobby) error {
		if lobby.Started {
			return model.ErrAlreadyStarted
		}
		lobby.Players = append(lobby.Players, player.Clone())
		lobby.LastEvent = model.Event{Type: model.EventPlayerJoined, PlayerID: player.ID}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	c.logger.Info("player joined lobby",
		slog.String("lobby_id", string(id)),
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name),
		slog.Bool("is_bot", player.IsBot),
		slog.Int("player_count", len(snapshot.Players)),
	)
	return snapshot, snapshot.GetPlayer(player.ID), nil
}

// LeaveLobby removes a player. The turn is re-pointed at whoever occupies
// the departed holder's slot; the lobby itself stays until disposed.
func (c *Controller) LeaveLobby(ctx context.Context, id model.LobbyID, playerID model.PlayerID) (*model.Lobby, error) {
	snapshot, err := c.mutate(ctx, id, func(lobby *model.Lobby) error {
		if !lobby.RemovePlayer(playerID) {
			return model.ErrPlayerNotFound
		}
		lobby.LastEvent = model.Event{Type: model.EventPlayerLeft, PlayerID: playerID, Round: lobby.RoundNumber}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("player left lobby",
		slog.String("lobby_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.Int("player_count", len(snapshot.Players)),
		slog.Int("turn_index", snapshot.TurnIndex),
	)
	return snapshot, nil
}

// StartGame starts round one of a lobby that has never been started
func (c *Controller) StartGame(ctx context.Context, id model.LobbyID) (*model.Lobby, error) {
	return c.mutate(ctx, id, func(lobby *model.Lobby) error {
		if lobby.Started {
			return model.ErrAlreadyStarted
		}
		return c.gameController.StartRound(lobby)
	})
}

// RestartGame starts the next round, or a fresh match once the last round is decided
func (c *Controller) RestartGame(ctx context.Context, id model.LobbyID) (*model.Lobby, error) {
	return c.mutate(ctx, id, func(lobby *model.Lobby) error {
		return c.gameController.StartRound(lobby)
	})
}

// SubmitGuess applies a guess through the turn arbiter
func (c *Controller) SubmitGuess(ctx context.Context, id model.LobbyID, playerID model.PlayerID, raw string) (*model.Lobby, error) {
	return c.mutate(ctx, id, func(lobby *model.Lobby) error {
		_, err := c.gameController.SubmitGuess(lobby, playerID, raw)
		return err
	})
}

// DisposeIfIdle deletes a lobby that has no players and has not changed since
// idleSince. Reports whether the lobby was removed.
func (c *Controller) DisposeIfIdle(ctx context.Context, id model.LobbyID, idleSince time.Time) (bool, error) {
	mu := c.lock(id)
	defer mu.Unlock()

	lobby, err := c.storage.GetLobby(ctx, id)
	if errors.Is(err, model.ErrLobbyNotFound) {
		c.publisher.Close(id)
		c.locks.Delete(id)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(lobby.Players) > 0 || lobby.UpdatedAt.After(idleSince) {
		return false, nil
	}

	if err := c.storage.DeleteLobby(ctx, id); err != nil {
		return false, err
	}
	c.publisher.Close(id)
	c.locks.Delete(id)

	c.logger.Info("lobby disposed",
		slog.String("lobby_id", string(id)),
		slog.Time("last_updated", lobby.UpdatedAt),
	)
	return true, nil
}

// mutate loads the lobby, applies fn, and on success saves and publishes the
// new version. fn works on a private copy, so a failed fn changes nothing.
func (c *Controller) mutate(ctx context.Context, id model.LobbyID, fn func(lobby *model.Lobby) error) (*model.Lobby, error) {
	mu := c.lock(id)
	defer mu.Unlock()

	lobby, err := c.storage.GetLobby(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrLobbyNotFound) {
			c.locks.Delete(id)
		}
		return nil, err
	}
	if err := fn(lobby); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	lobby.Version++
	lobby.UpdatedAt = now
	if lobby.LastEvent.Timestamp.IsZero() {
		lobby.LastEvent.Timestamp = now
	}

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		c.logger.Error("failed to save lobby",
			slog.String("lobby_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.publisher.Publish(lobby.Clone())
	return lobby, nil
}

// lock acquires the lobby's mutex and returns it held. Entries are only
// deleted by a holder, so a mutex that is no longer the current entry once
// acquired is stale and the caller retries with the fresh one.
func (c *Controller) lock(id model.LobbyID) *sync.Mutex {
	for {
		mu, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
		mu.Lock()
		if current, ok := c.locks.Load(id); ok && current == mu {
			return mu
		}
		mu.Unlock()
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", model.ErrInvalidName)
	}
	if len([]rune(name)) > MaxNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", model.ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// ControllerInterface defines the interface for lobby operations
type ControllerInterface interface {
	CreateLobby(ctx context.Context, cfg model.LobbyConfig) (*model.Lobby, error)
	GetLobby(ctx context.Context, id model.LobbyID) (*model.Lobby, error)
	ListLobbies(ctx context.Context) ([]model.LobbyID, error)
	View(ctx context.Context, id model.LobbyID, fn func(snapshot *model.Lobby) error) error
	JoinLobby(ctx context.Context, id model.LobbyID, name string) (*model.Lobby, *model.Player, error)
	AddPlayer(ctx context.Context, id model.LobbyID, player model.Player) (*model.Lobby, *model.Player, error)
	LeaveLobby(ctx context.Context, id model.LobbyID, playerID model.PlayerID) (*model.Lobby, error)
	StartGame(ctx context.Context, id model.LobbyID) (*model.Lobby, error)
	RestartGame(ctx context.Context, id model.LobbyID) (*model.Lobby, error)
	SubmitGuess(ctx context.Context, id model.LobbyID, playerID model.PlayerID, raw string) (*model.Lobby, error)
	DisposeIfIdle(ctx context.Context, id model.LobbyID, idleSince time.Time) (bool, error)
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)
