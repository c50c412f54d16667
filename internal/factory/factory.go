package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/codebreaker/internal/dependencies/clock"
	"github.com/mcoot/codebreaker/internal/dependencies/random"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/push"
	"github.com/mcoot/codebreaker/internal/services/bot"
	"github.com/mcoot/codebreaker/internal/services/game"
	"github.com/mcoot/codebreaker/internal/services/janitor"
	"github.com/mcoot/codebreaker/internal/services/lobby"
	"github.com/mcoot/codebreaker/internal/services/scoring"
	"github.com/mcoot/codebreaker/internal/services/secret"
	"github.com/mcoot/codebreaker/internal/storage"
	"github.com/mcoot/codebreaker/internal/storage/memory"
	redisstorage "github.com/mcoot/codebreaker/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Housekeeping defaults
const (
	DefaultIdleTimeout     = 30 * time.Minute
	DefaultJanitorInterval = time.Minute
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	SecretGenerator   *secret.Generator
	ScoringService    *scoring.Service
	GameController    *game.Controller
	LobbyController   *lobby.Controller
	BotService        *bot.Service
	Janitor           *janitor.Janitor
	HubManager        *push.HubManager
	Broadcaster       *push.Broadcaster
	ConnectionManager *push.ConnectionManager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// IdleTimeout is how long an empty lobby survives untouched (default 30m)
	IdleTimeout time.Duration
	// JanitorInterval is the time between housekeeping sweeps (default 1m)
	JanitorInterval time.Duration
	// LeaveGrace removes players whose last push connection has been closed
	// this long. Zero disables it.
	LeaveGrace time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	interval := cfg.JanitorInterval
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	// Create services
	secretGenerator := secret.New(rnd)
	scoringService := scoring.New()
	gameController := game.NewController(secretGenerator, scoringService, clk, logger)

	hubManager := push.NewHubManager(logger)
	broadcaster := push.NewBroadcaster(hubManager, logger)
	lobbyController := lobby.NewController(store, gameController, broadcaster, clk, rnd, logger)
	connectionManager := push.NewConnectionManager(hubManager, lobbyController, cfg.LeaveGrace, logger)

	botService := bot.NewService(lobbyController, bot.DefaultStrategies(rnd, scoringService), clk, logger)
	connectionManager.SetAfterLeave(func(ctx context.Context, id model.LobbyID) {
		if _, err := botService.ProcessBotActions(ctx, id); err != nil {
			logger.Error("bot processing after disconnect failed",
				slog.String("lobby_id", string(id)),
				slog.Any("error", err))
		}
	})
	janitorService := janitor.New(lobbyController, connectionManager, clk, idleTimeout, interval, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		SecretGenerator:   secretGenerator,
		ScoringService:    scoringService,
		GameController:    gameController,
		LobbyController:   lobbyController,
		BotService:        botService,
		Janitor:           janitorService,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		ConnectionManager: connectionManager,
	}
}

// DisconnectAll stops pending disconnect timers and closes every push
// connection so long-lived stream handlers return
func (a *App) DisconnectAll() {
	a.ConnectionManager.Stop()
	for _, id := range a.HubManager.LobbyIDs() {
		a.HubManager.RemoveHub(id)
	}
}

// Close disconnects all push clients and releases the storage connection
func (a *App) Close() error {
	a.DisconnectAll()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
