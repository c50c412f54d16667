package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/codebreaker/internal/dependencies/clock"
	"github.com/mcoot/codebreaker/internal/model"
)

// LobbyDisposer lists lobbies and deletes the idle, empty ones
type LobbyDisposer interface {
	ListLobbies(ctx context.Context) ([]model.LobbyID, error)
	DisposeIfIdle(ctx context.Context, id model.LobbyID, idleSince time.Time) (bool, error)
}

// HubCleaner drops push hubs nobody is connected to
type HubCleaner interface {
	CleanupEmptyHubs(ctx context.Context) int
}

// SweepResult summarises one housekeeping pass
type SweepResult struct {
	Checked        int
	LobbiesRemoved int
	HubsRemoved    int
}

// Janitor periodically disposes of abandoned lobbies and idle push hubs
type Janitor struct {
	lobbies     LobbyDisposer
	hubs        HubCleaner
	clock       clock.Clock
	idleTimeout time.Duration
	interval    time.Duration
	logger      *slog.Logger
}

// New creates a new Janitor
func New(lobbies LobbyDisposer, hubs HubCleaner, clk clock.Clock, idleTimeout, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		lobbies:     lobbies,
		hubs:        hubs,
		clock:       clk,
		idleTimeout: idleTimeout,
		interval:    interval,
		logger:      logger.With(slog.String("component", "janitor")),
	}
}

// Sweep runs one pass: lobbies with no players untouched for the idle
// timeout are deleted, then empty hubs are dropped
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	ids, err := j.lobbies.ListLobbies(ctx)
	if err != nil {
		return result, err
	}

	cutoff := j.clock.Now().Add(-j.idleTimeout)
	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++
		removed, err := j.lobbies.DisposeIfIdle(ctx, id, cutoff)
		if err != nil {
			j.logger.Warn("failed to dispose lobby",
				slog.String("lobby_id", string(id)),
				slog.Any("error", err))
			continue
		}
		if removed {
			result.LobbiesRemoved++
		}
	}

	result.HubsRemoved = j.hubs.CleanupEmptyHubs(ctx)

	if result.LobbiesRemoved > 0 || result.HubsRemoved > 0 {
		j.logger.Info("janitor sweep complete",
			slog.Int("checked", result.Checked),
			slog.Int("lobbies_removed", result.LobbiesRemoved),
			slog.Int("hubs_removed", result.HubsRemoved))
	}
	return result, nil
}

// Run sweeps on every interval until ctx is cancelled
func (j *Janitor) Run(ctx context.Context) error {
	if j.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("janitor started",
		slog.Duration("interval", j.interval),
		slog.Duration("idle_timeout", j.idleTimeout))

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return nil
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("janitor sweep failed", slog.Any("error", err))
			}
		}
	}
}
