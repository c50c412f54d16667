package game

import (
	"log/slog"

	"github.com/mcoot/codebreaker/internal/dependencies/clock"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/scoring"
)

// SecretSource produces the hidden code for a round
type SecretSource interface {
	Generate(codeLength int) (string, error)
}

// Controller is the turn arbiter: it starts rounds and applies guesses to a
// lobby. It mutates the lobby it is handed and does no locking or storage;
// callers own serialization and persistence.
type Controller struct {
	secrets        SecretSource
	scoringService *scoring.Service
	clock          clock.Clock
	logger         *slog.Logger
}

// NewController creates a new GameController
func NewController(
	secrets SecretSource,
	scoringService *scoring.Service,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		secrets:        secrets,
		scoringService: scoringService,
		clock:          clock,
		logger:         logger.With(slog.String("component", "turn-arbiter")),
	}
}

// StartRound begins the next round with a fresh secret. A finished match is
// restarted from round one; an active round cannot be restarted.
func (c *Controller) StartRound(lobby *model.Lobby) error {
	phase := lobby.Phase()
	if phase == model.PhaseActive {
		return model.ErrAlreadyStarted
	}
	if len(lobby.Players) == 0 {
		return model.ErrNoPlayers
	}

	secret, err := c.secrets.Generate(lobby.Config.CodeLength)
	if err != nil {
		return err
	}

	if phase == model.PhaseFinished {
		lobby.RoundNumber = 0
	}

	now := c.clock.Now()
	lobby.SecretCode = secret
	lobby.Winners = []model.PlayerID{}
	lobby.TurnIndex = 0
	lobby.Started = true
	lobby.RoundNumber++
	lobby.LastEvent = model.Event{
		Type:      model.EventRoundStarted,
		Round:     lobby.RoundNumber,
		Timestamp: now,
	}
	lobby.UpdatedAt = now

	c.logger.Info("round started",
		slog.String("lobby_id", string(lobby.ID)),
		slog.Int("round", lobby.RoundNumber),
		slog.Int("num_games", lobby.Config.NumGames),
		slog.Int("player_count", len(lobby.Players)),
	)
	return nil
}

// SubmitGuess validates and applies one guess. On error the lobby is untouched.
func (c *Controller) SubmitGuess(lobby *model.Lobby, playerID model.PlayerID, raw string) (model.Guess, error) {
	if !lobby.Started {
		return model.Guess{}, model.ErrNotStarted
	}
	if err := c.scoringService.ValidateGuess(raw, lobby.Config.CodeLength); err != nil {
		return model.Guess{}, err
	}
	switch lobby.Phase() {
	case model.PhaseFinished:
		return model.Guess{}, model.ErrMatchFinished
	case model.PhaseRoundComplete:
		return model.Guess{}, model.ErrRoundComplete
	}
	current := lobby.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return model.Guess{}, model.ErrNotYourTurn
	}

	now := c.clock.Now()
	result := c.scoringService.Evaluate(lobby.SecretCode, raw)
	guess := model.Guess{
		Value:       raw,
		Result:      result,
		Round:       lobby.RoundNumber,
		SubmittedAt: now,
	}

	solved := result.CorrectPositions == lobby.Config.CodeLength
	newWinner := solved && !lobby.IsWinner(playerID)

	current.Guesses = append(current.Guesses, guess)
	stats := &current.Stats
	stats.Attempts++
	stats.BestCorrectPositions = max(stats.BestCorrectPositions, result.CorrectPositions)
	stats.BestCorrectDigits = max(stats.BestCorrectDigits, result.CorrectDigits)
	stats.TotalPoints += c.scoringService.Points(result, newWinner)
	if newWinner {
		lobby.Winners = append(lobby.Winners, playerID)
		stats.RoundsWon++
	}

	lobby.AdvanceTurn()
	lobby.UpdatedAt = now
	lobby.LastEvent = model.Event{
		Type:      c.eventAfterGuess(lobby),
		PlayerID:  playerID,
		Round:     lobby.RoundNumber,
		Timestamp: now,
	}

	c.logger.Info("guess submitted",
		slog.String("lobby_id", string(lobby.ID)),
		slog.String("player_id", string(playerID)),
		slog.Int("round", lobby.RoundNumber),
		slog.Int("correct_positions", result.CorrectPositions),
		slog.Int("correct_digits", result.CorrectDigits),
		slog.Bool("solved", solved),
		slog.Int("next_turn", lobby.TurnIndex),
	)
	if lobby.LastEvent.Type != model.EventGuessSubmitted {
		c.logger.Info("round decided",
			slog.String("lobby_id", string(lobby.ID)),
			slog.Int("round", lobby.RoundNumber),
			slog.Any("winners", lobby.Winners),
			slog.String("phase", string(lobby.Phase())),
		)
	}

	return guess, nil
}

func (c *Controller) eventAfterGuess(lobby *model.Lobby) model.EventType {
	switch lobby.Phase() {
	case model.PhaseFinished:
		return model.EventMatchFinished
	case model.PhaseRoundComplete:
		return model.EventRoundComplete
	default:
		return model.EventGuessSubmitted
	}
}
