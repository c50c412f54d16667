package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/codebreaker/internal/dependencies/clock"
	"github.com/mcoot/codebreaker/internal/dependencies/random"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/lobby"
	"github.com/mcoot/codebreaker/internal/services/scoring"
)

const (
	// PlayerIDPrefix marks bot player IDs
	PlayerIDPrefix = "bot-"
	// MaxBotIterations is a safety limit for the ProcessBotActions loop
	MaxBotIterations = 200
)

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionGuess         BotActionType = "guess"
	ActionRoundComplete BotActionType = "round_complete"
	ActionMatchFinished BotActionType = "match_finished"
)

// BotAction represents a single action taken by a bot during ProcessBotActions
type BotAction struct {
	Type     BotActionType
	PlayerID model.PlayerID
	Guess    string
	Result   model.GuessResult
}

// Service manages bot players in lobbies
type Service struct {
	lobbyController *lobby.Controller
	strategies      map[string]Strategy
	clock           clock.Clock
	logger          *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	lobbyController *lobby.Controller,
	strategies map[string]Strategy,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		lobbyController: lobbyController,
		strategies:      strategies,
		clock:           clk,
		logger:          logger.With(slog.String("component", "bot-service")),
	}
}

// DefaultStrategies returns every built-in strategy keyed by name
func DefaultStrategies(rnd random.Random, scoringService *scoring.Service) map[string]Strategy {
	randomStrategy := NewRandomStrategy(rnd)
	return map[string]Strategy{
		model.BotStrategyRandom:     randomStrategy,
		model.BotStrategyConsistent: NewConsistentStrategy(scoringService, randomStrategy),
	}
}

// AddBotToLobby creates a bot player and adds it to a lobby that has not started.
// An empty strategy selects the consistent strategy.
func (s *Service) AddBotToLobby(ctx context.Context, id model.LobbyID, strategy string) (*model.Lobby, *model.Player, error) {
	if strategy == "" {
		strategy = model.BotStrategyConsistent
	}
	if _, ok := s.strategies[strategy]; !ok {
		return nil, nil, fmt.Errorf("%w: %q (valid: %s)",
			model.ErrUnknownBotStrategy, strategy, strings.Join(model.ValidBotStrategies(), ", "))
	}

	lob, err := s.lobbyController.GetLobby(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	botCount := 0
	for _, p := range lob.Players {
		if p.IsBot {
			botCount++
		}
	}

	name := fmt.Sprintf("Bot %d (%s)", botCount+1, model.BotStrategyDisplayName(strategy))
	player := model.NewPlayer(model.PlayerID(PlayerIDPrefix+uuid.NewString()), name, s.clock.Now())
	player.IsBot = true
	player.BotStrategy = strategy

	snapshot, bot, err := s.lobbyController.AddPlayer(ctx, id, player)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("bot added to lobby",
		slog.String("lobby_id", string(id)),
		slog.String("bot_id", string(bot.ID)),
		slog.String("bot_name", name),
		slog.String("strategy", strategy),
	)
	return snapshot, bot, nil
}

// RemoveBotFromLobby removes a bot player from the lobby
func (s *Service) RemoveBotFromLobby(ctx context.Context, id model.LobbyID, botID model.PlayerID) (*model.Lobby, error) {
	lob, err := s.lobbyController.GetLobby(ctx, id)
	if err != nil {
		return nil, err
	}

	player := lob.GetPlayer(botID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if !player.IsBot {
		return nil, model.ErrNotABot
	}

	return s.lobbyController.LeaveLobby(ctx, id, botID)
}

// ProcessBotActions lets bots take consecutive turns until a human holds the
// turn or the round is decided. It returns every action taken.
func (s *Service) ProcessBotActions(ctx context.Context, id model.LobbyID) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		lob, err := s.lobbyController.GetLobby(ctx, id)
		if err != nil {
			return actions, err
		}
		if lob.Phase() != model.PhaseActive {
			break
		}

		current := lob.CurrentPlayer()
		if current == nil || !current.IsBot {
			break // Human's turn
		}

		guess := s.strategyForPlayer(current).ChooseGuess(lob, current)
		updated, err := s.lobbyController.SubmitGuess(ctx, id, current.ID, guess)
		if err != nil {
			if isStateConflict(err) {
				// Someone else changed the lobby between our read and write
				s.logger.Debug("bot guess superseded",
					slog.String("lobby_id", string(id)),
					slog.String("bot_id", string(current.ID)),
					slog.String("error", err.Error()),
				)
				break
			}
			return actions, err
		}

		bot := updated.GetPlayer(current.ID)
		actions = append(actions, BotAction{
			Type:     ActionGuess,
			PlayerID: current.ID,
			Guess:    guess,
			Result:   bot.Guesses[len(bot.Guesses)-1].Result,
		})

		switch updated.Phase() {
		case model.PhaseRoundComplete:
			actions = append(actions, BotAction{Type: ActionRoundComplete})
		case model.PhaseFinished:
			actions = append(actions, BotAction{Type: ActionMatchFinished})
		}
	}

	if len(actions) > 0 {
		s.logger.Info("bots acted",
			slog.String("lobby_id", string(id)),
			slog.Int("actions", len(actions)),
		)
	}
	return actions, nil
}

// strategyForPlayer returns the strategy for a bot player, falling back to
// the consistent strategy if the player's strategy is not registered
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	return s.strategies[model.BotStrategyConsistent]
}

func isStateConflict(err error) bool {
	return errors.Is(err, model.ErrNotYourTurn) ||
		errors.Is(err, model.ErrNotStarted) ||
		errors.Is(err, model.ErrRoundComplete) ||
		errors.Is(err, model.ErrMatchFinished)
}
