package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codebreaker/internal/dependencies/mocks"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/bot"
	"github.com/mcoot/codebreaker/internal/services/game"
	"github.com/mcoot/codebreaker/internal/services/lobby"
	"github.com/mcoot/codebreaker/internal/services/scoring"
	"github.com/mcoot/codebreaker/internal/services/secret"
	"github.com/mcoot/codebreaker/internal/storage/memory"
	"github.com/mcoot/codebreaker/internal/testutil"
)

type nopPublisher struct{}

func (nopPublisher) Publish(*model.Lobby)  {}
func (nopPublisher) Close(model.LobbyID) {}

type ServiceSuite struct {
	suite.Suite
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom

	lobbyController *lobby.Controller
	botService      *bot.Service

	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	store := memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.ctx = context.Background()

	scoringService := scoring.New()
	gameController := game.NewController(secret.New(s.mockRandom), scoringService, s.mockClock, logger)
	s.lobbyController = lobby.NewController(store, gameController, nopPublisher{}, s.mockClock, s.mockRandom, logger)
	s.botService = bot.NewService(
		s.lobbyController,
		bot.DefaultStrategies(s.mockRandom, scoringService),
		s.mockClock,
		logger,
	)
}

func (s *ServiceSuite) createLobby() model.LobbyID {
	s.mockRandom.QueueString("BOTLOB")
	lob, err := s.lobbyController.CreateLobby(s.ctx, model.DefaultLobbyConfig())
	s.Require().NoError(err)
	return lob.ID
}

func (s *ServiceSuite) TestAddBotToLobby() {
	id := s.createLobby()

	snapshot, botPlayer, err := s.botService.AddBotToLobby(s.ctx, id, model.BotStrategyRandom)
	s.Require().NoError(err)

	s.True(botPlayer.IsBot)
	s.Equal(model.BotStrategyRandom, botPlayer.BotStrategy)
	s.Equal("Bot 1 (Random)", botPlayer.Name)
	s.Contains(string(botPlayer.ID), bot.PlayerIDPrefix)
	s.Len(snapshot.Players, 1)
}

func (s *ServiceSuite) TestAddBotDefaultsToConsistent() {
	id := s.createLobby()
	_, _, err := s.botService.AddBotToLobby(s.ctx, id, "")
	s.Require().NoError(err)

	_, second, err := s.botService.AddBotToLobby(s.ctx, id, "")
	s.Require().NoError(err)

	s.Equal(model.BotStrategyConsistent, second.BotStrategy)
	s.Equal("Bot 2 (Consistent)", second.Name)
}

func (s *ServiceSuite) TestAddBotUnknownStrategy() {
	id := s.createLobby()

	_, _, err := s.botService.AddBotToLobby(s.ctx, id, "psychic")
	s.ErrorIs(err, model.ErrUnknownBotStrategy)
}

func (s *ServiceSuite) TestAddBotAfterStartRejected() {
	id := s.createLobby()
	_, _, err := s.lobbyController.JoinLobby(s.ctx, id, "Alice")
	s.Require().NoError(err)
	_, err = s.lobbyController.StartGame(s.ctx, id)
	s.Require().NoError(err)

	_, _, err = s.botService.AddBotToLobby(s.ctx, id, "")
	s.ErrorIs(err, model.ErrAlreadyStarted)
}

func (s *ServiceSuite) TestRemoveBot() {
	id := s.createLobby()
	_, botPlayer, err := s.botService.AddBotToLobby(s.ctx, id, "")
	s.Require().NoError(err)
	_, human, err := s.lobbyController.JoinLobby(s.ctx, id, "Alice")
	s.Require().NoError(err)

	_, err = s.botService.RemoveBotFromLobby(s.ctx, id, human.ID)
	s.ErrorIs(err, model.ErrNotABot)

	snapshot, err := s.botService.RemoveBotFromLobby(s.ctx, id, botPlayer.ID)
	s.Require().NoError(err)
	s.Len(snapshot.Players, 1)

	_, err = s.botService.RemoveBotFromLobby(s.ctx, id, botPlayer.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestProcessBotActionsStopsAtHuman() {
	id := s.createLobby()
	_, human, err := s.lobbyController.JoinLobby(s.ctx, id, "Alice")
	s.Require().NoError(err)
	_, botPlayer, err := s.botService.AddBotToLobby(s.ctx, id, "")
	s.Require().NoError(err)
	s.mockRandom.QueueSecret("9876")
	_, err = s.lobbyController.StartGame(s.ctx, id)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(actions, "human holds the first turn")

	_, err = s.lobbyController.SubmitGuess(s.ctx, id, human.ID, "1234")
	s.Require().NoError(err)

	actions, err = s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(actions, 1)
	s.Equal(bot.ActionGuess, actions[0].Type)
	s.Equal(botPlayer.ID, actions[0].PlayerID)
	s.Equal("0123", actions[0].Guess)

	lob, err := s.lobbyController.GetLobby(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(human.ID, lob.CurrentPlayer().ID)
}

func (s *ServiceSuite) TestProcessBotActionsAllBotsPlayUntilRoundDecided() {
	id := s.createLobby()
	_, _, err := s.botService.AddBotToLobby(s.ctx, id, model.BotStrategyConsistent)
	s.Require().NoError(err)
	_, _, err = s.botService.AddBotToLobby(s.ctx, id, model.BotStrategyConsistent)
	s.Require().NoError(err)
	s.mockRandom.QueueSecret("5310")
	_, err = s.lobbyController.StartGame(s.ctx, id)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)

	s.Require().NotEmpty(actions)
	s.Equal(bot.ActionRoundComplete, actions[len(actions)-1].Type)
	lob, err := s.lobbyController.GetLobby(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.PhaseRoundComplete, lob.Phase())
	s.Len(lob.Winners, 1)
}

func (s *ServiceSuite) TestProcessBotActionsIdleWhenNotStarted() {
	id := s.createLobby()
	_, _, err := s.botService.AddBotToLobby(s.ctx, id, "")
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActionsUnknownLobby() {
	_, err := s.botService.ProcessBotActions(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}
