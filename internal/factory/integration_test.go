package factory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codebreaker/internal/api/response"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/push"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *IntegrationSuite) createLobby(cfg model.LobbyConfig, secret string) model.LobbyID {
	s.app.QueueLobby("LOBBY1", secret)
	lobby, err := s.app.LobbyController.CreateLobby(s.ctx, cfg)
	s.Require().NoError(err)
	return lobby.ID
}

func (s *IntegrationSuite) join(id model.LobbyID, name string) model.PlayerID {
	_, player, err := s.app.LobbyController.JoinLobby(s.ctx, id, name)
	s.Require().NoError(err)
	return player.ID
}

func (s *IntegrationSuite) guess(id model.LobbyID, playerID model.PlayerID, value string) *model.Lobby {
	lobby, err := s.app.LobbyController.SubmitGuess(s.ctx, id, playerID, value)
	s.Require().NoError(err)
	return lobby
}

func (s *IntegrationSuite) nextFrame(client *push.Client) response.Lobby {
	select {
	case frame, ok := <-client.Frames():
		s.Require().True(ok, "push channel closed")
		var lobby response.Lobby
		s.Require().NoError(json.Unmarshal(frame.Payload, &lobby))
		return lobby
	case <-time.After(time.Second):
		s.FailNow("no push frame received")
		return response.Lobby{}
	}
}

// Test: a full two round match from creation to the finished phase
func (s *IntegrationSuite) TestCompleteMatchFlow() {
	cfg := model.DefaultLobbyConfig()
	cfg.NumGames = 2
	id := s.createLobby(cfg, "1234")

	alice := s.join(id, "Alice")
	bob := s.join(id, "Bob")

	// Round 1
	lobby, err := s.app.LobbyController.StartGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.PhaseActive, lobby.Phase())
	s.Equal(1, lobby.RoundNumber)
	s.Equal("1234", lobby.SecretCode)

	lobby = s.guess(id, alice, "1243")
	s.Equal(model.GuessResult{CorrectPositions: 2, CorrectDigits: 2}, lobby.Players[0].Guesses[0].Result)
	s.Equal(1, lobby.TurnIndex)

	_, err = s.app.LobbyController.SubmitGuess(s.ctx, id, alice, "1234")
	s.ErrorIs(err, model.ErrNotYourTurn)

	lobby = s.guess(id, bob, "1234")
	s.Equal([]model.PlayerID{bob}, lobby.Winners)
	s.Equal(model.PhaseRoundComplete, lobby.Phase())
	s.Equal(model.EventRoundComplete, lobby.LastEvent.Type)

	_, err = s.app.LobbyController.SubmitGuess(s.ctx, id, alice, "5678")
	s.ErrorIs(err, model.ErrRoundComplete)

	// Round 2
	s.app.MockRandom.QueueSecret("9876")
	lobby, err = s.app.LobbyController.RestartGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(2, lobby.RoundNumber)
	s.Empty(lobby.Winners)
	s.Equal(0, lobby.TurnIndex)
	s.Equal(1, lobby.GetPlayer(bob).Stats.RoundsWon)

	lobby = s.guess(id, alice, "9876")
	s.Equal(model.PhaseFinished, lobby.Phase())
	s.Equal(model.EventMatchFinished, lobby.LastEvent.Type)

	_, err = s.app.LobbyController.SubmitGuess(s.ctx, id, bob, "9876")
	s.ErrorIs(err, model.ErrMatchFinished)

	// Guesses accumulate across rounds, stats persist
	s.Len(lobby.GetPlayer(alice).Guesses, 2)
	s.Equal(1, lobby.GetPlayer(alice).Stats.RoundsWon)
	s.Equal(2, lobby.GetPlayer(alice).Stats.Attempts)

	// A finished match can be restarted from round one
	s.app.MockRandom.QueueSecret("0123")
	lobby, err = s.app.LobbyController.RestartGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, lobby.RoundNumber)
	s.Equal(model.PhaseActive, lobby.Phase())
}

// Test: subscribers get the current snapshot then every mutation in order
func (s *IntegrationSuite) TestPushDeliversEveryMutation() {
	id := s.createLobby(model.DefaultLobbyConfig(), "1234")
	alice := s.join(id, "Alice")

	client, err := s.app.ConnectionManager.Subscribe(s.ctx, id, alice, push.TransportSSE)
	s.Require().NoError(err)
	defer s.app.ConnectionManager.Unsubscribe(client)

	initial := s.nextFrame(client)
	s.Equal(int64(2), initial.Version)
	s.Len(initial.Players, 1)

	bob := s.join(id, "Bob")
	joined := s.nextFrame(client)
	s.Equal(int64(3), joined.Version)
	s.Equal(string(model.EventPlayerJoined), joined.LastEvent.Type)

	_, err = s.app.LobbyController.StartGame(s.ctx, id)
	s.Require().NoError(err)
	started := s.nextFrame(client)
	s.Equal("active", started.Phase)

	s.guess(id, alice, "5678")
	guessed := s.nextFrame(client)
	s.Equal(1, guessed.TurnIndex)
	s.Equal(string(model.EventGuessSubmitted), guessed.LastEvent.Type)

	_, err = s.app.LobbyController.LeaveLobby(s.ctx, id, bob)
	s.Require().NoError(err)
	left := s.nextFrame(client)
	s.Len(left.Players, 1)
	s.Equal(0, left.TurnIndex)
	s.Equal(int64(6), left.Version)
}

// Test: a failed operation publishes nothing
func (s *IntegrationSuite) TestRejectedGuessPublishesNothing() {
	id := s.createLobby(model.DefaultLobbyConfig(), "1234")
	alice := s.join(id, "Alice")
	bob := s.join(id, "Bob")
	_, err := s.app.LobbyController.StartGame(s.ctx, id)
	s.Require().NoError(err)

	client, err := s.app.ConnectionManager.Subscribe(s.ctx, id, alice, push.TransportSSE)
	s.Require().NoError(err)
	defer s.app.ConnectionManager.Unsubscribe(client)
	before := s.nextFrame(client)

	_, err = s.app.LobbyController.SubmitGuess(s.ctx, id, bob, "5678")
	s.ErrorIs(err, model.ErrNotYourTurn)
	_, err = s.app.LobbyController.SubmitGuess(s.ctx, id, alice, "1123")
	s.ErrorIs(err, model.ErrInvalidGuess)

	select {
	case <-client.Frames():
		s.Fail("unexpected push after rejected guesses")
	case <-time.After(50 * time.Millisecond):
	}

	lobby, err := s.app.LobbyController.GetLobby(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(before.Version, lobby.Version)
	s.Empty(lobby.GetPlayer(alice).Guesses)
}

// Test: bots take their turns until a human holds the turn
func (s *IntegrationSuite) TestBotsPlayAlongsideHumans() {
	id := s.createLobby(model.DefaultLobbyConfig(), "0123")
	alice := s.join(id, "Alice")

	_, bot, err := s.app.BotService.AddBotToLobby(s.ctx, id, model.BotStrategyConsistent)
	s.Require().NoError(err)
	s.True(bot.IsBot)
	s.Equal("Bot 1 (Consistent)", bot.Name)

	_, err = s.app.LobbyController.StartGame(s.ctx, id)
	s.Require().NoError(err)

	s.guess(id, alice, "4567")
	actions, err := s.app.BotService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)

	// The consistent bot opens with the lowest candidate, which is the secret
	s.Require().Len(actions, 2)
	s.Equal("0123", actions[0].Guess)
	s.Equal(4, actions[0].Result.CorrectPositions)

	lobby, err := s.app.LobbyController.GetLobby(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{bot.ID}, lobby.Winners)
	s.Equal(model.PhaseRoundComplete, lobby.Phase())
}

// Test: the janitor removes abandoned lobbies and their hubs
func (s *IntegrationSuite) TestJanitorDisposesAbandonedLobby() {
	id := s.createLobby(model.DefaultLobbyConfig(), "1234")
	alice := s.join(id, "Alice")

	client, err := s.app.ConnectionManager.Subscribe(s.ctx, id, alice, push.TransportSSE)
	s.Require().NoError(err)
	s.nextFrame(client)

	_, err = s.app.LobbyController.LeaveLobby(s.ctx, id, alice)
	s.Require().NoError(err)
	s.app.MockClock.Advance(DefaultIdleTimeout + time.Minute)

	result, err := s.app.Janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.LobbiesRemoved)

	_, err = s.app.LobbyController.GetLobby(s.ctx, id)
	s.ErrorIs(err, model.ErrLobbyNotFound)
	s.Nil(s.app.HubManager.GetHub(id))

	// The remaining connection is closed
	for range client.Frames() {
	}
}
