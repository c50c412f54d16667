package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codebreaker/internal/dependencies/mocks"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/push"
	"github.com/mcoot/codebreaker/internal/services/game"
	"github.com/mcoot/codebreaker/internal/services/lobby"
	"github.com/mcoot/codebreaker/internal/services/scoring"
	"github.com/mcoot/codebreaker/internal/services/secret"
	"github.com/mcoot/codebreaker/internal/storage/memory"
	"github.com/mcoot/codebreaker/internal/testutil"
)

const idleTimeout = 30 * time.Minute

type JanitorSuite struct {
	suite.Suite
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	hubs        *push.HubManager
	connections *push.ConnectionManager
	lobbies     *lobby.Controller
	janitor     *Janitor
	ctx         context.Context
}

func TestJanitorSuite(t *testing.T) {
	suite.Run(t, new(JanitorSuite))
}

func (s *JanitorSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.hubs = push.NewHubManager(logger)
	gameController := game.NewController(secret.New(s.random), scoring.New(), s.clock, logger)
	s.lobbies = lobby.NewController(memory.New(), gameController, push.NewBroadcaster(s.hubs, logger), s.clock, s.random, logger)
	s.connections = push.NewConnectionManager(s.hubs, s.lobbies, 0, logger)
	s.janitor = New(s.lobbies, s.connections, s.clock, idleTimeout, time.Minute, logger)
	s.ctx = context.Background()
}

func (s *JanitorSuite) createLobby(code string) model.LobbyID {
	s.random.QueueString(code)
	created, err := s.lobbies.CreateLobby(s.ctx, model.DefaultLobbyConfig())
	s.Require().NoError(err)
	return created.ID
}

func (s *JanitorSuite) TestSweep_RemovesIdleEmptyLobbies() {
	idle := s.createLobby("IDLE01")
	s.clock.Advance(idleTimeout + time.Minute)
	fresh := s.createLobby("FRESH1")

	result, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, result.Checked)
	s.Equal(1, result.LobbiesRemoved)

	_, err = s.lobbies.GetLobby(s.ctx, idle)
	s.ErrorIs(err, model.ErrLobbyNotFound)
	_, err = s.lobbies.GetLobby(s.ctx, fresh)
	s.NoError(err)
}

func (s *JanitorSuite) TestSweep_KeepsLobbiesWithPlayers() {
	id := s.createLobby("BUSY01")
	_, _, err := s.lobbies.JoinLobby(s.ctx, id, "Alice")
	s.Require().NoError(err)
	s.clock.Advance(2 * idleTimeout)

	result, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, result.LobbiesRemoved)

	_, err = s.lobbies.GetLobby(s.ctx, id)
	s.NoError(err)
}

func (s *JanitorSuite) TestSweep_RemovesLobbyEmptiedByLeave() {
	id := s.createLobby("LEFT01")
	_, player, err := s.lobbies.JoinLobby(s.ctx, id, "Alice")
	s.Require().NoError(err)
	_, err = s.lobbies.LeaveLobby(s.ctx, id, player.ID)
	s.Require().NoError(err)

	result, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, result.LobbiesRemoved, "recently touched lobby should survive")

	s.clock.Advance(idleTimeout + time.Second)
	result, err = s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.LobbiesRemoved)
}

func (s *JanitorSuite) TestSweep_RemovesEmptyHubs() {
	id := s.createLobby("HUBS01")
	_, player, err := s.lobbies.JoinLobby(s.ctx, id, "Alice")
	s.Require().NoError(err)

	client, err := s.connections.Subscribe(s.ctx, id, player.ID, push.TransportSSE)
	s.Require().NoError(err)
	s.NotNil(s.hubs.GetHub(id))

	result, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, result.HubsRemoved)

	s.connections.Unsubscribe(client)
	for range client.Frames() {
	}

	result, err = s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.HubsRemoved)
	s.Nil(s.hubs.GetHub(id))
}

func (s *JanitorSuite) TestRun_StopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.janitor.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("janitor did not stop")
	}
}
