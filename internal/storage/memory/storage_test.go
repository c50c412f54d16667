package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) newLobby(id model.LobbyID) *model.Lobby {
	lobby := model.NewLobby(id, model.DefaultLobbyConfig(), time.Now())
	lobby.Players = append(lobby.Players, model.NewPlayer("p1", "Alice", time.Now()))
	return lobby
}

func (s *StorageSuite) TestCreateAndGetLobby() {
	lobby := s.newLobby("ABC123")

	err := s.storage.CreateLobby(s.ctx, lobby)
	s.Require().NoError(err)

	got, err := s.storage.GetLobby(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(lobby.ID, got.ID)
	s.Equal(lobby.Config, got.Config)
	s.Require().Len(got.Players, 1)
	s.Equal("Alice", got.Players[0].Name)
}

func (s *StorageSuite) TestCreateLobbyRejectsDuplicateID() {
	s.Require().NoError(s.storage.CreateLobby(s.ctx, s.newLobby("ABC123")))

	err := s.storage.CreateLobby(s.ctx, s.newLobby("ABC123"))
	s.ErrorIs(err, storage.ErrLobbyExists)
}

func (s *StorageSuite) TestGetLobbyNotFound() {
	_, err := s.storage.GetLobby(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *StorageSuite) TestStoredLobbyIsIsolatedFromCaller() {
	lobby := s.newLobby("ABC123")
	s.Require().NoError(s.storage.SaveLobby(s.ctx, lobby))

	lobby.Players[0].Name = "Mallory"
	got, err := s.storage.GetLobby(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal("Alice", got.Players[0].Name)

	got.Players[0].Name = "Eve"
	again, err := s.storage.GetLobby(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal("Alice", again.Players[0].Name)
}

func (s *StorageSuite) TestDeleteLobby() {
	s.Require().NoError(s.storage.SaveLobby(s.ctx, s.newLobby("ABC123")))

	s.Require().NoError(s.storage.DeleteLobby(s.ctx, "ABC123"))

	_, err := s.storage.GetLobby(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrLobbyNotFound)
	s.NoError(s.storage.DeleteLobby(s.ctx, "ABC123"))
}

func (s *StorageSuite) TestListLobbies() {
	s.Require().NoError(s.storage.SaveLobby(s.ctx, s.newLobby("BBB")))
	s.Require().NoError(s.storage.SaveLobby(s.ctx, s.newLobby("AAA")))

	ids, err := s.storage.ListLobbies(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.LobbyID{"AAA", "BBB"}, ids)
}
