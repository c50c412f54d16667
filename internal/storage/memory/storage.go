package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	lobbies map[model.LobbyID]*model.Lobby
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		lobbies: make(map[model.LobbyID]*model.Lobby),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateLobby(ctx context.Context, lobby *model.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[lobby.ID]; ok {
		return storage.ErrLobbyExists
	}
	s.lobbies[lobby.ID] = lobby.Clone()
	return nil
}

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lobby.ID] = lobby.Clone()
	return nil
}

func (s *Storage) GetLobby(ctx context.Context, id model.LobbyID) (*model.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, ok := s.lobbies[id]
	if !ok {
		return nil, model.ErrLobbyNotFound
	}
	return lobby.Clone(), nil
}

func (s *Storage) DeleteLobby(ctx context.Context, id model.LobbyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, id)
	return nil
}

func (s *Storage) ListLobbies(ctx context.Context) ([]model.LobbyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.LobbyID, 0, len(s.lobbies))
	for id := range s.lobbies {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
