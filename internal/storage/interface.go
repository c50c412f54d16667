package storage

import (
	"context"
	"errors"

	"github.com/mcoot/codebreaker/internal/model"
)

// ErrLobbyExists is returned by CreateLobby when the ID is already taken
var ErrLobbyExists = errors.New("lobby id already in use")

// Storage defines the interface for lobby persistence.
// Implementations hand out copies: mutating a returned lobby has no effect
// until it is saved again.
type Storage interface {
	// CreateLobby stores a new lobby, failing with ErrLobbyExists on an ID collision
	CreateLobby(ctx context.Context, lobby *model.Lobby) error
	SaveLobby(ctx context.Context, lobby *model.Lobby) error
	GetLobby(ctx context.Context, id model.LobbyID) (*model.Lobby, error)
	DeleteLobby(ctx context.Context, id model.LobbyID) error
	ListLobbies(ctx context.Context) ([]model.LobbyID, error)
}
