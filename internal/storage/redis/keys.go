package redis

import (
	"fmt"

	"github.com/mcoot/codebreaker/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "codebreaker"

// lobbyKey returns the Redis key for a Lobby
func lobbyKey(id model.LobbyID) string {
	return fmt.Sprintf("%s:lobby:%s", keyPrefix, id)
}

// lobbyIndexKey returns the Redis key for the SET of known lobby IDs
func lobbyIndexKey() string {
	return fmt.Sprintf("%s:idx:lobbies", keyPrefix)
}
