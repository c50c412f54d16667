package model

import (
	"fmt"
	"slices"
	"time"
)

// LobbyID identifies a lobby; it is the code players share to join
type LobbyID string

// Phase is the derived position of a lobby in its round lifecycle
type Phase string

const (
	PhaseWaiting       Phase = "waiting"        // Not started yet
	PhaseActive        Phase = "active"         // Round in progress
	PhaseRoundComplete Phase = "round_complete" // Round decided, awaiting restart
	PhaseFinished      Phase = "finished"       // Final round decided
)

// MaxCodeLength is bounded by the number of distinct decimal digits
const MaxCodeLength = 10

// LobbyConfig holds the settings chosen when a lobby is created
type LobbyConfig struct {
	NumGames       int
	MaxWinners     int
	ShowAllGuesses bool
	CodeLength     int
}

// DefaultLobbyConfig returns the configuration the web client uses
func DefaultLobbyConfig() LobbyConfig {
	return LobbyConfig{
		NumGames:       5,
		MaxWinners:     1,
		ShowAllGuesses: true,
		CodeLength:     4,
	}
}

// Validate checks the configuration bounds
func (c LobbyConfig) Validate() error {
	if c.NumGames < 1 {
		return fmt.Errorf("%w: numGames must be at least 1", ErrInvalidConfig)
	}
	if c.MaxWinners < 1 {
		return fmt.Errorf("%w: maxWinners must be at least 1", ErrInvalidConfig)
	}
	if c.CodeLength < 1 || c.CodeLength > MaxCodeLength {
		return fmt.Errorf("%w: codeLength must be between 1 and %d", ErrInvalidConfig, MaxCodeLength)
	}
	return nil
}

// Lobby is one game session: its players, turn state and the current secret
type Lobby struct {
	ID          LobbyID
	Config      LobbyConfig
	Players     []Player // join order
	TurnIndex   int
	Winners     []PlayerID // solvers of the current round, in order
	Started     bool
	SecretCode  string // never sent to clients
	RoundNumber int
	Version     int64
	LastEvent   Event
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewLobby returns an empty, unstarted lobby
func NewLobby(id LobbyID, cfg LobbyConfig, now time.Time) *Lobby {
	return &Lobby{
		ID:        id,
		Config:    cfg,
		Players:   []Player{},
		Winners:   []PlayerID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Phase derives the lifecycle phase from the lobby fields
func (l *Lobby) Phase() Phase {
	if !l.Started {
		return PhaseWaiting
	}
	if !l.RoundDecided() {
		return PhaseActive
	}
	if l.RoundNumber >= l.Config.NumGames {
		return PhaseFinished
	}
	return PhaseRoundComplete
}

// RoundDecided reports whether the current round has enough winners to close.
// A round also closes once every remaining player has solved it.
func (l *Lobby) RoundDecided() bool {
	if len(l.Winners) >= l.Config.MaxWinners {
		return true
	}
	if len(l.Players) == 0 {
		return false
	}
	for _, p := range l.Players {
		if !l.IsWinner(p.ID) {
			return false
		}
	}
	return true
}

// IsWinner reports whether the player has solved the current round
func (l *Lobby) IsWinner(playerID PlayerID) bool {
	return slices.Contains(l.Winners, playerID)
}

// PlayerIndex returns the position of a player in join order, or -1
func (l *Lobby) PlayerIndex(playerID PlayerID) int {
	return slices.IndexFunc(l.Players, func(p Player) bool { return p.ID == playerID })
}

// GetPlayer returns the player with the given ID, or nil if not found
func (l *Lobby) GetPlayer(playerID PlayerID) *Player {
	if idx := l.PlayerIndex(playerID); idx >= 0 {
		return &l.Players[idx]
	}
	return nil
}

// CurrentPlayer returns the player holding the turn, or nil for an empty lobby
func (l *Lobby) CurrentPlayer() *Player {
	if len(l.Players) == 0 || l.TurnIndex < 0 || l.TurnIndex >= len(l.Players) {
		return nil
	}
	return &l.Players[l.TurnIndex]
}

// AdvanceTurn passes the turn to the next player in join order
func (l *Lobby) AdvanceTurn() {
	if len(l.Players) == 0 {
		l.TurnIndex = 0
		return
	}
	l.TurnIndex = (l.TurnIndex + 1) % len(l.Players)
}

// RemovePlayer removes a player and re-points the turn at whoever now
// occupies the holder's slot. Returns false if the player was not present.
func (l *Lobby) RemovePlayer(playerID PlayerID) bool {
	idx := l.PlayerIndex(playerID)
	if idx < 0 {
		return false
	}
	l.Players = slices.Delete(l.Players, idx, idx+1)
	if idx < l.TurnIndex {
		l.TurnIndex--
	}
	if l.TurnIndex >= len(l.Players) {
		l.TurnIndex = 0
	}
	return true
}

// Clone returns a deep copy that shares no slices with the receiver
func (l *Lobby) Clone() *Lobby {
	if l == nil {
		return nil
	}
	c := *l
	c.Players = make([]Player, len(l.Players))
	for i := range l.Players {
		c.Players[i] = l.Players[i].Clone()
	}
	c.Winners = slices.Clone(l.Winners)
	if c.Winners == nil {
		c.Winners = []PlayerID{}
	}
	return &c
}
