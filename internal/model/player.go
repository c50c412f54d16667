package model

import (
	"slices"
	"time"
)

// PlayerID uniquely identifies a player across the system
type PlayerID string

// PlayerStats accumulates over a whole match
type PlayerStats struct {
	TotalPoints          int
	RoundsWon            int
	Attempts             int
	BestCorrectPositions int
	BestCorrectDigits    int
}

// Player represents a game participant
type Player struct {
	ID          PlayerID
	Name        string
	IsBot       bool
	BotStrategy string // empty for humans
	Guesses     []Guess
	Stats       PlayerStats
	JoinedAt    time.Time
}

// NewPlayer creates a player with empty history
func NewPlayer(id PlayerID, name string, now time.Time) Player {
	return Player{
		ID:       id,
		Name:     name,
		Guesses:  []Guess{},
		JoinedAt: now,
	}
}

// GuessesInRound returns the player's guesses made during the given round
func (p *Player) GuessesInRound(round int) []Guess {
	var out []Guess
	for _, g := range p.Guesses {
		if g.Round == round {
			out = append(out, g)
		}
	}
	return out
}

// Clone returns a copy with its own guess slice
func (p Player) Clone() Player {
	p.Guesses = slices.Clone(p.Guesses)
	if p.Guesses == nil {
		p.Guesses = []Guess{}
	}
	return p
}
