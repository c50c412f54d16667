package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/codebreaker/internal/model"
)

// Guess represents one submitted guess in API responses
type Guess struct {
	Value            string `json:"value"`
	CorrectPositions int    `json:"correctPositions"`
	CorrectDigits    int    `json:"correctDigits"`
	Round            int    `json:"round"`
}

// GuessFromModel converts a model.Guess to a response Guess
func GuessFromModel(g model.Guess) Guess {
	return Guess{
		Value:            g.Value,
		CorrectPositions: g.Result.CorrectPositions,
		CorrectDigits:    g.Result.CorrectDigits,
		Round:            g.Round,
	}
}

// Stats represents a player's accumulated match statistics
type Stats struct {
	TotalPoints          int `json:"totalPoints"`
	RoundsWon            int `json:"roundsWon"`
	Attempts             int `json:"attempts"`
	BestCorrectPositions int `json:"bestCorrectPositions"`
	BestCorrectDigits    int `json:"bestCorrectDigits"`
}

// Player represents a player in API responses
type Player struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	IsBot       bool    `json:"isBot,omitempty"`
	BotStrategy string  `json:"botStrategy,omitempty"`
	Guesses     []Guess `json:"guesses"`
	Stats       Stats   `json:"stats"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	guesses := make([]Guess, len(p.Guesses))
	for i, g := range p.Guesses {
		guesses[i] = GuessFromModel(g)
	}
	return Player{
		ID:          string(p.ID),
		Name:        p.Name,
		IsBot:       p.IsBot,
		BotStrategy: p.BotStrategy,
		Guesses:     guesses,
		Stats:       Stats(p.Stats),
	}
}

// Event describes the mutation that produced a snapshot
type Event struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId,omitempty"`
	Round    int    `json:"round,omitempty"`
}

// Lobby is the full lobby snapshot pushed to clients. The secret is never included.
type Lobby struct {
	ID             string    `json:"id"`
	Version        int64     `json:"version"`
	NumGames       int       `json:"numGames"`
	MaxWinners     int       `json:"maxWinners"`
	ShowAllGuesses bool      `json:"showAllGuesses"`
	CodeLength     int       `json:"codeLength"`
	TurnIndex      int       `json:"turnIndex"`
	Winners        []string  `json:"winners"`
	Players        []Player  `json:"players"`
	Started        bool      `json:"started"`
	RoundNumber    int       `json:"roundNumber"`
	Phase          string    `json:"phase"`
	LastEvent      Event     `json:"lastEvent"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LobbyFromModel converts a model.Lobby to a response Lobby
func LobbyFromModel(l *model.Lobby) Lobby {
	players := make([]Player, len(l.Players))
	for i := range l.Players {
		players[i] = PlayerFromModel(&l.Players[i])
	}
	winners := make([]string, len(l.Winners))
	for i, w := range l.Winners {
		winners[i] = string(w)
	}
	return Lobby{
		ID:             string(l.ID),
		Version:        l.Version,
		NumGames:       l.Config.NumGames,
		MaxWinners:     l.Config.MaxWinners,
		ShowAllGuesses: l.Config.ShowAllGuesses,
		CodeLength:     l.Config.CodeLength,
		TurnIndex:      l.TurnIndex,
		Winners:        winners,
		Players:        players,
		Started:        l.Started,
		RoundNumber:    l.RoundNumber,
		Phase:          string(l.Phase()),
		LastEvent: Event{
			Type:     string(l.LastEvent.Type),
			PlayerID: string(l.LastEvent.PlayerID),
			Round:    l.LastEvent.Round,
		},
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// CreateLobbyResponse carries the new lobby's ID alongside its snapshot
type CreateLobbyResponse struct {
	LobbyID string `json:"lobbyId"`
	Lobby
}

// JoinLobbyResponse is returned when a player (or bot) joins
type JoinLobbyResponse struct {
	Lobby  Lobby  `json:"lobby"`
	Player Player `json:"player"`
}

// JoinLobbyResponseFromModel builds a JoinLobbyResponse
func JoinLobbyResponseFromModel(l *model.Lobby, p *model.Player) JoinLobbyResponse {
	return JoinLobbyResponse{
		Lobby:  LobbyFromModel(l),
		Player: PlayerFromModel(p),
	}
}

// Ack acknowledges an operation with no further payload
type Ack struct {
	OK bool `json:"ok"`
}

// HealthResponse is the health check response body
type HealthResponse struct {
	Status string `json:"status"`
}

// Push message types
const (
	PushTypeSnapshot   = "snapshot"
	PushTypeSuperseded = "superseded"
)

// Push is the envelope for messages on the WebSocket push channel
type Push struct {
	Type  string          `json:"type"`
	Lobby json.RawMessage `json:"lobby,omitempty"`
}
