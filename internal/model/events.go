package model

import "time"

// EventType identifies the mutation that produced a lobby snapshot
type EventType string

const (
	EventLobbyCreated   EventType = "lobby_created"
	EventPlayerJoined   EventType = "player_joined"
	EventPlayerLeft     EventType = "player_left"
	EventRoundStarted   EventType = "round_started"
	EventGuessSubmitted EventType = "guess_submitted"
	EventRoundComplete  EventType = "round_complete"
	EventMatchFinished  EventType = "match_finished"
)

// Event describes the last change applied to a lobby
type Event struct {
	Type      EventType
	PlayerID  PlayerID // empty for lobby-wide events
	Round     int
	Timestamp time.Time
}
