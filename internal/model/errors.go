package model

import "errors"

// Common errors used across the application
var (
	// Lobby errors
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrInvalidConfig = errors.New("invalid lobby configuration")
	ErrNoPlayers     = errors.New("lobby has no players")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidName    = errors.New("invalid player name")

	// Round and match state errors
	ErrAlreadyStarted = errors.New("game has already started")
	ErrNotStarted     = errors.New("game has not started")
	ErrRoundComplete  = errors.New("round is complete, waiting for restart")
	ErrMatchFinished  = errors.New("match is finished")

	// Guess errors
	ErrNotYourTurn  = errors.New("not this player's turn")
	ErrInvalidGuess = errors.New("invalid guess")

	// Bot errors
	ErrUnknownBotStrategy = errors.New("unknown bot strategy")
	ErrNotABot            = errors.New("player is not a bot")
)
