package request

// CreateLobbyRequest is the request body for creating a lobby.
// Omitted fields take the defaults used by the web client.
type CreateLobbyRequest struct {
	NumGames       *int  `json:"numGames"`
	MaxWinners     *int  `json:"maxWinners"`
	ShowAllGuesses *bool `json:"showAllGuesses"`
	CodeLength     *int  `json:"codeLength"`
}

// JoinLobbyRequest is the request body for joining a lobby
type JoinLobbyRequest struct {
	Name string `json:"name"`
}

// GuessRequest is the request body for submitting a guess
type GuessRequest struct {
	PlayerID string `json:"playerId"`
	Guess    string `json:"guess"`
}

// LeaveLobbyRequest is the request body for leaving a lobby
type LeaveLobbyRequest struct {
	PlayerID string `json:"playerId"`
}

// AddBotRequest is the request body for adding a bot
type AddBotRequest struct {
	Strategy string `json:"strategy,omitempty"`
}
