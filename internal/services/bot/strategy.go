package bot

import "github.com/mcoot/codebreaker/internal/model"

// Strategy defines how a bot chooses its next guess
type Strategy interface {
	// ChooseGuess returns a well-formed guess for the bot's turn
	ChooseGuess(lobby *model.Lobby, bot *model.Player) string
}
