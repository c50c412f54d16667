package bot

import (
	"strings"

	"github.com/mcoot/codebreaker/internal/dependencies/random"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/secret"
)

// RandomStrategy guesses any code of distinct digits
type RandomStrategy struct {
	generator *secret.Generator
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{generator: secret.New(rnd)}
}

// ChooseGuess returns a random distinct-digit code of the lobby's length
func (s *RandomStrategy) ChooseGuess(lobby *model.Lobby, bot *model.Player) string {
	guess, err := s.generator.Generate(lobby.Config.CodeLength)
	if err != nil {
		// Only reachable with a corrupt config; the arbiter will reject it
		return strings.Repeat("0", lobby.Config.CodeLength)
	}
	return guess
}
