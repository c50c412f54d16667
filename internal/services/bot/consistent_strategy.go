package bot

import (
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/scoring"
)

const (
	// exhaustiveMaxLength is the longest code searched exhaustively (10P6 candidates)
	exhaustiveMaxLength = 6
	// maxSamples bounds the random search for longer codes
	maxSamples = 5000
)

// ConsistentStrategy only guesses codes that could still be the secret given
// the feedback the bot has seen this round
type ConsistentStrategy struct {
	scoring  *scoring.Service
	fallback *RandomStrategy
}

// NewConsistentStrategy creates a new ConsistentStrategy
func NewConsistentStrategy(scoringService *scoring.Service, fallback *RandomStrategy) *ConsistentStrategy {
	return &ConsistentStrategy{scoring: scoringService, fallback: fallback}
}

// ChooseGuess returns the lowest consistent code for short codes, or a
// sampled consistent code for long ones
func (s *ConsistentStrategy) ChooseGuess(lobby *model.Lobby, bot *model.Player) string {
	history := bot.GuessesInRound(lobby.RoundNumber)
	length := lobby.Config.CodeLength

	if length <= exhaustiveMaxLength {
		if guess, ok := s.search(make([]byte, 0, length), length, 0, history); ok {
			return guess
		}
		return s.fallback.ChooseGuess(lobby, bot)
	}

	for range maxSamples {
		candidate := s.fallback.ChooseGuess(lobby, bot)
		if s.consistent(candidate, history) {
			return candidate
		}
	}
	return s.fallback.ChooseGuess(lobby, bot)
}

func (s *ConsistentStrategy) search(prefix []byte, length int, used uint16, history []model.Guess) (string, bool) {
	if len(prefix) == length {
		candidate := string(prefix)
		return candidate, s.consistent(candidate, history)
	}
	for d := byte(0); d < 10; d++ {
		if used&(1<<d) != 0 {
			continue
		}
		if guess, ok := s.search(append(prefix, '0'+d), length, used|1<<d, history); ok {
			return guess, true
		}
	}
	return "", false
}

// consistent reports whether candidate, were it the secret, would have
// produced exactly the recorded feedback for every earlier guess
func (s *ConsistentStrategy) consistent(candidate string, history []model.Guess) bool {
	for _, g := range history {
		if g.Solved() {
			return candidate == g.Value
		}
		if s.scoring.Evaluate(candidate, g.Value) != g.Result {
			return false
		}
	}
	return true
}
