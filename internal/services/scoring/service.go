package scoring

import (
	"fmt"

	"github.com/mcoot/codebreaker/internal/model"
)

const (
	// PointsPerCorrectPosition is awarded on every guess for each exact match
	PointsPerCorrectPosition = 10
	// SolveBonus is awarded when a guess puts the player into the round's winners
	SolveBonus = 50
)

// Service scores guesses against a secret
type Service struct{}

// New creates a new ScoringService
func New() *Service {
	return &Service{}
}

// Evaluate compares a guess to the secret. Both must be the same length and
// made of distinct digits, which makes the set-intersection form exact.
func (s *Service) Evaluate(secret, guess string) model.GuessResult {
	var inSecret [10]bool
	for i := 0; i < len(secret); i++ {
		if d := secret[i] - '0'; d < 10 {
			inSecret[d] = true
		}
	}

	var result model.GuessResult
	shared := 0
	for i := 0; i < len(guess); i++ {
		if d := guess[i] - '0'; d < 10 && inSecret[d] {
			shared++
		}
		if i < len(secret) && guess[i] == secret[i] {
			result.CorrectPositions++
		}
	}
	result.CorrectDigits = shared - result.CorrectPositions
	return result
}

// ValidateGuess checks length, digit-only content and digit uniqueness
func (s *Service) ValidateGuess(raw string, codeLength int) error {
	if len(raw) != codeLength {
		return fmt.Errorf("%w: expected %d digits, got %d characters", model.ErrInvalidGuess, codeLength, len(raw))
	}
	var seen [10]bool
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: %q is not a digit", model.ErrInvalidGuess, c)
		}
		if seen[c-'0'] {
			return fmt.Errorf("%w: digit %q repeated", model.ErrInvalidGuess, c)
		}
		seen[c-'0'] = true
	}
	return nil
}

// Points returns the reward for one guess
func (s *Service) Points(result model.GuessResult, newWinner bool) int {
	points := result.CorrectPositions * PointsPerCorrectPosition
	if newWinner {
		points += SolveBonus
	}
	return points
}
