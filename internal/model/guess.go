package model

import "time"

// GuessResult is the peg feedback for a guess
type GuessResult struct {
	CorrectPositions int
	CorrectDigits    int
}

// Guess is an immutable record of one submission
type Guess struct {
	Value       string
	Result      GuessResult
	Round       int
	SubmittedAt time.Time
}

// Solved reports whether every position matched
func (g Guess) Solved() bool {
	return g.Result.CorrectPositions == len(g.Value)
}
