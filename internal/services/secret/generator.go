package secret

import (
	"fmt"

	"github.com/mcoot/codebreaker/internal/dependencies/random"
	"github.com/mcoot/codebreaker/internal/model"
)

const digits = "0123456789"

// Generator produces hidden codes of pairwise-distinct digits
type Generator struct {
	random random.Random
}

// New creates a new Generator
func New(random random.Random) *Generator {
	return &Generator{random: random}
}

// Generate returns codeLength distinct digits, uniform over all permutations.
// Each position draws an index into the pool of digits not yet used.
func (g *Generator) Generate(codeLength int) (string, error) {
	if codeLength < 1 || codeLength > model.MaxCodeLength {
		return "", fmt.Errorf("%w: cannot build a code of %d distinct digits", model.ErrInvalidConfig, codeLength)
	}

	pool := []byte(digits)
	code := make([]byte, codeLength)
	for i := range code {
		idx := g.random.Intn(len(pool))
		code[i] = pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return string(code), nil
}
