package generator

import (
	"context"
	"math/rand"
	"strings"

	"github.com/louisbranch/tablegen/internal/dice"
)

// Roll evaluates a dice formula. The formula comes from the joined args,
// or from the configured source when no args are given.
type Roll struct {
	Base
	formula string
}

// NewRoll builds a roll generator. cfg.Source, when set, is a fixed formula
// rather than a path.
func NewRoll(_ context.Context, cfg Config) (Generator, error) {
	return &Roll{Base: NewBase(cfg), formula: strings.TrimSpace(cfg.Source)}, nil
}

// Generate rolls the formula. The output text is the numeric result and the
// trace holds every die rolled.
func (r *Roll) Generate(ctx context.Context, rng *rand.Rand, args []string) (Output, error) {
	if err := checkCall(ctx, rng); err != nil {
		return Output{}, err
	}
	formula := strings.Join(args, "")
	if strings.TrimSpace(formula) == "" {
		formula = r.formula
	}
	if formula == "" {
		return Output{}, ErrEmptyFormula
	}
	node, err := dice.Parse(formula, rng)
	if err != nil {
		return Output{}, err
	}
	return Output{Text: node.String(), Roll: dice.Rolls(node)}, nil
}
