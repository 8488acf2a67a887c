// Package generator defines named text generators and the collection that
// resolves them by id.
package generator

import (
	"context"
	"errors"
	"math/rand"

	"github.com/louisbranch/tablegen/internal/dice"
	"github.com/louisbranch/tablegen/internal/loader"
	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// ErrEmptyFormula indicates a roll generator was invoked without a formula.
var ErrEmptyFormula = apperrors.New(apperrors.CodeFormulaEmpty, "no formula given")

// errRandRequired is returned when Generate is called without a random source.
var errRandRequired = errors.New("random generator is required")

// Output is the result of one generator invocation.
type Output struct {
	// Text may embed references of the form {id args}.
	Text string
	// Roll lists the dice rolled to produce Text, in roll order.
	Roll []dice.Die
}

// Generator produces text from argument tokens.
//
// Implementations are immutable after construction. All randomness comes
// from the rng passed to Generate, so one Generator may serve concurrent
// callers that each own their rng.
type Generator interface {
	ID() string
	Generate(ctx context.Context, rng *rand.Rand, args []string) (Output, error)
}

// Config describes one generator of a collection.
type Config struct {
	ID     string
	Type   string
	Name   string
	Source string
	// Dir is the directory relative sources resolve against.
	Dir string
}

// SourcePath returns Source resolved against Dir.
func (c Config) SourcePath() string {
	return loader.ResolvePath(c.Dir, c.Source)
}

// Base carries the configuration shared by every generator kind.
type Base struct {
	config Config
}

// NewBase wraps a generator configuration.
func NewBase(cfg Config) Base {
	return Base{config: cfg}
}

// ID returns the generator id.
func (b Base) ID() string { return b.config.ID }

// Config returns the generator configuration.
func (b Base) Config() Config { return b.config }

func checkCall(ctx context.Context, rng *rand.Rand) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if rng == nil {
		return errRandRequired
	}
	return nil
}
