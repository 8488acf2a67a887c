// Package dice implements dice pools and the dice-formula evaluator.
package dice

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand"
	"slices"
)

// MaxExplosions bounds the re-rolls of a single exploding die.
const MaxExplosions = 100

// MaxDiceCount bounds the number of dice in one pool.
const MaxDiceCount = 1000

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

// ErrTooManyDice indicates a pool exceeds MaxDiceCount.
var ErrTooManyDice = fmt.Errorf("at most %d dice may be rolled at once", MaxDiceCount)

// ErrConflictingModifiers indicates a keep modifier and a comparator were
// both requested for the same pool.
var ErrConflictingModifiers = errors.New(`only one "gt|lt|eq|ge|le|ne|kh|kl" modifier permitted`)

// Die is the outcome of one rolled die.
type Die struct {
	// Type identifies the die for display, e.g. "d6".
	Type string
	// Value is the rolled value, including any explosion re-rolls.
	Value int
	// Kept reports whether the die counts toward the pool's total.
	Kept bool
}

// KeepMode selects which dice of a pool are kept by rank.
type KeepMode int

const (
	KeepAll KeepMode = iota
	KeepHighest
	KeepLowest
)

// Comparator marks dice as kept by comparing them to a target.
type Comparator string

const (
	CompareNone         Comparator = ""
	CompareGreater      Comparator = "gt"
	CompareLess         Comparator = "lt"
	CompareEqual        Comparator = "eq"
	CompareGreaterEqual Comparator = "ge"
	CompareLessEqual    Comparator = "le"
	CompareNotEqual     Comparator = "ne"
)

// comparators lists every comparator in the order the parser probes them.
var comparators = []Comparator{
	CompareGreater,
	CompareLess,
	CompareEqual,
	CompareGreaterEqual,
	CompareLessEqual,
	CompareNotEqual,
}

// Match reports whether value satisfies the comparator against target.
func (c Comparator) Match(value, target int) bool {
	switch c {
	case CompareGreater:
		return value > target
	case CompareLess:
		return value < target
	case CompareEqual:
		return value == target
	case CompareGreaterEqual:
		return value >= target
	case CompareLessEqual:
		return value <= target
	case CompareNotEqual:
		return value != target
	default:
		return true
	}
}

// Spec describes a dice pool: how many dice, their size and modifiers.
type Spec struct {
	Count int
	Sides int

	// Explode re-rolls and adds dice that land on Sides.
	Explode bool
	// ExplodeLimit caps re-rolls per die; 0 leaves only MaxExplosions.
	ExplodeLimit int

	Keep      KeepMode
	KeepCount int

	Compare Comparator
	Target  int
}

// Validate checks the spec before rolling.
func (s Spec) Validate() error {
	if s.Sides <= 0 || s.Count <= 0 {
		return ErrInvalidDiceSpec
	}
	if s.Count > MaxDiceCount {
		return ErrTooManyDice
	}
	if s.KeepCount < 0 || s.ExplodeLimit < 0 {
		return ErrInvalidDiceSpec
	}
	if s.Keep != KeepAll && s.Compare != CompareNone {
		return ErrConflictingModifiers
	}
	return nil
}

// DieType returns the display type of the spec's dice, e.g. "d20".
func (s Spec) DieType() string {
	return fmt.Sprintf("d%d", s.Sides)
}

// Pool is the outcome of rolling one Spec.
type Pool struct {
	Spec  Spec
	Dice  []Die
	Total int
}

// Roll rolls a pool described by spec.
//
// # Ordering
//
// Dice appear in Pool.Dice in roll order regardless of modifiers; keep and
// comparator modifiers only flip Die.Kept.
//
// # Totals
//
// With a comparator, Total is the number of kept dice (successes).
// Otherwise Total is the sum of kept dice, which is every die unless a keep
// modifier is present.
//
// Roll is deterministic with respect to rng: the same generator state and
// spec always produce the same Pool.
func Roll(rng *rand.Rand, spec Spec) (Pool, error) {
	if err := spec.Validate(); err != nil {
		return Pool{}, err
	}

	dieType := spec.DieType()
	dice := make([]Die, spec.Count)
	for i := range dice {
		dice[i] = Die{
			Type:  dieType,
			Value: rollExploding(rng, spec),
			Kept:  true,
		}
	}

	if spec.Keep != KeepAll {
		order := make([]int, len(dice))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			if spec.Keep == KeepHighest {
				return cmp.Compare(dice[b].Value, dice[a].Value)
			}
			return cmp.Compare(dice[a].Value, dice[b].Value)
		})
		for rank, idx := range order {
			dice[idx].Kept = rank < spec.KeepCount
		}
	}

	if spec.Compare != CompareNone {
		for i := range dice {
			dice[i].Kept = spec.Compare.Match(dice[i].Value, spec.Target)
		}
	}

	total := 0
	for _, die := range dice {
		if !die.Kept {
			continue
		}
		if spec.Compare != CompareNone {
			total++
		} else {
			total += die.Value
		}
	}

	return Pool{Spec: spec, Dice: dice, Total: total}, nil
}

// rollExploding rolls one die, re-rolling while it lands on its maximum face
// when the spec explodes.
func rollExploding(rng *rand.Rand, spec Spec) int {
	value := rollDie(rng, spec.Sides)
	if !spec.Explode {
		return value
	}
	last := value
	for rerolls := 0; last == spec.Sides && rerolls < MaxExplosions; rerolls++ {
		if spec.ExplodeLimit > 0 && rerolls >= spec.ExplodeLimit {
			break
		}
		last = rollDie(rng, spec.Sides)
		value += last
	}
	return value
}

// rollDie rolls a die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}
