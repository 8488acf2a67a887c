package dice

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
)

// Parse parses and evaluates a dice formula, rolling every dice term with
// rng as it is encountered.
//
// Grammar (whitespace is ignored and letters are case-insensitive):
//
//	expression := term (('+' | '-') term)*
//	term       := factor (('*' | '/') factor)*
//	factor     := '(' expression ')' | dice | number
//	dice       := [count]'d'sides modifier*
//	modifier   := 'x'[N] | 'kh'N | 'kl'N | 'gt'N | 'lt'N | 'eq'N | 'ge'N | 'le'N | 'ne'N
//
// Both binary levels are left-associative: "1-2-3" is -4 and "8/4/2" is 1.
// Any failure, including unconsumed trailing input, is a *SyntaxError.
func Parse(formula string, rng *rand.Rand) (Node, error) {
	if rng == nil {
		return nil, errors.New("random generator is required")
	}
	p := &parser{
		original: formula,
		input:    normalizeFormula(formula),
		rng:      rng,
	}
	if p.input == "" {
		return nil, p.errorf("empty formula")
	}
	node, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorf("unexpected input")
	}
	return node, nil
}

// normalizeFormula strips all whitespace and folds case.
func normalizeFormula(formula string) string {
	return strings.ToLower(strings.Join(strings.Fields(formula), ""))
}

type parser struct {
	original string
	input    string
	pos      int
	rng      *rand.Rand
}

func (p *parser) atEnd() bool { return p.pos >= len(p.input) }

func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) remaining() string { return p.input[p.pos:] }

func (p *parser) accept(c byte) bool {
	if p.peek() == c && !p.atEnd() {
		p.pos++
		return true
	}
	return false
}

func (p *parser) acceptPrefix(prefix string) bool {
	if strings.HasPrefix(p.remaining(), prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

// digits consumes a run of ASCII digits and returns it.
func (p *parser) digits() string {
	start := p.pos
	for !p.atEnd() && isDigit(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) errorf(reason string) *SyntaxError {
	return &SyntaxError{
		Formula:   p.original,
		Remaining: p.remaining(),
		Reason:    reason,
	}
}

func (p *parser) wrap(reason string, err error) *SyntaxError {
	syntaxErr := p.errorf(reason)
	syntaxErr.Err = err
	return syntaxErr
}

func (p *parser) expression() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch {
		case p.accept('+'):
			op = OpAdd
		case p.accept('-'):
			op = OpSub
		default:
			return left, nil
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = NewOperatorNode(left, op, right)
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch {
		case p.accept('*'):
			op = OpMul
		case p.accept('/'):
			op = OpDiv
		default:
			return left, nil
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = NewOperatorNode(left, op, right)
	}
}

func (p *parser) factor() (Node, error) {
	if p.accept('(') {
		node, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, p.errorf("missing closing parenthesis")
		}
		return node, nil
	}

	start := p.pos
	count := p.digits()
	if p.peek() == 'd' && p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1]) {
		p.pos++
		return p.dice(start, count)
	}

	if count == "" {
		return nil, p.errorf("expected number, dice or '('")
	}
	value, err := strconv.Atoi(count)
	if err != nil {
		p.pos = start
		return nil, p.wrap("number out of range", err)
	}
	return NewNumberNode(value), nil
}

// dice parses the sides and modifiers of a dice term whose count (possibly
// empty) and 'd' have been consumed, then rolls it.
func (p *parser) dice(start int, count string) (Node, error) {
	spec := Spec{Count: 1}
	if count != "" {
		n, err := strconv.Atoi(count)
		if err != nil {
			p.pos = start
			return nil, p.wrap("dice count out of range", err)
		}
		spec.Count = n
	}
	sides, err := strconv.Atoi(p.digits())
	if err != nil {
		p.pos = start
		return nil, p.wrap("dice sides out of range", err)
	}
	spec.Sides = sides

	if err := p.modifiers(&spec); err != nil {
		return nil, err
	}

	pool, err := Roll(p.rng, spec)
	if err != nil {
		p.pos = start
		return nil, p.wrap(err.Error(), err)
	}
	return NewDiceNode(pool), nil
}

func (p *parser) modifiers(spec *Spec) error {
	for {
		at := p.pos
		switch {
		case p.acceptPrefix("kh"), p.acceptPrefix("kl"):
			mode := KeepHighest
			if p.input[at+1] == 'l' {
				mode = KeepLowest
			}
			if spec.Keep != KeepAll || spec.Compare != CompareNone {
				p.pos = at
				return p.wrap(ErrConflictingModifiers.Error(), ErrConflictingModifiers)
			}
			n, err := p.requiredArgument(at)
			if err != nil {
				return err
			}
			spec.Keep = mode
			spec.KeepCount = n
		case p.accept('x'):
			if spec.Explode {
				p.pos = at
				return p.errorf(`only one "x" modifier permitted`)
			}
			spec.Explode = true
			if digits := p.digits(); digits != "" {
				n, err := strconv.Atoi(digits)
				if err != nil {
					p.pos = at
					return p.wrap("explode limit out of range", err)
				}
				spec.ExplodeLimit = n
			}
		default:
			comparator, ok := p.comparator()
			if !ok {
				return nil
			}
			if spec.Keep != KeepAll || spec.Compare != CompareNone {
				p.pos = at
				return p.wrap(ErrConflictingModifiers.Error(), ErrConflictingModifiers)
			}
			n, err := p.requiredArgument(at)
			if err != nil {
				return err
			}
			spec.Compare = comparator
			spec.Target = n
		}
	}
}

func (p *parser) comparator() (Comparator, bool) {
	for _, c := range comparators {
		if p.acceptPrefix(string(c)) {
			return c, true
		}
	}
	return CompareNone, false
}

// requiredArgument reads the mandatory number of the modifier starting at at.
func (p *parser) requiredArgument(at int) (int, error) {
	modifier := p.input[at:p.pos]
	digits := p.digits()
	if digits == "" {
		p.pos = at
		return 0, p.errorf("missing number for " + strconv.Quote(modifier) + " modifier")
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		p.pos = at
		return 0, p.wrap(modifier+" argument out of range", err)
	}
	return n, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
