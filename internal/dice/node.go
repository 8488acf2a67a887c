package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one evaluated node of a formula. The set of implementations is
// closed: *NumberNode, *DiceNode and *OperatorNode.
type Node interface {
	// Value is the numeric result of the subtree.
	Value() float64
	// Detail is a human-readable breakdown including individual dice.
	Detail() string
	// String is the numeric result as text.
	String() string

	evaluationNode()
}

// NumberNode is an integer literal.
type NumberNode struct {
	value int
}

// NewNumberNode returns a literal node.
func NewNumberNode(value int) *NumberNode {
	return &NumberNode{value: value}
}

func (n *NumberNode) Value() float64  { return float64(n.value) }
func (n *NumberNode) Detail() string  { return strconv.Itoa(n.value) }
func (n *NumberNode) String() string  { return strconv.Itoa(n.value) }
func (n *NumberNode) evaluationNode() {}

// DiceNode is a rolled dice pool.
type DiceNode struct {
	pool Pool
}

// NewDiceNode wraps a rolled pool.
func NewDiceNode(pool Pool) *DiceNode {
	return &DiceNode{pool: pool}
}

// Spec returns the pool specification.
func (n *DiceNode) Spec() Spec { return n.pool.Spec }

// Dice returns a copy of the rolled dice in roll order.
func (n *DiceNode) Dice() []Die {
	out := make([]Die, len(n.pool.Dice))
	copy(out, n.pool.Dice)
	return out
}

func (n *DiceNode) Value() float64 { return float64(n.pool.Total) }
func (n *DiceNode) String() string { return strconv.Itoa(n.pool.Total) }

// Detail renders "<value> (d<sides> [kept] {excluded} ...)".
func (n *DiceNode) Detail() string {
	values := make([]string, 0, len(n.pool.Dice))
	for _, die := range n.pool.Dice {
		if die.Kept {
			values = append(values, fmt.Sprintf("[%d]", die.Value))
		} else {
			values = append(values, fmt.Sprintf("{%d}", die.Value))
		}
	}
	return fmt.Sprintf("%d (d%d %s)", n.pool.Total, n.pool.Spec.Sides, strings.Join(values, " "))
}

func (n *DiceNode) evaluationNode() {}

// Operator is a binary arithmetic operator.
type Operator byte

const (
	OpAdd Operator = '+'
	OpSub Operator = '-'
	OpMul Operator = '*'
	OpDiv Operator = '/'
)

func (o Operator) String() string { return string(rune(o)) }

// apply evaluates the operator. Division by zero follows IEEE 754 and yields
// an infinity or NaN.
func (o Operator) apply(left, right float64) float64 {
	switch o {
	case OpAdd:
		return left + right
	case OpSub:
		return left - right
	case OpMul:
		return left * right
	case OpDiv:
		return left / right
	default:
		return 0
	}
}

// OperatorNode applies a binary operator to two subtrees. Its value is
// computed once, at construction.
type OperatorNode struct {
	left  Node
	op    Operator
	right Node
	value float64
}

// NewOperatorNode evaluates left op right.
func NewOperatorNode(left Node, op Operator, right Node) *OperatorNode {
	return &OperatorNode{
		left:  left,
		op:    op,
		right: right,
		value: op.apply(left.Value(), right.Value()),
	}
}

// Left returns the left operand.
func (n *OperatorNode) Left() Node { return n.left }

// Right returns the right operand.
func (n *OperatorNode) Right() Node { return n.right }

// Op returns the operator.
func (n *OperatorNode) Op() Operator { return n.op }

func (n *OperatorNode) Value() float64 { return n.value }
func (n *OperatorNode) String() string { return FormatValue(n.value) }

// Detail renders "(<left> <op> <right>)".
func (n *OperatorNode) Detail() string {
	return fmt.Sprintf("(%s %s %s)", n.left.Detail(), n.op, n.right.Detail())
}

func (n *OperatorNode) evaluationNode() {}

// FormatValue renders a formula value: integers without a fraction, other
// values with the shortest exact representation ("3.5", "+Inf", "NaN").
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rolls returns every die rolled in the tree, in evaluation order.
func Rolls(root Node) []Die {
	var out []Die
	var walk func(Node)
	walk = func(n Node) {
		switch node := n.(type) {
		case *DiceNode:
			out = append(out, node.pool.Dice...)
		case *OperatorNode:
			walk(node.left)
			walk(node.right)
		case *NumberNode:
		}
	}
	walk(root)
	return out
}
