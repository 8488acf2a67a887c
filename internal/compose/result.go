package compose

import (
	"github.com/louisbranch/tablegen/internal/dice"
	"github.com/louisbranch/tablegen/internal/generator"
)

// Node is one node of a composition result. The set of implementations is
// closed: *TextNode and *RecursiveNode.
type Node interface {
	resultNode()
}

// TextNode is literal text copied from a generator output.
type TextNode struct {
	Text string
}

func (*TextNode) resultNode() {}

// RecursiveNode is one generator invocation and its expanded output.
//
// Concatenating the rendered children reproduces Output.Text with every
// embedded reference replaced by its own expansion.
type RecursiveNode struct {
	GeneratorID string
	Args        []string
	Output      generator.Output
	// Roll is a copy of Output.Roll.
	Roll     []dice.Die
	Children []Node
}

func (*RecursiveNode) resultNode() {}

// Count returns the number of nodes in the subtree rooted at n.
func (n *RecursiveNode) Count() int {
	total := 1
	for _, child := range n.Children {
		if rec, ok := child.(*RecursiveNode); ok {
			total += rec.Count()
			continue
		}
		total++
	}
	return total
}
