// Package render turns composition results into display text.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/louisbranch/tablegen/internal/compose"
	"github.com/louisbranch/tablegen/internal/dice"
)

// Style names accepted by ForStyle.
const (
	StylePlain = "plain"
	StyleColor = "color"
)

// Renderer converts a result tree to text.
type Renderer interface {
	Render(root *compose.RecursiveNode) string
}

// ForStyle returns the annotated renderer for a style name.
func ForStyle(style string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", StylePlain:
		return Text{ShowRolls: true}, nil
	case StyleColor:
		return NewStyled(DefaultTheme()), nil
	default:
		return nil, fmt.Errorf("unknown render style %q", style)
	}
}

// Text renders the tree as plain text. With ShowRolls, each generator's
// text is prefixed with its dice as "[d6:4] " when kept and "{d6:1} " when
// excluded.
type Text struct {
	ShowRolls bool
}

// Render implements Renderer.
func (t Text) Render(root *compose.RecursiveNode) string {
	var annotate func(dice.Die) string
	if t.ShowRolls {
		annotate = Annotation
	}
	return walk(root, annotate)
}

// Annotation formats one die the way Text does.
func Annotation(die dice.Die) string {
	if die.Kept {
		return fmt.Sprintf("[%s:%d] ", die.Type, die.Value)
	}
	return fmt.Sprintf("{%s:%d} ", die.Type, die.Value)
}

// Theme holds the styles of a Styled renderer.
type Theme struct {
	Kept     lipgloss.Style
	Excluded lipgloss.Style
}

// DefaultTheme highlights kept dice and dims excluded ones.
func DefaultTheme() Theme {
	return Theme{
		Kept:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		Excluded: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
	}
}

// Styled renders roll annotations with terminal colors. Generated text is
// left unstyled.
type Styled struct {
	theme Theme
}

// NewStyled returns a styled renderer.
func NewStyled(theme Theme) Styled {
	return Styled{theme: theme}
}

// Render implements Renderer.
func (s Styled) Render(root *compose.RecursiveNode) string {
	return walk(root, func(die dice.Die) string {
		label := strings.TrimSuffix(Annotation(die), " ")
		if die.Kept {
			return s.theme.Kept.Render(label) + " "
		}
		return s.theme.Excluded.Render(label) + " "
	})
}

// walk concatenates text nodes depth first, prefixing each recursive node
// with its annotated dice when annotate is set.
func walk(root *compose.RecursiveNode, annotate func(dice.Die) string) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	var visit func(compose.Node)
	visit = func(node compose.Node) {
		switch n := node.(type) {
		case *compose.TextNode:
			b.WriteString(n.Text)
		case *compose.RecursiveNode:
			if annotate != nil {
				for _, die := range n.Roll {
					b.WriteString(annotate(die))
				}
			}
			for _, child := range n.Children {
				visit(child)
			}
		}
	}
	visit(root)
	return b.String()
}
