package generator

import (
	"context"
	"math/rand"
	"strings"

	"github.com/louisbranch/tablegen/internal/loader"
	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// itemSeparator joins multiple picks into one output text.
const itemSeparator = ", "

// List picks uniformly, with replacement, from a fixed list of items.
type List struct {
	Base
	items []string
}

// NewList loads the list items named by cfg.Source, which may be a
// doublestar glob.
func NewList(_ context.Context, cfg Config) (Generator, error) {
	items, err := loader.ReadLines(cfg.SourcePath())
	if err != nil {
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeGeneratorSource,
			"load list source",
			map[string]string{"generator": cfg.ID, "source": cfg.Source},
			err,
		)
	}
	return NewListFromItems(cfg, items), nil
}

// NewListFromItems builds a list generator over items.
func NewListFromItems(cfg Config, items []string) *List {
	copied := make([]string, len(items))
	copy(copied, items)
	return &List{Base: NewBase(cfg), items: copied}
}

// Items returns a copy of the list items.
func (l *List) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// Generate picks args[0] items (default 1) joined with ", ". An empty list
// produces empty text.
func (l *List) Generate(ctx context.Context, rng *rand.Rand, args []string) (Output, error) {
	if err := checkCall(ctx, rng); err != nil {
		return Output{}, err
	}
	count, err := parseCount(args)
	if err != nil {
		return Output{}, err
	}
	if len(l.items) == 0 {
		return Output{}, nil
	}
	picks := make([]string, count)
	for i := range picks {
		picks[i] = l.items[rng.Intn(len(l.items))]
	}
	return Output{Text: strings.Join(picks, itemSeparator)}, nil
}
