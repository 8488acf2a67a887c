// Package compose expands generator output into a result tree by resolving
// embedded {id args} references recursively.
package compose

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"regexp"
	"slices"
	"strings"

	"github.com/louisbranch/tablegen/internal/generator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxDepth bounds reference nesting below the root.
	DefaultMaxDepth = 64
	// DefaultMaxNodes bounds the total nodes of one result tree.
	DefaultMaxNodes = 10000
)

const tracerName = "github.com/louisbranch/tablegen/internal/compose"

// referencePattern matches {id} and {id args}. Ids are letters and
// underscores; args are a non-empty run without braces.
var referencePattern = regexp.MustCompile(`\{([A-Za-z_]+)(?: ([^{}]+))?\}`)

// Lookup resolves generators by id.
type Lookup interface {
	Generator(id string) (generator.Generator, bool)
}

// Limits bounds one expansion. Zero fields take the defaults.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxNodes <= 0 {
		l.MaxNodes = DefaultMaxNodes
	}
	return l
}

// Option configures a Composer.
type Option func(*Composer)

// WithLimits overrides the expansion limits.
func WithLimits(limits Limits) Option {
	return func(c *Composer) {
		c.limits = limits.withDefaults()
	}
}

// WithTracerProvider sets the provider used for invocation spans. The
// global provider is used otherwise.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Composer) {
		if provider != nil {
			c.tracer = provider.Tracer(tracerName)
		}
	}
}

// WithLogger logs every generator invocation.
func WithLogger(logger *log.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Composer builds result trees from a generator lookup. It holds no
// per-call state and may be shared.
type Composer struct {
	lookup Lookup
	limits Limits
	tracer trace.Tracer
	logger *log.Logger
}

// New returns a composer over lookup.
func New(lookup Lookup, opts ...Option) *Composer {
	c := &Composer{
		lookup: lookup,
		limits: Limits{}.withDefaults(),
		tracer: otel.GetTracerProvider().Tracer(tracerName),
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limits returns the effective expansion limits.
func (c *Composer) Limits() Limits {
	return c.limits
}

// Generate invokes generator id with args and expands every reference in
// its output, depth first and left to right, drawing all randomness from
// rng.
//
// Errors from any level abort the whole expansion; no partial tree is
// returned. A missing id yields *NotFoundError and an oversized expansion
// *LimitError.
func (c *Composer) Generate(ctx context.Context, rng *rand.Rand, id string, args []string) (*RecursiveNode, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if rng == nil {
		return nil, fmt.Errorf("random generator is required")
	}
	exp := &expansion{composer: c, rng: rng}
	return exp.expand(ctx, id, args, 0)
}

// expansion tracks the state of one Generate call.
type expansion struct {
	composer *Composer
	rng      *rand.Rand
	nodes    int
}

func (e *expansion) addNode(id string) error {
	e.nodes++
	if e.nodes > e.composer.limits.MaxNodes {
		return &LimitError{Limit: LimitNodes, Max: e.composer.limits.MaxNodes, ID: id}
	}
	return nil
}

func (e *expansion) expand(ctx context.Context, id string, args []string, depth int) (_ *RecursiveNode, err error) {
	if depth > e.composer.limits.MaxDepth {
		return nil, &LimitError{Limit: LimitDepth, Max: e.composer.limits.MaxDepth, ID: id}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := e.composer.tracer.Start(ctx, "compose.generate", trace.WithAttributes(
		attribute.String("generator.id", id),
		attribute.Int("compose.depth", depth),
		attribute.StringSlice("generator.args", args),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	gen, ok := e.composer.lookup.Generator(id)
	if !ok {
		return nil, &NotFoundError{ID: id, Depth: depth}
	}
	if err := e.addNode(id); err != nil {
		return nil, err
	}

	out, err := gen.Generate(ctx, e.rng, args)
	if err != nil {
		return nil, fmt.Errorf("generate %q: %w", id, err)
	}
	e.composer.logger.Printf("generate %s %v -> %q", id, args, out.Text)
	span.SetAttributes(attribute.Int("generator.dice", len(out.Roll)))

	node := &RecursiveNode{
		GeneratorID: id,
		Args:        slices.Clone(args),
		Output:      out,
		Roll:        slices.Clone(out.Roll),
	}

	text := out.Text
	cursor := 0
	for _, match := range referencePattern.FindAllStringSubmatchIndex(text, -1) {
		if match[0] > cursor {
			if err := e.addNode(id); err != nil {
				return nil, err
			}
			node.Children = append(node.Children, &TextNode{Text: text[cursor:match[0]]})
		}
		childID := text[match[2]:match[3]]
		var childArgs []string
		if match[4] >= 0 {
			childArgs = strings.Fields(text[match[4]:match[5]])
		}
		child, err := e.expand(ctx, childID, childArgs, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
		cursor = match[1]
	}
	if cursor < len(text) {
		if err := e.addNode(id); err != nil {
			return nil, err
		}
		node.Children = append(node.Children, &TextNode{Text: text[cursor:]})
	}
	return node, nil
}
