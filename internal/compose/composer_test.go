package compose

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"testing"

	"github.com/louisbranch/tablegen/internal/dice"
	"github.com/louisbranch/tablegen/internal/generator"
	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type lookupMap map[string]generator.Generator

func (m lookupMap) Generator(id string) (generator.Generator, bool) {
	g, ok := m[id]
	return g, ok
}

func list(id string, items ...string) *generator.List {
	return generator.NewListFromItems(generator.Config{ID: id, Type: generator.TypeList}, items)
}

func roll(t *testing.T, id string) generator.Generator {
	t.Helper()
	g, err := generator.NewRoll(context.Background(), generator.Config{ID: id, Type: generator.TypeRollShort})
	if err != nil {
		t.Fatalf("NewRoll returned error: %v", err)
	}
	return g
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func textOf(node Node) string {
	switch n := node.(type) {
	case *TextNode:
		return n.Text
	case *RecursiveNode:
		var b strings.Builder
		for _, child := range n.Children {
			b.WriteString(textOf(child))
		}
		return b.String()
	}
	return ""
}

func TestGenerateExpandsReferences(t *testing.T) {
	composer := New(lookupMap{
		"greeting": list("greeting", "Hello {name}!"),
		"name":     list("name", "Bob"),
	})

	root, err := composer.Generate(context.Background(), newRand(), "greeting", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if root.GeneratorID != "greeting" || root.Output.Text != "Hello {name}!" {
		t.Fatalf("root = %+v", root)
	}
	if len(root.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(root.Children))
	}
	if text, ok := root.Children[0].(*TextNode); !ok || text.Text != "Hello " {
		t.Fatalf("child 0 = %#v, want text \"Hello \"", root.Children[0])
	}
	name, ok := root.Children[1].(*RecursiveNode)
	if !ok {
		t.Fatalf("child 1 = %#v, want recursive node", root.Children[1])
	}
	if name.GeneratorID != "name" || len(name.Children) != 1 {
		t.Fatalf("name node = %+v", name)
	}
	if text, ok := name.Children[0].(*TextNode); !ok || text.Text != "Bob" {
		t.Fatalf("name child = %#v, want text Bob", name.Children[0])
	}
	if text, ok := root.Children[2].(*TextNode); !ok || text.Text != "!" {
		t.Fatalf("child 2 = %#v, want text !", root.Children[2])
	}
	if got := textOf(root); got != "Hello Bob!" {
		t.Fatalf("text = %q, want Hello Bob!", got)
	}
	if root.Count() != 5 {
		t.Fatalf("count = %d, want 5", root.Count())
	}
}

func TestGenerateSplitsArguments(t *testing.T) {
	composer := New(lookupMap{
		"loot": list("loot", "{r 2d1 +  3} gold and {r 1d1}"),
		"r":    roll(t, "r"),
	})

	root, err := composer.Generate(context.Background(), newRand(), "loot", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got := textOf(root); got != "5 gold and 1" {
		t.Fatalf("text = %q, want \"5 gold and 1\"", got)
	}
	first := root.Children[0].(*RecursiveNode)
	if strings.Join(first.Args, "|") != "2d1|+|3" {
		t.Fatalf("args = %q, want [2d1 + 3]", first.Args)
	}
	if len(first.Roll) != 2 {
		t.Fatalf("roll = %+v, want 2 dice", first.Roll)
	}
}

func TestGenerateRootArguments(t *testing.T) {
	composer := New(lookupMap{"r": roll(t, "r")})

	root, err := composer.Generate(context.Background(), newRand(), "r", []string{"3d1"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if root.Output.Text != "3" || len(root.Roll) != 3 {
		t.Fatalf("root = %+v", root)
	}
}

func TestGenerateRoundTripsText(t *testing.T) {
	texts := []string{
		"",
		"plain text",
		"{name}",
		"{name}{name}",
		"a {name} b {name} c",
		"{} {1} {name {bad} { name} {name }",
		"{{name}}",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			composer := New(lookupMap{
				"root": list("root", text),
				"name": list("name", "Bob"),
				"bad":  list("bad", "X"),
			})
			root, err := composer.Generate(context.Background(), newRand(), "root", nil)
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			want := referencePattern.ReplaceAllStringFunc(text, func(match string) string {
				if strings.HasPrefix(match, "{bad") {
					return "X"
				}
				return "Bob"
			})
			if got := textOf(root); got != want {
				t.Fatalf("text = %q, want %q", got, want)
			}
		})
	}
}

func TestGenerateEmptyTextHasNoChildren(t *testing.T) {
	composer := New(lookupMap{"empty": list("empty")})

	root, err := composer.Generate(context.Background(), newRand(), "empty", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(root.Children) != 0 {
		t.Fatalf("children = %d, want 0", len(root.Children))
	}
}

func TestGenerateMalformedBracesAreLiteral(t *testing.T) {
	composer := New(lookupMap{"root": list("root", "{} {1} { name} {name")})

	root, err := composer.Generate(context.Background(), newRand(), "root", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(root.Children))
	}
	if text := root.Children[0].(*TextNode).Text; text != "{} {1} { name} {name" {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateArgumentsEndAtFirstClosingBrace(t *testing.T) {
	composer := New(lookupMap{
		"root": list("root", "{r 2d1} c}"),
		"r":    roll(t, "r"),
	})

	root, err := composer.Generate(context.Background(), newRand(), "root", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.Children))
	}
	ref := root.Children[0].(*RecursiveNode)
	if strings.Join(ref.Args, "|") != "2d1" {
		t.Fatalf("args = %q, want [2d1]", ref.Args)
	}
	if text := root.Children[1].(*TextNode).Text; text != " c}" {
		t.Fatalf("trailing text = %q, want \" c}\"", text)
	}
	if got := textOf(root); got != "2 c}" {
		t.Fatalf("text = %q, want \"2 c}\"", got)
	}
}

func TestGenerateNotFound(t *testing.T) {
	tcs := []struct {
		name  string
		root  string
		depth int
	}{
		{name: "root", root: "missing", depth: 0},
		{name: "nested", root: "greeting", depth: 1},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			composer := New(lookupMap{"greeting": list("greeting", "Hello {missing}!")})
			root, err := composer.Generate(context.Background(), newRand(), tc.root, nil)
			if root != nil {
				t.Fatalf("expected no partial tree, got %+v", root)
			}
			if !errors.Is(err, ErrGeneratorNotFound) {
				t.Fatalf("error = %v, want ErrGeneratorNotFound", err)
			}
			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("error type = %T, want *NotFoundError", err)
			}
			if notFound.ID != "missing" || notFound.Depth != tc.depth {
				t.Fatalf("not found = %+v, want id missing at depth %d", notFound, tc.depth)
			}
			if code := apperrors.CodeOf(err); code != apperrors.CodeGeneratorNotFound {
				t.Fatalf("code = %s, want %s", code, apperrors.CodeGeneratorNotFound)
			}
		})
	}
}

func TestGenerateDepthLimit(t *testing.T) {
	composer := New(lookupMap{"loop": list("loop", "again {loop}")}, WithLimits(Limits{MaxDepth: 5}))

	root, err := composer.Generate(context.Background(), newRand(), "loop", nil)
	if root != nil {
		t.Fatalf("expected no partial tree, got %+v", root)
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("error = %v, want *LimitError", err)
	}
	if limitErr.Limit != LimitDepth || limitErr.Max != 5 {
		t.Fatalf("limit = %+v, want depth 5", limitErr)
	}
	if !errors.Is(err, ErrExpansionLimit) {
		t.Fatalf("error = %v, want ErrExpansionLimit", err)
	}
}

func TestGenerateDepthLimitAllowsMaxDepth(t *testing.T) {
	lookup := lookupMap{"g3": list("g3", "end")}
	lookup["g2"] = list("g2", "{g3}")
	lookup["g1"] = list("g1", "{g2}")
	lookup["g0"] = list("g0", "{g1}")
	composer := New(lookup, WithLimits(Limits{MaxDepth: 3}))

	root, err := composer.Generate(context.Background(), newRand(), "g0", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if textOf(root) != "end" {
		t.Fatalf("text = %q, want end", textOf(root))
	}

	composer = New(lookup, WithLimits(Limits{MaxDepth: 2}))
	if _, err := composer.Generate(context.Background(), newRand(), "g0", nil); !errors.Is(err, ErrExpansionLimit) {
		t.Fatalf("error = %v, want ErrExpansionLimit", err)
	}
}

func TestGenerateNodeLimit(t *testing.T) {
	composer := New(lookupMap{
		"wide": list("wide", "{leaf}{leaf}{leaf}{leaf}"),
		"leaf": list("leaf", "x"),
	}, WithLimits(Limits{MaxNodes: 6}))

	root, err := composer.Generate(context.Background(), newRand(), "wide", nil)
	if root != nil {
		t.Fatalf("expected no partial tree, got %+v", root)
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) || limitErr.Limit != LimitNodes {
		t.Fatalf("error = %v, want node limit", err)
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeExpansionLimit {
		t.Fatalf("code = %s, want %s", code, apperrors.CodeExpansionLimit)
	}
}

func TestGeneratePropagatesGeneratorErrors(t *testing.T) {
	composer := New(lookupMap{
		"attack": list("attack", "hits for {r 1d}"),
		"r":      roll(t, "r"),
	})

	root, err := composer.Generate(context.Background(), newRand(), "attack", nil)
	if root != nil {
		t.Fatalf("expected no partial tree, got %+v", root)
	}
	if !errors.Is(err, dice.ErrFormulaSyntax) {
		t.Fatalf("error = %v, want dice.ErrFormulaSyntax", err)
	}
}

func TestGenerateRequiresRandomSource(t *testing.T) {
	composer := New(lookupMap{"name": list("name", "Bob")})
	if _, err := composer.Generate(context.Background(), nil, "name", nil); err == nil {
		t.Fatal("expected error for nil rng")
	}
}

func TestRecursiveNodeRollIsCopy(t *testing.T) {
	composer := New(lookupMap{"r": roll(t, "r")})

	root, err := composer.Generate(context.Background(), newRand(), "r", []string{"1d1"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	root.Roll[0].Value = 99
	if root.Output.Roll[0].Value != 1 {
		t.Fatalf("output roll changed with node roll: %+v", root.Output.Roll)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	composer := New(lookupMap{
		"party": list("party", "{name} and {name} roll {r 3d6}"),
		"name":  list("name", "Bob", "Alice", "Mira", "Tomas"),
		"r":     roll(t, "r"),
	})

	a, err := composer.Generate(context.Background(), rand.New(rand.NewSource(3)), "party", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	b, err := composer.Generate(context.Background(), rand.New(rand.NewSource(3)), "party", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if textOf(a) != textOf(b) {
		t.Fatalf("text %q != %q for equal seeds", textOf(a), textOf(b))
	}
}

func TestComposerLimits(t *testing.T) {
	if got := New(nil).Limits(); got != (Limits{MaxDepth: DefaultMaxDepth, MaxNodes: DefaultMaxNodes}) {
		t.Fatalf("default limits = %+v", got)
	}
	if got := New(nil, WithLimits(Limits{MaxDepth: 3})).Limits(); got != (Limits{MaxDepth: 3, MaxNodes: DefaultMaxNodes}) {
		t.Fatalf("limits = %+v", got)
	}
}

func TestGenerateRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	composer := New(lookupMap{
		"greeting": list("greeting", "Hello {name}!"),
		"name":     list("name", "Bob"),
	}, WithTracerProvider(provider))

	if _, err := composer.Generate(context.Background(), newRand(), "greeting", nil); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	ids := map[string]int64{}
	for _, span := range spans {
		var id string
		var depth int64
		for _, attr := range span.Attributes() {
			switch attr.Key {
			case attribute.Key("generator.id"):
				id = attr.Value.AsString()
			case attribute.Key("compose.depth"):
				depth = attr.Value.AsInt64()
			}
		}
		ids[id] = depth
	}
	if depth, ok := ids["greeting"]; !ok || depth != 0 {
		t.Fatalf("greeting span depth = %d (found %t), want 0", depth, ok)
	}
	if depth, ok := ids["name"]; !ok || depth != 1 {
		t.Fatalf("name span depth = %d (found %t), want 1", depth, ok)
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Fatal("nested span should be a child of the root span")
	}
}

func TestGenerateLogsInvocations(t *testing.T) {
	var buf bytes.Buffer
	composer := New(lookupMap{
		"greeting": list("greeting", "Hello {name}!"),
		"name":     list("name", "Bob"),
	}, WithLogger(log.New(&buf, "", 0)))

	if _, err := composer.Generate(context.Background(), newRand(), "greeting", nil); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `generate name [] -> "Bob"`) {
		t.Fatalf("log = %q", buf.String())
	}
}
