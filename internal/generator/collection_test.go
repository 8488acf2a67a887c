package generator

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadCollection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lists", "names.txt"), "# names\nBob\n")
	writeFile(t, filepath.Join(dir, "scripts", "shout.lua"), `function generate(args) return string.upper(args[1] or "hey") end`)
	writeFile(t, filepath.Join(dir, "generators.yaml"), `generators:
  - id: name
    type: list
    name: Name
    source: lists/names.txt
  - id: greeting
    type: lua
    name: Shout
    source: scripts/shout.lua
  - id: r
    type: r
    name: Roll
`)

	collection, err := LoadCollection(context.Background(), filepath.Join(dir, "generators.yaml"), nil)
	if err != nil {
		t.Fatalf("LoadCollection returned error: %v", err)
	}
	if collection.Len() != 3 {
		t.Fatalf("len = %d, want 3", collection.Len())
	}

	ids := make([]string, 0, collection.Len())
	for _, cfg := range collection.Configs() {
		ids = append(ids, cfg.ID)
	}
	if want := []string{"name", "greeting", "r"}; !slices.Equal(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	name, ok := collection.Generator("name")
	if !ok {
		t.Fatal("expected name generator")
	}
	out, err := name.Generate(context.Background(), rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out.Text != "Bob" {
		t.Fatalf("text = %q, want Bob", out.Text)
	}

	greeting, _ := collection.Generator("greeting")
	out, err = greeting.Generate(context.Background(), rand.New(rand.NewSource(1)), []string{"hi"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out.Text != "HI" {
		t.Fatalf("text = %q, want HI", out.Text)
	}

	if _, ok := collection.Generator("missing"); ok {
		t.Fatal("unexpected generator for missing id")
	}
}

func TestNewCollectionErrors(t *testing.T) {
	tcs := []struct {
		name    string
		configs []Config
		code    apperrors.Code
	}{
		{
			name:    "empty id",
			configs: []Config{{ID: " ", Type: TypeRoll}},
			code:    apperrors.CodeCollectionInvalid,
		},
		{
			name:    "duplicate id",
			configs: []Config{{ID: "r", Type: TypeRoll}, {ID: "r", Type: TypeRollShort}},
			code:    apperrors.CodeCollectionInvalid,
		},
		{
			name:    "unknown type",
			configs: []Config{{ID: "x", Type: "markov"}},
			code:    apperrors.CodeGeneratorTypeUnknown,
		},
		{
			name:    "missing source",
			configs: []Config{{ID: "name", Type: TypeList, Source: filepath.Join(t.TempDir(), "missing.txt")}},
			code:    apperrors.CodeGeneratorSource,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCollection(context.Background(), DefaultRegistry(), tc.configs)
			if code := apperrors.CodeOf(err); code != tc.code {
				t.Fatalf("code = %s, want %s (err %v)", code, tc.code, err)
			}
		})
	}
}

func TestUnknownTypeListsKnownTypes(t *testing.T) {
	_, err := DefaultRegistry().New(context.Background(), Config{ID: "x", Type: "markov"})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if want := "known types: list, lua, r, roll, table"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error = %q, want it to contain %q", err.Error(), want)
	}
}

func TestLoadCollectionMissingDescriptor(t *testing.T) {
	_, err := LoadCollection(context.Background(), filepath.Join(t.TempDir(), "generators.json"), nil)
	if code := apperrors.CodeOf(err); code != apperrors.CodeCollectionInvalid {
		t.Fatalf("code = %s, want %s", code, apperrors.CodeCollectionInvalid)
	}
}

func TestNilCollection(t *testing.T) {
	var collection *Collection
	if _, ok := collection.Generator("x"); ok {
		t.Fatal("nil collection returned a generator")
	}
	if collection.Len() != 0 || collection.Configs() != nil {
		t.Fatal("nil collection should be empty")
	}
}

func TestDefaultRegistryTypes(t *testing.T) {
	got := DefaultRegistry().Types()
	want := []string{TypeList, TypeLua, TypeRollShort, TypeRoll, TypeTable}
	if !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
}

func TestRegistryCustomKind(t *testing.T) {
	registry := NewRegistry()
	registry.Register(" Fixed ", func(_ context.Context, cfg Config) (Generator, error) {
		return NewListFromItems(cfg, []string{cfg.Source}), nil
	})

	gen, err := registry.New(context.Background(), Config{ID: "motto", Type: "FIXED", Source: "carpe diem"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	out, err := gen.Generate(context.Background(), rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out.Text != "carpe diem" {
		t.Fatalf("text = %q, want carpe diem", out.Text)
	}
}

func TestLoadSampleCollection(t *testing.T) {
	collection, err := LoadCollection(context.Background(), filepath.Join("..", "..", "data", "generators.json"), nil)
	if err != nil {
		t.Fatalf("LoadCollection returned error: %v", err)
	}
	for _, cfg := range collection.Configs() {
		gen, _ := collection.Generator(cfg.ID)
		var args []string
		if cfg.ID == "roll" || cfg.ID == "r" {
			args = []string{"2d6"}
		}
		if _, err := gen.Generate(context.Background(), rand.New(rand.NewSource(1)), args); err != nil {
			t.Fatalf("generator %q: %v", cfg.ID, err)
		}
	}
}
