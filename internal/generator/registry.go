package generator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// Generator kinds registered by DefaultRegistry.
const (
	TypeList      = "list"
	TypeRoll      = "roll"
	TypeRollShort = "r"
	TypeLua       = "lua"
	TypeTable     = "table"
)

// Constructor builds a generator from its configuration. It runs once, when
// the collection is loaded.
type Constructor func(ctx context.Context, cfg Config) (Generator, error)

// Registry maps generator types to constructors.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry with every built-in generator kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeList, NewList)
	r.Register(TypeRoll, NewRoll)
	r.Register(TypeRollShort, NewRoll)
	r.Register(TypeLua, NewLua)
	r.Register(TypeTable, NewTable)
	return r
}

// Register binds kind to constructor, replacing any previous binding.
func (r *Registry) Register(kind string, constructor Constructor) {
	r.constructors[strings.ToLower(strings.TrimSpace(kind))] = constructor
}

// Types returns the registered kinds in sorted order.
func (r *Registry) Types() []string {
	kinds := make([]string, 0, len(r.constructors))
	for kind := range r.constructors {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// New constructs the generator described by cfg.
func (r *Registry) New(ctx context.Context, cfg Config) (Generator, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Type))
	constructor, ok := r.constructors[kind]
	if !ok {
		return nil, apperrors.WithMetadata(
			apperrors.CodeGeneratorTypeUnknown,
			fmt.Sprintf("unknown generator type %q (known types: %s)", cfg.Type, strings.Join(r.Types(), ", ")),
			map[string]string{"generator": cfg.ID, "type": cfg.Type},
		)
	}
	return constructor(ctx, cfg)
}
