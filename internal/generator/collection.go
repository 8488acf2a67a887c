package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/tablegen/internal/loader"
	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// Collection holds the generators of one descriptor, keyed by id.
type Collection struct {
	generators map[string]Generator
	configs    []Config
}

// NewCollection constructs every configured generator with registry. A nil
// registry means DefaultRegistry. Empty or duplicate ids and unknown types
// fail the whole collection.
func NewCollection(ctx context.Context, registry *Registry, configs []Config) (*Collection, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	c := &Collection{
		generators: make(map[string]Generator, len(configs)),
		configs:    make([]Config, 0, len(configs)),
	}
	for i, cfg := range configs {
		cfg.ID = strings.TrimSpace(cfg.ID)
		if cfg.ID == "" {
			return nil, apperrors.WithMetadata(
				apperrors.CodeCollectionInvalid,
				fmt.Sprintf("generator %d has no id", i),
				map[string]string{"index": fmt.Sprint(i)},
			)
		}
		if _, exists := c.generators[cfg.ID]; exists {
			return nil, apperrors.WithMetadata(
				apperrors.CodeCollectionInvalid,
				fmt.Sprintf("duplicate generator id %q", cfg.ID),
				map[string]string{"generator": cfg.ID},
			)
		}
		generator, err := registry.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("generator %q: %w", cfg.ID, err)
		}
		c.generators[cfg.ID] = generator
		c.configs = append(c.configs, cfg)
	}
	return c, nil
}

// LoadCollection reads the descriptor at path and constructs its generators.
func LoadCollection(ctx context.Context, path string, registry *Registry) (*Collection, error) {
	descriptor, err := loader.ReadDescriptor(path)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeCollectionInvalid,
			"load collection",
			map[string]string{"path": path},
			err,
		)
	}
	configs := make([]Config, 0, len(descriptor.Generators))
	for _, entry := range descriptor.Generators {
		configs = append(configs, Config{
			ID:     entry.ID,
			Type:   entry.Type,
			Name:   entry.Name,
			Source: entry.Source,
			Dir:    descriptor.Dir,
		})
	}
	return NewCollection(ctx, registry, configs)
}

// Generator returns the generator registered under id.
func (c *Collection) Generator(id string) (Generator, bool) {
	if c == nil {
		return nil, false
	}
	generator, ok := c.generators[id]
	return generator, ok
}

// Configs returns the generator configurations in descriptor order.
func (c *Collection) Configs() []Config {
	if c == nil {
		return nil
	}
	out := make([]Config, len(c.configs))
	copy(out, c.configs)
	return out
}

// Len returns the number of generators.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.generators)
}
