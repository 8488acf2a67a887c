// Package mcp parses MCP command flags and serves the tablegen tools on stdio.
package mcp

import (
	"context"
	"flag"
	"log"

	"github.com/louisbranch/tablegen/internal/compose"
	"github.com/louisbranch/tablegen/internal/generator"
	"github.com/louisbranch/tablegen/internal/mcp"
	entrypoint "github.com/louisbranch/tablegen/internal/platform/cmd"
)

// Config holds MCP command configuration.
type Config struct {
	Collection string `env:"COLLECTION" envDefault:"data/generators.json"`
	MaxDepth   int    `env:"MAX_DEPTH"  envDefault:"64"`
	MaxNodes   int    `env:"MAX_NODES"  envDefault:"10000"`
	Verbose    bool   `env:"VERBOSE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Collection, "collection", cfg.Collection, "generator collection descriptor (.json, .toml, .yaml)")
	fs.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "maximum reference nesting depth")
	fs.IntVar(&cfg.MaxNodes, "max-nodes", cfg.MaxNodes, "maximum nodes in one result tree")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "log every generator invocation to stderr")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the collection and serves MCP on stdio until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		server, err := NewServer(ctx, cfg)
		if err != nil {
			return err
		}
		log.Printf("serving %d generators from %s", server.Len(), cfg.Collection)
		return server.Serve(ctx)
	})
}

// NewServer loads the configured collection and builds the MCP server.
func NewServer(ctx context.Context, cfg Config) (*mcp.Server, error) {
	collection, err := generator.LoadCollection(ctx, cfg.Collection, generator.DefaultRegistry())
	if err != nil {
		return nil, err
	}
	opts := []compose.Option{compose.WithLimits(compose.Limits{MaxDepth: cfg.MaxDepth, MaxNodes: cfg.MaxNodes})}
	if cfg.Verbose {
		opts = append(opts, compose.WithLogger(log.Default()))
	}
	return mcp.New(collection, opts...)
}
