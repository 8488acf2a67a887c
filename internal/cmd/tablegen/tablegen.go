// Package tablegen parses tablegen command flags and runs one composition.
package tablegen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/louisbranch/tablegen/internal/compose"
	"github.com/louisbranch/tablegen/internal/generator"
	entrypoint "github.com/louisbranch/tablegen/internal/platform/cmd"
	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
	"github.com/louisbranch/tablegen/internal/platform/i18n/catalog"
	"github.com/louisbranch/tablegen/internal/random"
	"github.com/louisbranch/tablegen/internal/render"
	"golang.org/x/text/message"
)

// ErrGeneratorRequired indicates no generator id was given.
var ErrGeneratorRequired = errors.New("generator id is required")

// Config holds tablegen command configuration.
type Config struct {
	Collection string `env:"COLLECTION" envDefault:"data/generators.json"`
	Seed       int64  `env:"SEED"`
	MaxDepth   int    `env:"MAX_DEPTH"  envDefault:"64"`
	MaxNodes   int    `env:"MAX_NODES"  envDefault:"10000"`
	Style      string `env:"STYLE"      envDefault:"plain"`
	Verbose    bool   `env:"VERBOSE"`
	Locale     string `env:"LOCALE"     envDefault:"en-US"`

	// List prints the collection instead of generating.
	List bool
	// Generator and Args come from the positional arguments.
	Generator string
	Args      []string
}

// ParseConfig parses environment and flags into a Config. The first
// positional argument is the generator id; the rest are its args.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Collection, "collection", cfg.Collection, "generator collection descriptor (.json, .toml, .yaml)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducibility (0 = random)")
	fs.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "maximum reference nesting depth")
	fs.IntVar(&cfg.MaxNodes, "max-nodes", cfg.MaxNodes, "maximum nodes in one result tree")
	fs.StringVar(&cfg.Style, "style", cfg.Style, "roll annotation style: plain or color")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for messages (en-US, pt-BR)")
	fs.BoolVar(&cfg.List, "list", false, "list available generators")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		if cfg.List {
			return cfg, nil
		}
		return Config{}, ErrGeneratorRequired
	}
	cfg.Generator = rest[0]
	cfg.Args = rest[1:]
	return cfg, nil
}

// Run executes the tablegen command. Generated text goes to out; logs and
// verbose diagnostics go to errOut.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "", 0)
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceCLI, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return run(ctx, cfg, out, logger)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer, logger *log.Logger) error {
	annotated, err := render.ForStyle(cfg.Style)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "select render style", err)
	}

	collection, err := generator.LoadCollection(ctx, cfg.Collection, generator.DefaultRegistry())
	if err != nil {
		return err
	}
	printer := catalog.Printer(cfg.Locale)
	if cfg.Verbose {
		logger.Print(printer.Sprintf("cli.collection.loaded", collection.Len(), cfg.Collection))
	}

	if cfg.List {
		return writeList(out, printer, collection)
	}

	if strings.TrimSpace(cfg.Generator) == "" {
		return ErrGeneratorRequired
	}
	rng, seed, err := random.NewRand(cfg.Seed)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.Printf("seed %d", seed)
	}

	opts := []compose.Option{compose.WithLimits(compose.Limits{MaxDepth: cfg.MaxDepth, MaxNodes: cfg.MaxNodes})}
	if cfg.Verbose {
		opts = append(opts, compose.WithLogger(logger))
	}
	root, err := compose.New(collection, opts...).Generate(ctx, rng, cfg.Generator, cfg.Args)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, render.Text{}.Render(root))
	fmt.Fprintln(out, annotated.Render(root))
	return nil
}

func writeList(out io.Writer, printer *message.Printer, collection *generator.Collection) error {
	configs := collection.Configs()
	width := len("ID")
	for _, cfg := range configs {
		width = max(width, len(cfg.ID))
	}
	fmt.Fprintln(out, printer.Sprintf("cli.list.header"))
	for _, cfg := range configs {
		name := cfg.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(out, "  %-*s  %-6s  %s\n", width, cfg.ID, cfg.Type, name)
	}
	return nil
}
