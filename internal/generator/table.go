package generator

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
	_ "modernc.org/sqlite"
)

// tableQuery selects the weighted entries of one generator.
const tableQuery = `SELECT text, weight FROM entries WHERE generator = ? AND weight > 0 ORDER BY rowid`

// TableEntry is one weighted row of a table generator.
type TableEntry struct {
	Text   string
	Weight int
}

// Table picks rows of a SQLite "entries" table with probability
// proportional to their weight. Rows are read once, at construction.
type Table struct {
	Base
	entries []TableEntry
	// cumulative[i] is the total weight of entries[0..i].
	cumulative []int
}

// NewTable reads the rows for cfg.ID from the SQLite database at cfg.Source.
func NewTable(ctx context.Context, cfg Config) (Generator, error) {
	entries, err := readTableEntries(ctx, cfg.SourcePath(), cfg.ID)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeGeneratorSource,
			"load table source",
			map[string]string{"generator": cfg.ID, "source": cfg.Source},
			err,
		)
	}
	return NewTableFromEntries(cfg, entries)
}

// NewTableFromEntries builds a table generator over entries. Entries with a
// non-positive weight are never picked; at least one must remain.
func NewTableFromEntries(cfg Config, entries []TableEntry) (*Table, error) {
	t := &Table{Base: NewBase(cfg)}
	total := 0
	for _, entry := range entries {
		if entry.Weight <= 0 {
			continue
		}
		total += entry.Weight
		t.entries = append(t.entries, entry)
		t.cumulative = append(t.cumulative, total)
	}
	if len(t.entries) == 0 {
		return nil, apperrors.WithMetadata(
			apperrors.CodeGeneratorSource,
			fmt.Sprintf("table %q has no weighted entries", cfg.ID),
			map[string]string{"generator": cfg.ID},
		)
	}
	return t, nil
}

// Generate picks args[0] rows (default 1) joined with ", ".
func (t *Table) Generate(ctx context.Context, rng *rand.Rand, args []string) (Output, error) {
	if err := checkCall(ctx, rng); err != nil {
		return Output{}, err
	}
	count, err := parseCount(args)
	if err != nil {
		return Output{}, err
	}
	total := t.cumulative[len(t.cumulative)-1]
	picks := make([]string, count)
	for i := range picks {
		roll := rng.Intn(total)
		idx := sort.SearchInts(t.cumulative, roll+1)
		picks[i] = t.entries[idx].Text
	}
	return Output{Text: strings.Join(picks, itemSeparator)}, nil
}

func readTableEntries(ctx context.Context, path, id string) ([]TableEntry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("table path is required")
	}
	cleanPath := filepath.Clean(path)
	// sqlite creates missing files on open.
	if _, err := os.Stat(cleanPath); err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", cleanPath+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	defer sqlDB.Close()

	rows, err := sqlDB.QueryContext(ctx, tableQuery, id)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []TableEntry
	for rows.Next() {
		var entry TableEntry
		if err := rows.Scan(&entry.Text, &entry.Weight); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
