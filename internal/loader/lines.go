package loader

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"
)

// commentPrefix marks a list line that is ignored.
const commentPrefix = "#"

// ReadLines reads list items from every file matching pattern, in lexical
// path order. A pattern without glob metacharacters names one file, which
// must exist.
//
// Lines are trimmed and NFC-normalized; blank lines and lines starting with
// "#" are dropped.
func ReadLines(pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("list source is required")
	}
	paths := []string{pattern}
	if hasMeta(pattern) {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob list source %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("list source %q matched no files", pattern)
		}
		slices.Sort(matches)
		paths = matches
	}

	var items []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read list source: %w", err)
		}
		items = append(items, ParseLines(data)...)
	}
	return items, nil
}

// ParseLines splits list file content into items. Lines have no length
// limit; "\r\n" endings are trimmed with the rest of the whitespace.
func ParseLines(data []byte) []string {
	var items []string
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		items = append(items, norm.NFC.String(line))
	}
	return items
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
