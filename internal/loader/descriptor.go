// Package loader reads generator collection descriptors and list sources
// from disk.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

// ErrUnsupportedFormat indicates a descriptor extension no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported descriptor format")

// Descriptor is the on-disk shape of a generator collection.
type Descriptor struct {
	Generators []Entry `json:"generators" toml:"generators" yaml:"generators"`

	// Dir is the directory the descriptor was read from. File-backed
	// generators resolve relative sources against it.
	Dir string `json:"-" toml:"-" yaml:"-"`
}

// Entry configures one generator of a collection.
type Entry struct {
	ID     string `json:"id" toml:"id" yaml:"id"`
	Type   string `json:"type" toml:"type" yaml:"type"`
	Name   string `json:"name" toml:"name" yaml:"name"`
	Source string `json:"source" toml:"source" yaml:"source"`
}

// Format is a descriptor encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the descriptor format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadDescriptor reads and decodes the descriptor at path and records its
// directory in Descriptor.Dir.
func ReadDescriptor(path string) (Descriptor, error) {
	if strings.TrimSpace(path) == "" {
		return Descriptor{}, fmt.Errorf("descriptor path is required")
	}
	format, err := FormatForPath(path)
	if err != nil {
		return Descriptor{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read descriptor: %w", err)
	}
	descriptor, err := DecodeDescriptor(data, format)
	if err != nil {
		return Descriptor{}, fmt.Errorf("decode descriptor %s: %w", path, err)
	}
	descriptor.Dir = filepath.Dir(path)
	return descriptor, nil
}

// DecodeDescriptor decodes data in the given format.
func DecodeDescriptor(data []byte, format Format) (Descriptor, error) {
	var descriptor Descriptor
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &descriptor)
	case FormatTOML:
		err = toml.Unmarshal(data, &descriptor)
	case FormatYAML:
		err = yaml.Unmarshal(data, &descriptor)
	default:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Descriptor{}, err
	}
	return descriptor, nil
}

// ResolvePath resolves a relative source against dir. Empty and absolute
// sources are returned unchanged.
func ResolvePath(dir, source string) string {
	source = strings.TrimSpace(source)
	if source == "" || filepath.IsAbs(source) || dir == "" {
		return source
	}
	return filepath.Join(dir, source)
}
