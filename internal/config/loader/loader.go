// Package loader reads configuration sources into nested maps.
//
// Files are decoded by extension: TOML (.toml) through go-toml/v2 and YAML
// (.yaml, .yml) through yaml.v3. Environment variables are read by
// EnvLoader. Every loader produces a map[string]any keyed by section, which
// callers merge with DeepMerge and decode into typed configuration.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	// LoadFromReader reads configuration from a reader.
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is an abstraction for file system operations.
// fstest.MapFS satisfies it.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// decodeFunc parses raw bytes into a configuration map.
type decodeFunc func(source string, data []byte) (map[string]any, error)

// FileLoader loads configuration from a file, choosing the decoder by
// extension.
type FileLoader struct {
	fs     FileSystem
	path   string
	decode decodeFunc
}

// NewFileLoader creates a loader for path using the OS file system.
func NewFileLoader(path string) (*FileLoader, error) {
	return NewFileLoaderWithFS(DefaultFS(), path)
}

// NewFileLoaderWithFS creates a loader for path on a custom file system.
func NewFileLoaderWithFS(fsys FileSystem, path string) (*FileLoader, error) {
	var decode decodeFunc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		decode = parseTOML
	case ".yaml", ".yml":
		decode = parseYAML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return &FileLoader{fs: fsys, path: path, decode: decode}, nil
}

// Path returns the file path.
func (l *FileLoader) Path() string {
	return l.path
}

// Load reads configuration from the file.
func (l *FileLoader) Load() (map[string]any, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return l.decode(l.path, data)
}

// LoadFromReader reads configuration in the file's format from r.
func (l *FileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.decode("<reader>", data)
}
