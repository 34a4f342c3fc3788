// Package config loads multisel settings.
//
// Settings are layered, with higher layers overriding lower:
//
//  1. Built-in defaults
//  2. Config file (TOML or YAML, chosen by extension)
//  3. Environment variables (MULTISEL_*)
//
// Command line flags are applied by the caller on top of the result.
//
// Example file:
//
//	[logging]
//	level = "debug"
//
//	[editor]
//	tabWidth = 8
//	lineEnding = "auto"
//
//	[pattern]
//	engine = "regexp2"
//	ignoreCase = true
//	timeout = "500ms"
//
//	[script]
//	timeout = "2s"
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/multisel/internal/config/loader"
	"github.com/dshills/multisel/internal/engine/buffer"
	"github.com/dshills/multisel/internal/engine/pattern"
	"github.com/dshills/multisel/internal/logging"
)

// Config holds all settings.
type Config struct {
	Logging LoggingConfig
	Editor  EditorConfig
	Pattern PatternConfig
	Script  ScriptConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string
}

// EditorConfig holds document settings.
type EditorConfig struct {
	// TabWidth is the number of columns a tab advances to.
	TabWidth int

	// LineEnding is the line ending documents are normalized to
	// ("lf", "crlf", "cr", or "auto" to keep the most common one).
	LineEnding string
}

// PatternConfig holds pattern compilation settings.
type PatternConfig struct {
	// Engine is the regular expression engine ("re2" or "regexp2").
	Engine string

	// IgnoreCase matches case-insensitively.
	IgnoreCase bool

	// Literal treats patterns as plain text.
	Literal bool

	// WholeWord only matches whole words.
	WholeWord bool

	// Timeout bounds a single regexp2 match.
	Timeout time.Duration
}

// ScriptConfig holds Lua script settings.
type ScriptConfig struct {
	// Timeout bounds the run time of a script. Zero means no limit.
	Timeout time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Editor:  EditorConfig{TabWidth: 4, LineEnding: "lf"},
		Pattern: PatternConfig{Engine: string(pattern.EngineRE2), Timeout: pattern.DefaultTimeout},
		Script:  ScriptConfig{Timeout: 5 * time.Second},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	path      string
	fs        loader.FileSystem
	env       bool
	envPrefix string
}

// WithFile loads settings from the file at path.
// A missing file is not an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithFS reads the config file from fsys instead of the OS file system.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnv enables or disables environment variable overrides.
func WithEnv(enable bool) Option {
	return func(o *options) {
		o.env = enable
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// Load builds the configuration from defaults, the config file and the
// environment, then validates it.
func Load(opts ...Option) (*Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		env:       true,
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := make(map[string]any)

	if o.path != "" {
		fl, err := loader.NewFileLoaderWithFS(o.fs, o.path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	if o.env {
		data, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap returns the defaults overridden by the settings in data.
func FromMap(data map[string]any) (*Config, error) {
	cfg := Default()
	if err := cfg.apply(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply overrides settings present in data.
func (c *Config) apply(data map[string]any) error {
	d := decoder{data: data}

	d.string("logging.level", &c.Logging.Level)
	d.int("editor.tabWidth", &c.Editor.TabWidth)
	d.string("editor.lineEnding", &c.Editor.LineEnding)
	d.string("pattern.engine", &c.Pattern.Engine)
	d.bool("pattern.ignoreCase", &c.Pattern.IgnoreCase)
	d.bool("pattern.literal", &c.Pattern.Literal)
	d.bool("pattern.wholeWord", &c.Pattern.WholeWord)
	d.duration("pattern.timeout", &c.Pattern.Timeout)
	d.duration("script.timeout", &c.Script.Timeout)

	return d.err
}

// Validate checks that every setting holds a usable value.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Message: "unknown log level", Value: c.Logging.Level}
	}
	if c.Editor.TabWidth <= 0 {
		return &ValidationError{Path: "editor.tabWidth", Message: "must be positive", Value: c.Editor.TabWidth}
	}
	if _, err := parseLineEnding(c.Editor.LineEnding); err != nil {
		return &ValidationError{Path: "editor.lineEnding", Message: err.Error(), Value: c.Editor.LineEnding}
	}
	if _, err := pattern.ParseEngine(c.Pattern.Engine); err != nil {
		return &ValidationError{Path: "pattern.engine", Message: "unknown engine", Value: c.Pattern.Engine}
	}
	if c.Pattern.Timeout < 0 {
		return &ValidationError{Path: "pattern.timeout", Message: "must not be negative", Value: c.Pattern.Timeout}
	}
	if c.Script.Timeout < 0 {
		return &ValidationError{Path: "script.timeout", Message: "must not be negative", Value: c.Script.Timeout}
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}

// PatternOptions returns the compile options for pattern.Compile.
func (c *Config) PatternOptions() pattern.Options {
	engine, _ := pattern.ParseEngine(c.Pattern.Engine)
	return pattern.Options{
		Engine:     engine,
		IgnoreCase: c.Pattern.IgnoreCase,
		Literal:    c.Pattern.Literal,
		WholeWord:  c.Pattern.WholeWord,
		Timeout:    c.Pattern.Timeout,
	}
}

// DocumentOptions returns the buffer options for the editor settings.
func (c *Config) DocumentOptions() []buffer.Option {
	opts := []buffer.Option{buffer.WithTabWidth(c.Editor.TabWidth)}

	le, err := parseLineEnding(c.Editor.LineEnding)
	switch {
	case err != nil:
	case le == nil:
		opts = append(opts, buffer.WithDetectedLineEnding())
	default:
		opts = append(opts, buffer.WithLineEnding(*le))
	}
	return opts
}

// parseLineEnding returns nil for "auto".
func parseLineEnding(s string) (*buffer.LineEnding, error) {
	var le buffer.LineEnding
	switch strings.ToLower(s) {
	case "auto":
		return nil, nil
	case "lf", "":
		le = buffer.LineEndingLF
	case "crlf":
		le = buffer.LineEndingCRLF
	case "cr":
		le = buffer.LineEndingCR
	default:
		return nil, fmt.Errorf("unknown line ending %q", s)
	}
	return &le, nil
}
