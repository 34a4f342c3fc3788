package config

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/multisel/internal/engine/buffer"
	"github.com/dshills/multisel/internal/engine/pattern"
	"github.com/dshills/multisel/internal/logging"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	fsys := fstest.MapFS{
		"multisel.toml": {Data: []byte(`
[logging]
level = "debug"

[editor]
tabWidth = 8
lineEnding = "auto"

[pattern]
engine = "regexp2"
ignoreCase = true
timeout = "500ms"

[script]
timeout = 250
`)},
	}

	cfg, err := Load(WithFS(fsys), WithFile("multisel.toml"), WithEnv(false))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		Logging: LoggingConfig{Level: "debug"},
		Editor:  EditorConfig{TabWidth: 8, LineEnding: "auto"},
		Pattern: PatternConfig{Engine: "regexp2", IgnoreCase: true, Timeout: 500 * time.Millisecond},
		Script:  ScriptConfig{Timeout: 250 * time.Millisecond},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"multisel.yaml": {Data: []byte("pattern:\n  literal: true\n  wholeWord: true\neditor:\n  tabWidth: 2\n")},
	}

	cfg, err := Load(WithFS(fsys), WithFile("multisel.yaml"), WithEnv(false))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Pattern.Literal || !cfg.Pattern.WholeWord {
		t.Errorf("Pattern = %+v, want literal whole-word", cfg.Pattern)
	}
	if cfg.Editor.TabWidth != 2 {
		t.Errorf("TabWidth = %d, want 2", cfg.Editor.TabWidth)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(WithFS(fstest.MapFS{}), WithFile("absent.toml"), WithEnv(false))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("MSTEST_LOG_LEVEL", "error")
	t.Setenv("MSTEST_ENGINE", "re2")
	t.Setenv("MSTEST_PATTERN_TIMEOUT", "2s")

	fsys := fstest.MapFS{
		"multisel.toml": {Data: []byte("[logging]\nlevel = \"debug\"\n[pattern]\nengine = \"regexp2\"\n")},
	}

	cfg, err := Load(WithFS(fsys), WithFile("multisel.toml"), WithEnvPrefix("MSTEST_"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
	if cfg.Pattern.Engine != "re2" {
		t.Errorf("Pattern.Engine = %q, want re2", cfg.Pattern.Engine)
	}
	if cfg.Pattern.Timeout != 2*time.Second {
		t.Errorf("Pattern.Timeout = %v, want 2s", cfg.Pattern.Timeout)
	}
}

func TestLoadTypeError(t *testing.T) {
	fsys := fstest.MapFS{
		"multisel.toml": {Data: []byte("[editor]\ntabWidth = \"wide\"\n")},
	}

	_, err := Load(WithFS(fsys), WithFile("multisel.toml"), WithEnv(false))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Load() error = %v, want ErrTypeMismatch", err)
	}
	var terr *TypeError
	if !errors.As(err, &terr) || terr.Path != "editor.tabWidth" || terr.Actual != "string" {
		t.Errorf("TypeError = %+v", terr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"tab width", func(c *Config) { c.Editor.TabWidth = 0 }, "editor.tabWidth"},
		{"line ending", func(c *Config) { c.Editor.LineEnding = "nel" }, "editor.lineEnding"},
		{"engine", func(c *Config) { c.Pattern.Engine = "pcre" }, "pattern.engine"},
		{"pattern timeout", func(c *Config) { c.Pattern.Timeout = -time.Second }, "pattern.timeout"},
		{"script timeout", func(c *Config) { c.Script.Timeout = -time.Second }, "script.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() error = %v, want ErrValidationFailed", err)
			}
			var verr *ValidationError
			if errors.As(err, &verr) && verr.Path != tt.path {
				t.Errorf("ValidationError.Path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestFromMapBoolAndDuration(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"pattern": map[string]any{"ignoreCase": int64(1), "timeout": int64(40)},
	})
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}
	if !cfg.Pattern.IgnoreCase {
		t.Error("IgnoreCase = false, want true")
	}
	if cfg.Pattern.Timeout != 40*time.Millisecond {
		t.Errorf("Timeout = %v, want 40ms", cfg.Pattern.Timeout)
	}

	if _, err := FromMap(map[string]any{"script": map[string]any{"timeout": "soon"}}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("FromMap(bad duration) error = %v, want ErrTypeMismatch", err)
	}
}

func TestDerivedOptions(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "WARN"
	cfg.Pattern.Engine = "regexp2"
	cfg.Pattern.WholeWord = true

	if got := cfg.LogLevel(); got != logging.LevelWarn {
		t.Errorf("LogLevel() = %v, want warn", got)
	}

	want := pattern.Options{
		Engine:    pattern.EngineRegexp2,
		WholeWord: true,
		Timeout:   pattern.DefaultTimeout,
	}
	if diff := cmp.Diff(want, cfg.PatternOptions()); diff != "" {
		t.Errorf("PatternOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentOptions(t *testing.T) {
	tests := []struct {
		lineEnding string
		text       string
		want       buffer.LineEnding
	}{
		{"lf", "a\r\nb", buffer.LineEndingLF},
		{"crlf", "a\nb", buffer.LineEndingCRLF},
		{"auto", "a\r\nb\r\n", buffer.LineEndingCRLF},
	}
	for _, tt := range tests {
		t.Run(tt.lineEnding, func(t *testing.T) {
			cfg := Default()
			cfg.Editor.TabWidth = 8
			cfg.Editor.LineEnding = tt.lineEnding

			doc, err := buffer.NewDocument(tt.text, cfg.DocumentOptions()...)
			if err != nil {
				t.Fatalf("NewDocument() error = %v", err)
			}
			if doc.LineEnding() != tt.want {
				t.Errorf("LineEnding() = %v, want %v", doc.LineEnding(), tt.want)
			}
			if doc.TabWidth() != 8 {
				t.Errorf("TabWidth() = %d, want 8", doc.TabWidth())
			}
		})
	}
}
