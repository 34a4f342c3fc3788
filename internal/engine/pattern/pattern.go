// Package pattern compiles search expressions into patterns usable by the
// selection transforms.
//
// Two engines are available. EngineRE2 uses the standard library's
// linear-time matcher. EngineRegexp2 uses github.com/dlclark/regexp2, which
// adds lookaround and backreferences at the cost of backtracking; its match
// time is bounded by Options.Timeout.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/dshills/multisel/internal/engine/selection"
)

// Engine names a regular expression engine.
type Engine string

const (
	EngineRE2     Engine = "re2"
	EngineRegexp2 Engine = "regexp2"
)

// DefaultTimeout bounds a single regexp2 match.
const DefaultTimeout = time.Second

// Errors returned by Compile.
var (
	ErrUnknownEngine = errors.New("unknown pattern engine")
	ErrEmptyPattern  = errors.New("empty pattern")
	ErrInvalid       = errors.New("invalid pattern")
)

// Options configures pattern compilation.
type Options struct {
	// Engine selects the matcher. Empty means EngineRE2.
	Engine Engine

	// IgnoreCase matches letters case-insensitively.
	IgnoreCase bool

	// Literal treats the expression as plain text.
	Literal bool

	// WholeWord anchors the expression on word boundaries.
	WholeWord bool

	// Timeout bounds a single regexp2 match. Zero means DefaultTimeout.
	// Ignored by EngineRE2.
	Timeout time.Duration
}

// DefaultOptions returns the default compile options.
func DefaultOptions() Options {
	return Options{
		Engine:  EngineRE2,
		Timeout: DefaultTimeout,
	}
}

// ParseEngine converts an engine name to an Engine.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case "", EngineRE2:
		return EngineRE2, nil
	case EngineRegexp2:
		return EngineRegexp2, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Compile compiles expr with the given options.
func Compile(expr string, opts Options) (selection.Pattern, error) {
	if expr == "" {
		return nil, ErrEmptyPattern
	}

	switch opts.Engine {
	case "", EngineRE2:
		re, err := compileRE2(expr, opts)
		if err != nil {
			return nil, err
		}
		return re, nil
	case EngineRegexp2:
		re, err := compileRegexp2(expr, opts)
		if err != nil {
			return nil, err
		}
		return re, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
	}
}

func compileRE2(expr string, opts Options) (*regexp.Regexp, error) {
	if opts.Literal {
		expr = regexp.QuoteMeta(expr)
	}
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return re, nil
}

func compileRegexp2(expr string, opts Options) (*Regexp2, error) {
	if opts.Literal {
		expr = regexp2.Escape(expr)
	}
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}

	var flags regexp2.RegexOptions
	if opts.IgnoreCase {
		flags |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(expr, flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	re.MatchTimeout = opts.Timeout
	if re.MatchTimeout <= 0 {
		re.MatchTimeout = DefaultTimeout
	}
	return &Regexp2{re: re}, nil
}
