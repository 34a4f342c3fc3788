// Package main is the entry point for the multisel command.
//
// multisel loads a text, applies a selection to it, refines the selection
// with keep, select or split and/or a Lua script, and prints the result:
//
//	multisel -text "one two three" -op select -pattern '\w+'
//	*0 0 3 "one"
//	 1 4 7 "two"
//	 2 8 13 "three"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dshills/multisel/internal/config"
	"github.com/dshills/multisel/internal/engine/buffer"
	"github.com/dshills/multisel/internal/engine/pattern"
	"github.com/dshills/multisel/internal/engine/selection"
	"github.com/dshills/multisel/internal/logging"
	"github.com/dshills/multisel/internal/plugin"
	"github.com/dshills/multisel/internal/plugin/api"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitNoMatch = 2
)

// errNoMatch reports a keep or select that matched nothing.
var errNoMatch = errors.New("no match")

type options struct {
	configPath string
	file       string
	text       string
	textSet    bool
	sel        string
	primary    int
	op         string
	pattern    string
	engine     string
	ignoreCase bool
	script     string
	logLevel   string
	version    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if opts.version {
		fmt.Fprintf(stdout, "multisel %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	err = execute(ctx, opts, stdin, stdout, stderr)
	switch {
	case errors.Is(err, errNoMatch):
		return exitNoMatch
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("multisel", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.file, "file", "", "Read text from file (default: stdin)")
	fs.Func("text", "Use the given text instead of a file", func(s string) error {
		opts.text, opts.textSet = s, true
		return nil
	})
	fs.StringVar(&opts.sel, "sel", "", `Initial ranges as "anchor:head,..." (default: whole text)`)
	fs.IntVar(&opts.primary, "primary", 0, "Index of the primary range in -sel")
	fs.StringVar(&opts.op, "op", "", "Selection operation: keep, select or split")
	fs.StringVar(&opts.pattern, "pattern", "", "Pattern for -op")
	fs.StringVar(&opts.engine, "engine", "", "Pattern engine: re2 or regexp2 (overrides config)")
	fs.BoolVar(&opts.ignoreCase, "i", false, "Match case-insensitively")
	fs.StringVar(&opts.script, "script", "", "Lua script to run after -op")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.BoolVar(&opts.version, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "multisel - multi-range selection tool\n\n")
		fmt.Fprintf(stderr, "Usage: multisel [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  multisel -file main.go -op select -pattern 'func \\w+'\n")
		fmt.Fprintf(stderr, "  multisel -text 'a,b,c' -op split -pattern ','\n")
		fmt.Fprintf(stderr, "  multisel -file notes.md -script words.lua\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	switch opts.op {
	case "", "keep", "select", "split":
	default:
		return opts, fmt.Errorf("invalid operation %q (must be keep, select, or split)", opts.op)
	}
	if opts.op != "" && opts.pattern == "" {
		return opts, fmt.Errorf("-op %s requires -pattern", opts.op)
	}
	if opts.file != "" && opts.textSet {
		return opts, errors.New("-file and -text are mutually exclusive")
	}

	return opts, nil
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(config.WithFile(opts.configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.engine != "" {
		cfg.Pattern.Engine = opts.engine
	}
	if opts.ignoreCase {
		cfg.Pattern.IgnoreCase = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func execute(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: stderr,
		Prefix: "multisel",
	})
	logging.SetDefault(logger)

	doc, err := loadDocument(opts, cfg, stdin)
	if err != nil {
		return err
	}
	logger.Debug("loaded document %s (%d chars), selection %v", doc.ID(), doc.Len(), doc.Selection())

	compile := func(expr string) (selection.Pattern, error) {
		return pattern.Compile(expr, cfg.PatternOptions())
	}

	var result error
	if opts.op != "" {
		result = applyOp(doc, opts.op, opts.pattern, compile, logger)
		if result != nil && !errors.Is(result, errNoMatch) {
			return result
		}
	}

	if opts.script != "" {
		host, err := plugin.NewHost(&api.Context{
			Selection: doc,
			Compile:   compile,
			Logger:    logger,
		},
			plugin.WithExecutionTimeout(cfg.Script.Timeout),
			plugin.WithPrint(func(line string) { fmt.Fprintln(stderr, line) }),
		)
		if err != nil {
			return err
		}
		defer host.Close()

		if err := host.RunFile(ctx, opts.script); err != nil {
			return err
		}
	}

	printSelection(stdout, doc.Snapshot())
	return result
}

// loadDocument reads the text and applies the initial selection.
func loadDocument(opts options, cfg *config.Config, stdin io.Reader) (*buffer.Document, error) {
	var (
		doc *buffer.Document
		err error
	)
	switch {
	case opts.textSet:
		doc, err = buffer.NewDocument(opts.text, cfg.DocumentOptions()...)
	case opts.file != "":
		f, ferr := os.Open(opts.file)
		if ferr != nil {
			return nil, ferr
		}
		defer f.Close()
		doc, err = buffer.NewDocumentFromReader(f, cfg.DocumentOptions()...)
	default:
		doc, err = buffer.NewDocumentFromReader(stdin, cfg.DocumentOptions()...)
	}
	if err != nil {
		return nil, err
	}

	sel := selection.Single(0, doc.Len())
	if opts.sel != "" {
		sel, err = parseSelection(opts.sel, opts.primary)
		if err != nil {
			return nil, err
		}
	}
	if err := doc.SetSelection(sel); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseSelection parses "anchor:head,..." where a bare offset is a cursor.
func parseSelection(s string, primary int) (selection.Selection, error) {
	parts := strings.Split(s, ",")
	ranges := make([]selection.Range, 0, len(parts))

	for _, part := range parts {
		a, h, isRange := strings.Cut(strings.TrimSpace(part), ":")
		anchor, err := parseOffset(a)
		if err != nil {
			return selection.Selection{}, fmt.Errorf("invalid range %q: %w", part, err)
		}
		head := anchor
		if isRange {
			if head, err = parseOffset(h); err != nil {
				return selection.Selection{}, fmt.Errorf("invalid range %q: %w", part, err)
			}
		}
		ranges = append(ranges, selection.NewRange(anchor, head))
	}

	if primary < 0 || primary >= len(ranges) {
		return selection.Selection{}, fmt.Errorf("primary index %d out of range [0, %d)", primary, len(ranges))
	}
	return selection.New(ranges, primary), nil
}

func parseOffset(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative offset %d", n)
	}
	return n, nil
}

func applyOp(doc *buffer.Document, op, expr string, compile api.Compiler, logger *logging.Logger) error {
	p, err := compile(expr)
	if err != nil {
		return err
	}

	log := logger.WithFields(map[string]any{"op": op, "pattern": expr})
	matched := true
	switch op {
	case "keep":
		matched = doc.Keep(p)
	case "select":
		matched = doc.Select(p)
	case "split":
		doc.Split(p)
	}

	if e, ok := p.(interface{ Err() error }); ok && e.Err() != nil {
		log.Warn("matching stopped early, selection unchanged: %v", e.Err())
		return fmt.Errorf("%s %q: %w", op, expr, e.Err())
	}
	if !matched {
		log.Info("nothing matched, selection unchanged")
		return errNoMatch
	}
	log.Debug("selection now has %d ranges", doc.Selection().Len())
	return nil
}

// printSelection writes one line per range: a '*' marking the primary,
// the index, anchor, head and the quoted fragment.
func printSelection(w io.Writer, snap *buffer.Snapshot) {
	sel := snap.Selection()
	text := snap.Rope()
	for i, r := range sel.All() {
		mark := " "
		if i == sel.PrimaryIndex() {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%d %d %d %q\n", mark, i, r.Anchor, r.Head, r.Fragment(text))
	}
}
