package plugin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/multisel/internal/logging"
	"github.com/dshills/multisel/internal/plugin/api"
	plua "github.com/dshills/multisel/internal/plugin/lua"
)

// ErrNilContext is returned by NewHost when no API context is given.
var ErrNilContext = errors.New("nil api context")

// Host runs scripts on a single Lua state.
type Host struct {
	mu sync.Mutex

	state  *plua.State
	logger *logging.Logger

	// Options
	executionTimeout time.Duration
	print            plua.PrintFunc

	runs int
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithExecutionTimeout bounds each script run. Zero disables the limit.
func WithExecutionTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.executionTimeout = d
	}
}

// WithPrint routes the script print function to fn. By default printed
// lines are logged at info level.
func WithPrint(fn plua.PrintFunc) HostOption {
	return func(h *Host) {
		h.print = fn
	}
}

// NewHost creates a Lua state with the standard API modules bound to ctx.
func NewHost(ctx *api.Context, opts ...HostOption) (*Host, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	logger := ctx.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	h := &Host{
		logger:           logger.WithComponent("plugin"),
		executionTimeout: plua.DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.print == nil {
		scriptLog := logger.WithComponent("script")
		h.print = func(line string) {
			scriptLog.Info("%s", line)
		}
	}

	state, err := plua.NewState(
		plua.WithExecutionTimeout(h.executionTimeout),
		plua.WithPrint(h.print),
	)
	if err != nil {
		return nil, fmt.Errorf("create lua state: %w", err)
	}

	registry, err := api.DefaultRegistry(ctx)
	if err != nil {
		state.Close()
		return nil, err
	}
	if err := registry.InjectAll(state.LuaState()); err != nil {
		state.Close()
		return nil, fmt.Errorf("inject api modules: %w", err)
	}

	h.state = state
	return h, nil
}

// RunString executes a chunk of Lua code.
func (h *Host) RunString(ctx context.Context, code string) error {
	return h.run("<string>", func() error {
		return h.state.DoString(ctx, code)
	})
}

// RunFile executes the Lua file at path.
func (h *Host) RunFile(ctx context.Context, path string) error {
	return h.run(filepath.Base(path), func() error {
		return h.state.DoFile(ctx, path)
	})
}

func (h *Host) run(name string, fn func() error) error {
	h.mu.Lock()
	h.runs++
	run := h.runs
	h.mu.Unlock()

	log := h.logger.WithFields(map[string]any{"script": name, "run": run})
	log.Debug("running script")

	start := time.Now()
	err := fn()
	if err != nil {
		log.Error("script failed: %v", err)
		return fmt.Errorf("script %s: %w", name, err)
	}
	log.Debug("script finished in %s", time.Since(start))
	return nil
}

// Close releases the Lua state.
func (h *Host) Close() error {
	return h.state.Close()
}
