package api

import (
	"fmt"
	"slices"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/multisel/internal/engine/buffer"
	"github.com/dshills/multisel/internal/engine/selection"
	"github.com/dshills/multisel/internal/logging"
	plua "github.com/dshills/multisel/internal/plugin/lua"
)

// Version is reported to scripts as ms.version.
const Version = "1.0.0"

// Module is a Lua API module.
type Module interface {
	// Name returns the module name (e.g., "selection", "util").
	Name() string

	// Register registers the module functions into the Lua state.
	// The module should register itself under the _ms_<name> global.
	Register(L *lua.LState) error
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates a new API registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns the registered module names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// InjectAll registers every module into the Lua state and installs the ms
// module loader.
func (r *Registry) InjectAll(L *lua.LState) error {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		if err := r.modules[name].Register(L); err != nil {
			return fmt.Errorf("failed to register module %q: %w", name, err)
		}
	}

	installLoader(L, names)
	return nil
}

// installLoader gathers the _ms_<name> globals into the ms table and
// preloads it as "ms" and each module as "ms.<name>".
func installLoader(L *lua.LState, names []string) {
	ms := L.NewTable()

	for _, name := range names {
		global := "_" + plua.ModuleNamespace + "_" + name
		mod := L.GetGlobal(global)
		if mod == lua.LNil {
			continue
		}
		L.SetField(ms, name, mod)
		L.SetGlobal(global, lua.LNil)

		L.PreloadModule(plua.ModuleNamespace+"."+name, func(L *lua.LState) int {
			L.Push(mod)
			return 1
		})
	}

	L.SetField(ms, "version", lua.LString(Version))

	L.PreloadModule(plua.ModuleNamespace, func(L *lua.LState) int {
		L.Push(ms)
		return 1
	})
}

// DefaultRegistry creates a registry with the standard modules.
func DefaultRegistry(ctx *Context) (*Registry, error) {
	r := NewRegistry()

	modules := []Module{
		NewSelectionModule(ctx),
		NewUtilModule(ctx),
	}
	for _, mod := range modules {
		if err := r.Register(mod); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}

	return r, nil
}

// Context gives API modules access to the host.
type Context struct {
	// Selection is the document whose selection scripts manipulate.
	Selection SelectionProvider

	// Compile turns a script-supplied pattern into a matcher.
	Compile Compiler

	// Logger receives ms.util.log output. Nil discards it.
	Logger *logging.Logger
}

// logger returns the context logger or a no-op logger.
func (c *Context) logger() *logging.Logger {
	if c == nil || c.Logger == nil {
		return logging.Nop()
	}
	return c.Logger
}

// SelectionProvider is the document state scripts operate on.
// *buffer.Document implements it.
type SelectionProvider interface {
	// Snapshot returns the current text and selection.
	Snapshot() *buffer.Snapshot

	// SetSelection replaces the selection. It fails when a range lies
	// outside the text.
	SetSelection(sel selection.Selection) error

	// UpdateSelection replaces the selection with f applied to it.
	UpdateSelection(f func(selection.Selection) selection.Selection) error

	// Keep keeps only the ranges that contain a match for p.
	Keep(p selection.Pattern) bool

	// Select replaces the selection with the matches of p inside it.
	Select(p selection.Pattern) bool

	// Split splits the ranges on the matches of p.
	Split(p selection.Pattern)
}

// Compiler compiles a pattern string.
type Compiler func(expr string) (selection.Pattern, error)
