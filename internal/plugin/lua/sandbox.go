package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ModuleNamespace is the require prefix of modules provided by the host.
const ModuleNamespace = "ms"

// PrintFunc receives the output of the Lua print function, one call per
// print with arguments joined by tabs.
type PrintFunc func(line string)

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L     *lua.LState
	print PrintFunc
}

// NewSandbox creates a sandbox for the Lua state. A nil print discards
// script output.
func NewSandbox(L *lua.LState, print PrintFunc) *Sandbox {
	if print == nil {
		print = func(string) {}
	}
	return &Sandbox{L: L, print: print}
}

// Install applies the sandbox restrictions to the state.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installPrint()
	s.installRequire()
}

// installPrint replaces print with one that writes through the PrintFunc.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		parts := make([]string, 0, top)
		for i := 1; i <= top; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		s.print(strings.Join(parts, "\t"))
		return 0
	}))
}

// installRequire clears the on-disk search paths and replaces require with
// one that only loads the safe built-ins and preloaded ms modules.
func (s *Sandbox) installRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	original := s.L.GetGlobal("require")
	if original == lua.LNil {
		return
	}

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !Allowed(name) {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

// Allowed reports whether require may load the named module.
func Allowed(name string) bool {
	switch name {
	case "string", "table", "math", ModuleNamespace:
		return true
	}
	return strings.HasPrefix(name, ModuleNamespace+".")
}
