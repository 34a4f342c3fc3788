// Package lua runs selection scripts on a sandboxed gopher-lua state.
//
// # State
//
// State owns a Lua runtime with only the base, package, table, string and
// math libraries opened:
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(2 * time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	if err := state.DoFile(ctx, "select-words.lua"); err != nil {
//	    return err
//	}
//
// # Sandbox
//
// The sandbox removes dofile, loadfile, load and loadstring, clears
// package.path so nothing is read from disk, and limits require to the
// safe built-in libraries and modules preloaded under the "ms" namespace.
// print is routed to a caller-supplied function.
//
// # Bridge
//
// Bridge converts between Go values and Lua values:
//
//	bridge := lua.NewBridge(state.LuaState())
//	tbl := bridge.ToLuaValue([]string{"foo", "bar"})
//	back := bridge.ToGoValue(tbl) // []any{"foo", "bar"}
package lua
