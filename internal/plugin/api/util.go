package api

import (
	"regexp"

	"github.com/rivo/uniseg"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/multisel/internal/logging"
)

// UtilModule implements the ms.util API module.
type UtilModule struct {
	ctx *Context
}

// NewUtilModule creates a new util module.
func NewUtilModule(ctx *Context) *UtilModule {
	return &UtilModule{ctx: ctx}
}

// Name returns the module name.
func (m *UtilModule) Name() string {
	return "util"
}

// Register registers the module into the Lua state.
func (m *UtilModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "escape", L.NewFunction(m.escape))
	L.SetField(mod, "width", L.NewFunction(m.width))
	L.SetField(mod, "graphemes", L.NewFunction(m.graphemes))
	L.SetField(mod, "log", L.NewFunction(m.log))

	L.SetGlobal("_ms_util", mod)
	return nil
}

// escape(str) -> pattern matching str literally
func (m *UtilModule) escape(L *lua.LState) int {
	L.Push(lua.LString(regexp.QuoteMeta(L.CheckString(1))))
	return 1
}

// width(str) -> display width in columns
func (m *UtilModule) width(L *lua.LState) int {
	L.Push(lua.LNumber(uniseg.StringWidth(L.CheckString(1))))
	return 1
}

// graphemes(str) -> number of grapheme clusters
func (m *UtilModule) graphemes(L *lua.LState) int {
	L.Push(lua.LNumber(uniseg.GraphemeClusterCount(L.CheckString(1))))
	return 1
}

// log(level, msg)
// level is one of "debug", "info", "warn", "error".
func (m *UtilModule) log(L *lua.LState) int {
	level, err := logging.ParseLevel(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	msg := L.CheckString(2)

	logger := m.ctx.logger().WithComponent("script")
	switch level {
	case logging.LevelDebug:
		logger.Debug("%s", msg)
	case logging.LevelWarn:
		logger.Warn("%s", msg)
	case logging.LevelError:
		logger.Error("%s", msg)
	default:
		logger.Info("%s", msg)
	}
	return 0
}
