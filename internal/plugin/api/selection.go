package api

import (
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/multisel/internal/engine/selection"
	plua "github.com/dshills/multisel/internal/plugin/lua"
)

// SelectionModule implements the ms.selection API module.
type SelectionModule struct {
	ctx *Context
}

// NewSelectionModule creates a new selection module.
func NewSelectionModule(ctx *Context) *SelectionModule {
	return &SelectionModule{ctx: ctx}
}

// Name returns the module name.
func (m *SelectionModule) Name() string {
	return "selection"
}

// Register registers the module into the Lua state.
func (m *SelectionModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "ranges", L.NewFunction(m.ranges))
	L.SetField(mod, "primary", L.NewFunction(m.primary))
	L.SetField(mod, "primary_index", L.NewFunction(m.primaryIndex))
	L.SetField(mod, "count", L.NewFunction(m.count))
	L.SetField(mod, "fragments", L.NewFunction(m.fragments))
	L.SetField(mod, "text", L.NewFunction(m.text))
	L.SetField(mod, "set", L.NewFunction(m.set))
	L.SetField(mod, "push", L.NewFunction(m.push))
	L.SetField(mod, "into_single", L.NewFunction(m.intoSingle))
	L.SetField(mod, "keep", L.NewFunction(m.keep))
	L.SetField(mod, "select", L.NewFunction(m.selectMatches))
	L.SetField(mod, "split", L.NewFunction(m.split))

	L.SetGlobal("_ms_selection", mod)
	return nil
}

// checkProvider raises a Lua error when no document is attached.
func (m *SelectionModule) checkProvider(L *lua.LState) SelectionProvider {
	if m.ctx == nil || m.ctx.Selection == nil {
		L.RaiseError("no document available")
		return nil
	}
	return m.ctx.Selection
}

// rangeTable converts a range to {anchor = n, head = n}.
func rangeTable(L *lua.LState, r selection.Range) *lua.LTable {
	t := L.CreateTable(0, 2)
	t.RawSetString("anchor", lua.LNumber(r.Anchor))
	t.RawSetString("head", lua.LNumber(r.Head))
	return t
}

// ranges() -> {{anchor, head}, ...}
func (m *SelectionModule) ranges(L *lua.LState) int {
	sel := m.checkProvider(L).Snapshot().Selection()

	t := L.CreateTable(sel.Len(), 0)
	for i, r := range sel.All() {
		t.RawSetInt(i+1, rangeTable(L, r))
	}
	L.Push(t)
	return 1
}

// primary() -> anchor, head
func (m *SelectionModule) primary(L *lua.LState) int {
	r := m.checkProvider(L).Snapshot().Selection().Primary()
	L.Push(lua.LNumber(r.Anchor))
	L.Push(lua.LNumber(r.Head))
	return 2
}

// primary_index() -> index (1-based)
func (m *SelectionModule) primaryIndex(L *lua.LState) int {
	L.Push(lua.LNumber(m.checkProvider(L).Snapshot().Selection().PrimaryIndex() + 1))
	return 1
}

// count() -> number of ranges
func (m *SelectionModule) count(L *lua.LState) int {
	L.Push(lua.LNumber(m.checkProvider(L).Snapshot().Selection().Len()))
	return 1
}

// fragments() -> {text, ...}
func (m *SelectionModule) fragments(L *lua.LState) int {
	frags := slices.Collect(m.checkProvider(L).Snapshot().Fragments())
	L.Push(plua.NewBridge(L).ToLuaValue(frags))
	return 1
}

// text() -> full document text
func (m *SelectionModule) text(L *lua.LState) int {
	L.Push(lua.LString(m.checkProvider(L).Snapshot().Text()))
	return 1
}

// set(ranges, primary?)
// ranges is a list of {anchor = n, head = n} or {n, n} entries; primary is
// a 1-based index defaulting to 1.
func (m *SelectionModule) set(L *lua.LState) int {
	p := m.checkProvider(L)
	tbl := L.CheckTable(1)
	primary := L.OptInt(2, 1)

	n := tbl.Len()
	if n == 0 {
		L.ArgError(1, "at least one range is required")
		return 0
	}
	if primary < 1 || primary > n {
		L.ArgError(2, "primary index out of range")
		return 0
	}

	bridge := plua.NewBridge(L)
	ranges := make([]selection.Range, 0, n)
	for i := 1; i <= n; i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(1, "ranges must be tables")
			return 0
		}
		r, ok := tableRange(bridge, entry)
		if !ok {
			L.ArgError(1, "range needs integer anchor and head")
			return 0
		}
		ranges = append(ranges, r)
	}

	if err := p.SetSelection(selection.New(ranges, primary-1)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// tableRange reads {anchor = a, head = h} or {a, h}.
func tableRange(b *plua.Bridge, t *lua.LTable) (selection.Range, bool) {
	anchor, ok := b.TableInt(t, "anchor")
	if !ok {
		return positionalRange(t)
	}
	head, ok := b.TableInt(t, "head")
	if !ok || anchor < 0 || head < 0 {
		return selection.Range{}, false
	}
	return selection.NewRange(anchor, head), true
}

func positionalRange(t *lua.LTable) (selection.Range, bool) {
	a, ok1 := t.RawGetInt(1).(lua.LNumber)
	h, ok2 := t.RawGetInt(2).(lua.LNumber)
	if !ok1 || !ok2 || a < 0 || h < 0 || a != lua.LNumber(int(a)) || h != lua.LNumber(int(h)) {
		return selection.Range{}, false
	}
	return selection.NewRange(int(a), int(h)), true
}

// push(anchor, head?)
// Adds a range and makes it primary. head defaults to anchor.
func (m *SelectionModule) push(L *lua.LState) int {
	p := m.checkProvider(L)
	anchor := L.CheckInt(1)
	head := L.OptInt(2, anchor)
	if anchor < 0 || head < 0 {
		L.ArgError(1, "offsets must not be negative")
		return 0
	}

	r := selection.NewRange(anchor, head)
	if err := p.UpdateSelection(func(s selection.Selection) selection.Selection {
		return s.Push(r)
	}); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// into_single()
// Drops every range except the primary.
func (m *SelectionModule) intoSingle(L *lua.LState) int {
	p := m.checkProvider(L)
	if err := p.UpdateSelection(selection.Selection.IntoSingle); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// keep(pattern) -> bool
func (m *SelectionModule) keep(L *lua.LState) int {
	p := m.checkProvider(L)
	pat := m.compile(L, 1)
	ok := p.Keep(pat)
	m.checkMatchErr(pat)
	L.Push(lua.LBool(ok))
	return 1
}

// select(pattern) -> bool
func (m *SelectionModule) selectMatches(L *lua.LState) int {
	p := m.checkProvider(L)
	pat := m.compile(L, 1)
	ok := p.Select(pat)
	m.checkMatchErr(pat)
	L.Push(lua.LBool(ok))
	return 1
}

// split(pattern) -> number of ranges
func (m *SelectionModule) split(L *lua.LState) int {
	p := m.checkProvider(L)
	pat := m.compile(L, 1)
	p.Split(pat)
	m.checkMatchErr(pat)
	L.Push(lua.LNumber(p.Snapshot().Selection().Len()))
	return 1
}

// compile compiles the pattern argument at index n.
func (m *SelectionModule) compile(L *lua.LState, n int) selection.Pattern {
	expr := L.CheckString(n)
	if m.ctx.Compile == nil {
		L.RaiseError("no pattern compiler available")
		return nil
	}
	pat, err := m.ctx.Compile(expr)
	if err != nil {
		L.ArgError(n, err.Error())
		return nil
	}
	return pat
}

// checkMatchErr logs a matcher that stopped early, e.g. on a timeout.
func (m *SelectionModule) checkMatchErr(pat selection.Pattern) {
	if e, ok := pat.(interface{ Err() error }); ok && e.Err() != nil {
		m.ctx.logger().WithComponent("selection").Warn("pattern %s: %v", pat, e.Err())
	}
}
