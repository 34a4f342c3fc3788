// Package api provides the Lua modules exposed to selection scripts.
//
// Scripts reach the host through the "ms" namespace:
//
//   - ms.selection: read and replace the selection, and refine it with
//     keep, select and split
//   - ms.util: pattern escaping, display width and logging
//
// Each module implements Module and registers itself as a _ms_<name>
// global. Registry.InjectAll gathers those globals into the ms table and
// preloads it, so scripts write:
//
//	local ms = require("ms")
//	if ms.selection.select("\\w+") then
//	    for i, frag in ipairs(ms.selection.fragments()) do
//	        print(i, frag)
//	    end
//	end
//
// Offsets are character offsets starting at 0. Range indices follow Lua
// and start at 1.
package api
