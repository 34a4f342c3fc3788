// Package selection provides the multi-range selection value used by the
// editing engine.
//
// Selection Model:
//
// A Range is an anchor/head pair of character offsets:
//   - Anchor: the end that stays put when the selection is extended
//   - Head: the end that moves (where the cursor is drawn)
//
// Either end may come first, which encodes the direction of the selection.
// A Range with Anchor == Head is a plain cursor. Ranges are inclusive on the
// left and exclusive on the right, so two non-empty ranges that share an
// edge do not overlap, while a cursor sitting on the left edge of another
// range does.
//
// A Selection holds one or more ranges and the index of the primary one.
// Every constructor and every method that returns a Selection yields a value
// that is:
//   - non-empty
//   - sorted by range start
//   - free of overlapping ranges (overlapping input is merged)
//   - pointing at a valid primary range
//
// Basic usage:
//
//	sel := selection.New([]selection.Range{
//		selection.NewRange(10, 12),
//		selection.NewRange(0, 4),
//	}, 0)
//	sel = sel.Push(selection.PointRange(20))
//	sel = sel.Map(changes)           // after editing the text
//
//	// refine with a pattern; ok is false when nothing matched
//	if next, ok := selection.SelectOnMatches(text, sel, re); ok {
//		sel = next
//	}
//
// Thread Safety:
//
// Range and Selection are immutable values. Methods never modify the
// receiver, so a Selection can be shared between goroutines; replace it
// wholesale to publish a new one.
package selection
