package selection

import (
	"fmt"

	"github.com/dshills/multisel/internal/engine/change"
)

// Text is the text source selections are resolved against.
// Offsets passed to Slice are characters; CharToByte and ByteToChar convert
// between character offsets and byte offsets into the UTF-8 encoding.
type Text interface {
	Slice(from, to int) string
	CharToByte(pos int) int
	ByteToChar(offset int) int
}

// Changes maps positions across an edit.
type Changes interface {
	IsEmpty() bool
	MapPos(pos int, assoc change.Assoc) int
}

// column is an optional visual column.
type column struct {
	col   uint32
	valid bool
}

// Range is a single selection range.
// Range is an immutable value type.
type Range struct {
	Anchor int // Fixed end when extending
	Head   int // Moving end (cursor position)

	horiz column
}

// NewRange creates a range from anchor to head.
func NewRange(anchor, head int) Range {
	return Range{Anchor: anchor, Head: head}
}

// PointRange creates an empty range (a cursor) at pos.
func PointRange(pos int) Range {
	return Range{Anchor: pos, Head: pos}
}

// Start returns the lower bound of the range.
func (r Range) Start() int {
	return min(r.Anchor, r.Head)
}

// End returns the upper bound of the range.
func (r Range) End() int {
	return max(r.Anchor, r.Head)
}

// Len returns the number of characters covered.
func (r Range) Len() int {
	return r.End() - r.Start()
}

// IsEmpty returns true if the range is a cursor.
func (r Range) IsEmpty() bool {
	return r.Anchor == r.Head
}

// IsForward returns true if the head is not before the anchor.
func (r Range) IsForward() bool {
	return r.Anchor <= r.Head
}

// Flip returns the range with anchor and head swapped.
func (r Range) Flip() Range {
	return Range{Anchor: r.Head, Head: r.Anchor}
}

// Overlaps reports whether two ranges overlap.
//
// Ranges overlap when they start at the same position or when their spans
// properly intersect. Non-empty ranges that only touch do not overlap, but
// an empty range overlaps a range that starts at the same position.
func (r Range) Overlaps(other Range) bool {
	return r.Start() == other.Start() || (r.End() > other.Start() && other.End() > r.Start())
}

// Contains reports whether pos lies in [Start, End).
func (r Range) Contains(pos int) bool {
	return r.Start() <= pos && pos < r.End()
}

// Extend returns the range grown to cover at least [from, to], keeping its
// direction. The horizontal hint is dropped. It panics if from > to.
func (r Range) Extend(from, to int) Range {
	if from > to {
		panic(fmt.Sprintf("selection: Extend(%d, %d) with from > to", from, to))
	}
	if r.Anchor <= r.Head {
		return Range{Anchor: min(r.Anchor, from), Head: max(r.Head, to)}
	}
	return Range{Anchor: max(r.Anchor, to), Head: min(r.Head, from)}
}

// Map maps the range through a set of changes. Both ends stick to text
// inserted at their position. The horizontal hint is always dropped since
// earlier edits can shift the visual column without moving the offsets.
func (r Range) Map(changes Changes) Range {
	return Range{
		Anchor: changes.MapPos(r.Anchor, change.AssocAfter),
		Head:   changes.MapPos(r.Head, change.AssocAfter),
	}
}

// Fragment returns the text covered by the range.
func (r Range) Fragment(text Text) string {
	return text.Slice(r.Start(), r.End())
}

// Horiz returns the cached visual column used for vertical movement.
func (r Range) Horiz() (uint32, bool) {
	return r.horiz.col, r.horiz.valid
}

// WithHoriz returns the range with the visual column hint set.
func (r Range) WithHoriz(col uint32) Range {
	r.horiz = column{col: col, valid: true}
	return r
}

// String returns a string representation of the range.
func (r Range) String() string {
	if r.IsEmpty() {
		return fmt.Sprintf("Cursor(%d)", r.Head)
	}
	dir := "→"
	if !r.IsForward() {
		dir = "←"
	}
	return fmt.Sprintf("Range(%d%s%d)", r.Anchor, dir, r.Head)
}
