package buffer

import (
	"iter"

	"github.com/google/uuid"

	"github.com/dshills/multisel/internal/engine/rope"
	"github.com/dshills/multisel/internal/engine/selection"
)

// Point is a zero-based line and column, with the column in characters.
type Point struct {
	Line   int
	Column int
}

// Snapshot provides a read-only view of a document at a specific point in
// time. It is safe for concurrent access and will not change even if the
// original document is modified.
type Snapshot struct {
	id       uuid.UUID
	text     rope.Rope
	lines    rope.Rope
	sel      selection.Selection
	revision RevisionID
	tabWidth int
}

// ID returns the identifier of the document the snapshot was taken from.
func (s *Snapshot) ID() uuid.UUID {
	return s.id
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.text.String()
}

// Rope returns the snapshot text.
func (s *Snapshot) Rope() rope.Rope {
	return s.text
}

// Len returns the length of the text in characters.
func (s *Snapshot) Len() int {
	return s.text.LenChars()
}

// Selection returns the snapshot selection.
func (s *Snapshot) Selection() selection.Selection {
	return s.sel
}

// Revision returns the revision ID of this snapshot.
func (s *Snapshot) Revision() RevisionID {
	return s.revision
}

// Fragments iterates over the text of each selected range.
func (s *Snapshot) Fragments() iter.Seq[string] {
	return s.sel.Fragments(s.text)
}

// LineCount returns the number of lines in the snapshot text.
func (s *Snapshot) LineCount() int {
	return s.lines.LineCount()
}

// PosToPoint converts a character offset to line/column.
func (s *Snapshot) PosToPoint(pos int) Point {
	line := s.lines.CharToLine(pos)
	return Point{Line: line, Column: pos - s.lines.LineToChar(line)}
}

// VisualColumn returns the display column of pos.
func (s *Snapshot) VisualColumn(pos int) int {
	return s.lines.VisualColumn(pos, s.tabWidth)
}
