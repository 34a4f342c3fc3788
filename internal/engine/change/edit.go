package change

import (
	"errors"
	"fmt"
)

// Errors returned when building or applying change sets.
var (
	ErrRangeInvalid   = errors.New("invalid range")
	ErrEditsOverlap   = errors.New("edits overlap or are not sorted")
	ErrLengthMismatch = errors.New("change set length does not match document")
)

// Edit replaces the characters in [From, To) with Text.
type Edit struct {
	From int
	To   int
	Text string
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(pos int, text string) Edit {
	return Edit{From: pos, To: pos, Text: text}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(from, to int) Edit {
	return Edit{From: from, To: to}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.From == e.To:
		return fmt.Sprintf("Insert(%d, %q)", e.From, e.Text)
	case e.Text == "":
		return fmt.Sprintf("Delete[%d:%d)", e.From, e.To)
	default:
		return fmt.Sprintf("Replace[%d:%d) with %q", e.From, e.To, e.Text)
	}
}

// FromEdits builds a change set over a document of docLen characters.
// Edits must be sorted by From and must not overlap; two insertions at the
// same position are allowed and applied in order.
func FromEdits(docLen int, edits []Edit) (ChangeSet, error) {
	b := NewBuilder(docLen)
	pos := 0
	for i, e := range edits {
		if e.From < 0 || e.From > e.To || e.To > docLen {
			return ChangeSet{}, fmt.Errorf("edit %d %v: %w", i, e, ErrRangeInvalid)
		}
		if e.From < pos {
			return ChangeSet{}, fmt.Errorf("edit %d %v: %w", i, e, ErrEditsOverlap)
		}
		b.Retain(e.From - pos)
		b.Delete(e.To - e.From)
		b.Insert(e.Text)
		pos = e.To
	}
	return b.Build(), nil
}
