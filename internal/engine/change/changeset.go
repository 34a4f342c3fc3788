package change

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/multisel/internal/engine/rope"
)

// Assoc decides which side of an insertion a mapped position sticks to
// when the insertion happens exactly at that position.
type Assoc uint8

const (
	// AssocBefore keeps the position in front of inserted text.
	AssocBefore Assoc = iota
	// AssocAfter moves the position past inserted text.
	AssocAfter
)

// String returns the name of the association.
func (a Assoc) String() string {
	if a == AssocBefore {
		return "before"
	}
	return "after"
}

// OpKind is the kind of a change set operation.
type OpKind uint8

const (
	OpRetain OpKind = iota // Keep characters
	OpDelete               // Drop characters
	OpInsert               // Add text
)

// Operation is one step of a change set.
// N is the character count for Retain and Delete; Text is set for Insert.
type Operation struct {
	Kind OpKind
	N    int
	Text string
}

// String returns a compact representation of the operation.
func (op Operation) String() string {
	switch op.Kind {
	case OpRetain:
		return fmt.Sprintf("retain(%d)", op.N)
	case OpDelete:
		return fmt.Sprintf("delete(%d)", op.N)
	default:
		return fmt.Sprintf("insert(%q)", op.Text)
	}
}

// ChangeSet is an immutable batch of edits over a document of LenBefore
// characters producing a document of LenAfter characters.
type ChangeSet struct {
	ops       []Operation
	lenBefore int
	lenAfter  int
}

// Empty returns a change set that leaves a document of docLen unchanged.
func Empty(docLen int) ChangeSet {
	return NewBuilder(docLen).Build()
}

// LenBefore returns the length of the document the change set applies to.
func (cs ChangeSet) LenBefore() int {
	return cs.lenBefore
}

// LenAfter returns the length of the document after applying the change set.
func (cs ChangeSet) LenAfter() int {
	return cs.lenAfter
}

// Operations returns a copy of the operations.
func (cs ChangeSet) Operations() []Operation {
	ops := make([]Operation, len(cs.ops))
	copy(ops, cs.ops)
	return ops
}

// IsEmpty reports whether the change set leaves the document untouched.
func (cs ChangeSet) IsEmpty() bool {
	for _, op := range cs.ops {
		if op.Kind != OpRetain {
			return false
		}
	}
	return true
}

// MapPos maps a position in the old document to the new document.
//
// Positions inside a deleted span collapse to the deletion point; with
// AssocAfter they move past any text that replaced the span. It panics if
// pos is beyond LenBefore.
func (cs ChangeSet) MapPos(pos int, assoc Assoc) int {
	oldPos, newPos := 0, 0

	for i := 0; i < len(cs.ops); i++ {
		op := cs.ops[i]
		switch op.Kind {
		case OpRetain:
			if oldPos+op.N > pos {
				return newPos + (pos - oldPos)
			}
			newPos += op.N
			oldPos += op.N

		case OpDelete:
			// A delete followed by an insert is a replacement.
			ins := 0
			if i+1 < len(cs.ops) && cs.ops[i+1].Kind == OpInsert {
				i++
				ins = utf8.RuneCountInString(cs.ops[i].Text)
			}
			if oldPos+op.N > pos {
				if pos == oldPos || assoc == AssocBefore {
					return newPos
				}
				return newPos + ins
			}
			newPos += ins
			oldPos += op.N

		case OpInsert:
			ins := utf8.RuneCountInString(op.Text)
			if oldPos == pos {
				if assoc == AssocBefore {
					return newPos
				}
				return newPos + ins
			}
			newPos += ins
		}
	}

	if pos > oldPos {
		panic(fmt.Sprintf("change: position %d is out of range for change set of length %d", pos, oldPos))
	}
	return newPos
}

// Apply applies the change set to a rope.
func (cs ChangeSet) Apply(r rope.Rope) (rope.Rope, error) {
	if r.LenChars() != cs.lenBefore {
		return r, fmt.Errorf("document has %d chars, change set expects %d: %w",
			r.LenChars(), cs.lenBefore, ErrLengthMismatch)
	}

	pos := 0
	for _, op := range cs.ops {
		switch op.Kind {
		case OpRetain:
			pos += op.N
		case OpDelete:
			r = r.Delete(pos, pos+op.N)
		case OpInsert:
			r = r.Insert(pos, op.Text)
			pos += utf8.RuneCountInString(op.Text)
		}
	}
	return r, nil
}

// String returns the operations separated by spaces.
func (cs ChangeSet) String() string {
	parts := make([]string, len(cs.ops))
	for i, op := range cs.ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Builder accumulates operations for a ChangeSet.
// Adjacent operations of the same kind are fused.
type Builder struct {
	ops       []Operation
	lenBefore int
	consumed  int
	lenAfter  int
}

// NewBuilder creates a builder for a document of docLen characters.
func NewBuilder(docLen int) *Builder {
	return &Builder{lenBefore: docLen}
}

// Retain keeps the next n characters.
func (b *Builder) Retain(n int) *Builder {
	if n <= 0 {
		return b
	}
	b.consumed += n
	b.lenAfter += n
	if last := b.last(); last != nil && last.Kind == OpRetain {
		last.N += n
		return b
	}
	b.ops = append(b.ops, Operation{Kind: OpRetain, N: n})
	return b
}

// Delete drops the next n characters.
func (b *Builder) Delete(n int) *Builder {
	if n <= 0 {
		return b
	}
	b.consumed += n
	if last := b.last(); last != nil && last.Kind == OpDelete {
		last.N += n
		return b
	}
	b.ops = append(b.ops, Operation{Kind: OpDelete, N: n})
	return b
}

// Insert adds text at the current position.
func (b *Builder) Insert(text string) *Builder {
	if text == "" {
		return b
	}
	b.lenAfter += utf8.RuneCountInString(text)
	if last := b.last(); last != nil && last.Kind == OpInsert {
		last.Text += text
		return b
	}
	b.ops = append(b.ops, Operation{Kind: OpInsert, Text: text})
	return b
}

func (b *Builder) last() *Operation {
	if len(b.ops) == 0 {
		return nil
	}
	return &b.ops[len(b.ops)-1]
}

// Build retains whatever the operations did not cover and returns the
// change set. It panics if the operations consumed more than the document.
func (b *Builder) Build() ChangeSet {
	if b.consumed > b.lenBefore {
		panic(fmt.Sprintf("change: operations cover %d chars of a %d char document", b.consumed, b.lenBefore))
	}
	b.Retain(b.lenBefore - b.consumed)

	ops := make([]Operation, len(b.ops))
	copy(ops, b.ops)
	return ChangeSet{ops: ops, lenBefore: b.lenBefore, lenAfter: b.lenAfter}
}
