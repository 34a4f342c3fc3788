package buffer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/multisel/internal/engine/change"
	"github.com/dshills/multisel/internal/engine/rope"
	"github.com/dshills/multisel/internal/engine/selection"
)

// Errors returned by document operations.
var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrStaleChangeSet   = errors.New("change set does not match document length")
)

// RevisionID identifies a document revision.
// Each modification to the text or selection creates a new revision.
type RevisionID uint64

// revisionCounter is used to generate unique revision IDs.
var revisionCounter atomic.Uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(revisionCounter.Add(1))
}

// Document holds text and the selection over it.
// All methods are thread-safe.
type Document struct {
	mu       sync.RWMutex
	id       uuid.UUID
	text     rope.Rope
	lines    rope.Rope
	sel      selection.Selection
	revision RevisionID

	lineEnding       LineEnding
	detectLineEnding bool
	tabWidth         int
}

// NewDocument creates a document holding text. The selection starts as a
// cursor at the beginning of the text unless WithSelection is given.
func NewDocument(text string, opts ...Option) (*Document, error) {
	d := &Document{
		id:         uuid.New(),
		sel:        selection.Point(0),
		revision:   NewRevisionID(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.detectLineEnding {
		d.lineEnding = DetectLineEnding(text)
	}
	d.text = rope.FromString(d.lineEnding.Normalize(text))
	d.lines = lineRope(d.text, d.lineEnding)

	if err := d.sel.Validate(d.text.LenChars()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	return d, nil
}

// NewDocumentFromReader creates a document from an io.Reader.
func NewDocumentFromReader(r io.Reader, opts ...Option) (*Document, error) {
	// Read everything first; CRLF pairs may straddle read boundaries.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(string(data), opts...)
}

// ID returns the document's unique identifier.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Revision returns the current revision ID.
func (d *Document) Revision() RevisionID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Text returns the full document text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text.String()
}

// Rope returns the current text.
func (d *Document) Rope() rope.Rope {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Len returns the length of the text in characters.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text.LenChars()
}

// LineEnding returns the document's line ending style.
func (d *Document) LineEnding() LineEnding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lineEnding
}

// TabWidth returns the document's tab width.
func (d *Document) TabWidth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tabWidth
}

// Selection returns the current selection.
func (d *Document) Selection() selection.Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sel
}

// SetSelection replaces the selection. The selection must fit the text.
func (d *Document) SetSelection(sel selection.Selection) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := sel.Validate(d.text.LenChars()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	d.sel = sel
	d.revision = NewRevisionID()
	return nil
}

// UpdateSelection replaces the selection with f applied to it.
func (d *Document) UpdateSelection(f func(selection.Selection) selection.Selection) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := f(d.sel)
	if err := sel.Validate(d.text.LenChars()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	d.sel = sel
	d.revision = NewRevisionID()
	return nil
}

// LineCount returns the number of lines in the text.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lines.LineCount()
}

// Apply applies a change set to the text and maps the selection through it.
func (d *Document) Apply(cs change.ChangeSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.apply(cs)
}

func (d *Document) apply(cs change.ChangeSet) error {
	if cs.LenBefore() != d.text.LenChars() {
		return fmt.Errorf("%w: change set expects %d chars, document has %d",
			ErrStaleChangeSet, cs.LenBefore(), d.text.LenChars())
	}
	if cs.IsEmpty() {
		return nil
	}

	text, err := cs.Apply(d.text)
	if err != nil {
		return err
	}
	d.text = text
	d.lines = lineRope(text, d.lineEnding)
	d.sel = d.sel.Map(cs)
	d.revision = NewRevisionID()
	return nil
}

// Edit applies edits given in ascending, non-overlapping order.
func (d *Document) Edit(edits ...change.Edit) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cs, err := change.FromEdits(d.text.LenChars(), edits)
	if err != nil {
		return err
	}
	return d.apply(cs)
}

// Keep keeps only the selected ranges that contain a match for p.
// It reports false and leaves the selection alone when none do.
func (d *Document) Keep(p selection.Pattern) bool {
	return d.refine(p, func(text rope.Rope, sel selection.Selection) (selection.Selection, bool) {
		return selection.KeepMatches(text, sel, p)
	})
}

// Select replaces the selection with the matches of p inside it.
// It reports false and leaves the selection alone when nothing matches.
func (d *Document) Select(p selection.Pattern) bool {
	return d.refine(p, func(text rope.Rope, sel selection.Selection) (selection.Selection, bool) {
		return selection.SelectOnMatches(text, sel, p)
	})
}

// Split splits the selected ranges on the matches of p.
func (d *Document) Split(p selection.Pattern) {
	d.refine(p, func(text rope.Rope, sel selection.Selection) (selection.Selection, bool) {
		return selection.SplitOnMatches(text, sel, p), true
	})
}

// failingPattern is a Pattern that can give up on a match, e.g. on a
// timeout, and records why until Reset.
type failingPattern interface {
	Reset()
	Err() error
}

// refine commits the selection f derives from the current one. A pattern
// that failed partway leaves the selection unchanged.
func (d *Document) refine(p selection.Pattern, f func(rope.Rope, selection.Selection) (selection.Selection, bool)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	fp, canFail := p.(failingPattern)
	if canFail {
		fp.Reset()
	}

	sel, ok := f(d.text, d.sel)
	if !ok {
		return false
	}
	if canFail && fp.Err() != nil {
		return false
	}
	d.sel = sel
	d.revision = NewRevisionID()
	return true
}

// PrimaryColumn returns the visual column of the primary cursor.
func (d *Document) PrimaryColumn() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lines.VisualColumn(d.sel.Cursor(), d.tabWidth)
}

// UpdateHoriz records the visual column of every range head as its
// horizontal hint.
func (d *Document) UpdateHoriz() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sel = d.sel.Transform(func(r selection.Range) selection.Range {
		return r.WithHoriz(uint32(d.lines.VisualColumn(r.Head, d.tabWidth)))
	})
}

// Snapshot returns a read-only snapshot of the current document state.
// Safe for concurrent access from other goroutines.
func (d *Document) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &Snapshot{
		id:       d.id,
		text:     d.text, // Ropes are immutable, safe to share
		lines:    d.lines,
		sel:      d.sel,
		revision: d.revision,
		tabWidth: d.tabWidth,
	}
}

// lineRope returns the rope used for line and column lookups. The rope only
// breaks lines at '\n', so a CR document gets a copy with every '\r' turned
// into '\n'. Offsets are the same in both.
func lineRope(text rope.Rope, le LineEnding) rope.Rope {
	if le != LineEndingCR {
		return text
	}
	return rope.FromString(strings.ReplaceAll(text.String(), "\r", "\n"))
}
