package buffer

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/dshills/multisel/internal/engine/change"
	"github.com/dshills/multisel/internal/engine/pattern"
	"github.com/dshills/multisel/internal/engine/selection"
)

func fragments(d *Document) []string {
	return slices.Collect(d.Snapshot().Fragments())
}

func TestNewDocument(t *testing.T) {
	d, err := NewDocument("héllo\r\nworld")
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}

	if d.Text() != "héllo\nworld" {
		t.Errorf("Text() = %q, want line endings normalized", d.Text())
	}
	if d.Len() != 11 {
		t.Errorf("Len() = %d, want 11", d.Len())
	}
	if d.ID() == uuid.Nil {
		t.Error("ID() should not be nil")
	}
	if !d.Selection().Equal(selection.Point(0)) {
		t.Errorf("Selection() = %v, want cursor at 0", d.Selection())
	}
	if d.TabWidth() != 4 {
		t.Errorf("TabWidth() = %d, want 4", d.TabWidth())
	}
}

func TestNewDocumentOptions(t *testing.T) {
	d, err := NewDocument("a\r\nb\r\nc\n",
		WithDetectedLineEnding(),
		WithTabWidth(8),
		WithSelection(selection.Single(1, 4)),
	)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if d.LineEnding() != LineEndingCRLF {
		t.Errorf("LineEnding() = %v, want CRLF", d.LineEnding())
	}
	if d.Text() != "a\r\nb\r\nc\r\n" {
		t.Errorf("Text() = %q", d.Text())
	}
	if d.TabWidth() != 8 {
		t.Errorf("TabWidth() = %d, want 8", d.TabWidth())
	}
	if d.Selection().Primary() != selection.NewRange(1, 4) {
		t.Errorf("Selection() = %v, want 1:4", d.Selection())
	}
}

func TestNewDocumentInvalidSelection(t *testing.T) {
	_, err := NewDocument("abc", WithSelection(selection.Single(0, 9)))
	if !errors.Is(err, ErrInvalidSelection) || !errors.Is(err, selection.ErrOutOfBounds) {
		t.Errorf("NewDocument() error = %v, want ErrInvalidSelection wrapping ErrOutOfBounds", err)
	}
}

func TestNewDocumentFromReader(t *testing.T) {
	d, err := NewDocumentFromReader(strings.NewReader("one\rtwo"))
	if err != nil {
		t.Fatalf("NewDocumentFromReader() error = %v", err)
	}
	if d.Text() != "one\ntwo" {
		t.Errorf("Text() = %q, want %q", d.Text(), "one\ntwo")
	}
}

func TestSetSelection(t *testing.T) {
	d, _ := NewDocument("hello")
	rev := d.Revision()

	if err := d.SetSelection(selection.Single(0, 6)); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("SetSelection() error = %v, want ErrInvalidSelection", err)
	}
	if d.Revision() != rev {
		t.Error("failed SetSelection() should not bump the revision")
	}

	if err := d.SetSelection(selection.Single(5, 0)); err != nil {
		t.Fatalf("SetSelection() error = %v", err)
	}
	if d.Revision() == rev {
		t.Error("SetSelection() should bump the revision")
	}
}

func TestUpdateSelection(t *testing.T) {
	d, _ := NewDocument("hello world", WithSelection(selection.Single(0, 5)))

	err := d.UpdateSelection(func(s selection.Selection) selection.Selection {
		return s.Push(selection.NewRange(6, 11))
	})
	if err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}
	if diff := cmp.Diff([]string{"hello", "world"}, fragments(d)); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}

	err = d.UpdateSelection(func(s selection.Selection) selection.Selection {
		return s.Push(selection.NewRange(6, 20))
	})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("UpdateSelection() error = %v, want ErrInvalidSelection", err)
	}
}

func TestApply(t *testing.T) {
	d, _ := NewDocument("foo bar baz", WithSelection(selection.New([]selection.Range{
		selection.NewRange(0, 3),
		selection.NewRange(8, 11),
	}, 1)))
	rev := d.Revision()

	cs := change.NewBuilder(11).Retain(4).Delete(3).Insert("quux").Build()
	if err := d.Apply(cs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if d.Text() != "foo quux baz" {
		t.Errorf("Text() = %q, want %q", d.Text(), "foo quux baz")
	}
	if diff := cmp.Diff([]string{"foo", "baz"}, fragments(d)); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	if d.Selection().PrimaryIndex() != 1 {
		t.Errorf("PrimaryIndex() = %d, want 1", d.Selection().PrimaryIndex())
	}
	if d.Revision() == rev {
		t.Error("Apply() should bump the revision")
	}
}

func TestApplyStale(t *testing.T) {
	d, _ := NewDocument("abc")
	err := d.Apply(change.NewBuilder(5).Delete(1).Build())
	if !errors.Is(err, ErrStaleChangeSet) {
		t.Errorf("Apply() error = %v, want ErrStaleChangeSet", err)
	}
}

func TestApplyEmptyKeepsRevision(t *testing.T) {
	d, _ := NewDocument("abc")
	rev := d.Revision()
	if err := d.Apply(change.Empty(3)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if d.Revision() != rev {
		t.Error("an empty change set should not bump the revision")
	}
}

func TestEdit(t *testing.T) {
	d, _ := NewDocument("world", WithSelection(selection.Single(0, 5)))

	if err := d.Edit(change.NewInsert(0, "hello "), change.NewInsert(5, "!")); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if d.Text() != "hello world!" {
		t.Errorf("Text() = %q, want %q", d.Text(), "hello world!")
	}
	if got := d.Selection().Primary(); got != selection.NewRange(6, 12) {
		t.Errorf("Primary() = %v, want 6:12", got)
	}

	if err := d.Edit(change.NewDelete(4, 2)); !errors.Is(err, change.ErrRangeInvalid) {
		t.Errorf("Edit() error = %v, want ErrRangeInvalid", err)
	}
}

func TestKeepSelectSplit(t *testing.T) {
	d, _ := NewDocument("let a = 1; let bb = 22;", WithSelection(selection.Single(0, 23)))

	d.Split(regexp.MustCompile(`;\s*`))
	if diff := cmp.Diff([]string{"let a = 1", "let bb = 22"}, fragments(d)); diff != "" {
		t.Fatalf("Split() fragments mismatch (-want +got):\n%s", diff)
	}

	if !d.Keep(regexp.MustCompile(`bb`)) {
		t.Fatal("Keep() = false, want true")
	}
	if diff := cmp.Diff([]string{"let bb = 22"}, fragments(d)); diff != "" {
		t.Fatalf("Keep() fragments mismatch (-want +got):\n%s", diff)
	}

	rev := d.Revision()
	if d.Select(regexp.MustCompile(`zzz`)) {
		t.Error("Select() = true, want false")
	}
	if d.Revision() != rev {
		t.Error("a failed Select() should not bump the revision")
	}
	if diff := cmp.Diff([]string{"let bb = 22"}, fragments(d)); diff != "" {
		t.Errorf("failed Select() changed the selection (-want +got):\n%s", diff)
	}

	if !d.Select(regexp.MustCompile(`\d+`)) {
		t.Fatal("Select() = false, want true")
	}
	if diff := cmp.Diff([]string{"22"}, fragments(d)); diff != "" {
		t.Errorf("Select() fragments mismatch (-want +got):\n%s", diff)
	}
}

func TestRefineKeepsSelectionOnMatchFailure(t *testing.T) {
	slow := strings.Repeat("a", 40) + "c"
	text := slow + " ab"
	d, _ := NewDocument(text, WithSelection(selection.New([]selection.Range{
		selection.NewRange(0, 41),
		selection.NewRange(42, 44),
	}, 1)))
	before := d.Selection()
	rev := d.Revision()

	p, err := pattern.Compile(`(a+)+b`, pattern.Options{Engine: pattern.EngineRegexp2, Timeout: time.Millisecond})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	re := p.(*pattern.Regexp2)

	if d.Keep(p) {
		t.Error("Keep() = true, want false when the first range times out")
	}
	if re.Err() == nil {
		t.Error("Err() = nil, want the timeout from the first range")
	}
	if !d.Selection().Equal(before) || d.Revision() != rev {
		t.Errorf("Selection() = %v, want unchanged %v", d.Selection(), before)
	}

	d.Split(p)
	if !d.Selection().Equal(before) {
		t.Errorf("Split() changed the selection to %v", d.Selection())
	}

	if err := d.SetSelection(selection.Single(42, 44)); err != nil {
		t.Fatal(err)
	}
	if !d.Keep(p) {
		t.Error("Keep() = false, want a stale failure cleared before matching")
	}
	if re.Err() != nil {
		t.Errorf("Err() = %v, want nil", re.Err())
	}
}

func TestCRLineLookups(t *testing.T) {
	d, err := NewDocument("ab\rcd\ref", WithLineEnding(LineEndingCR), WithSelection(selection.New([]selection.Range{
		selection.PointRange(4),
		selection.PointRange(7),
	}, 1)))
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if d.Text() != "ab\rcd\ref" {
		t.Errorf("Text() = %q, want CR line endings kept", d.Text())
	}
	if got := d.LineCount(); got != 3 {
		t.Errorf("LineCount() = %d, want 3", got)
	}

	snap := d.Snapshot()
	if got := snap.PosToPoint(4); got != (Point{Line: 1, Column: 1}) {
		t.Errorf("PosToPoint(4) = %+v, want {1 1}", got)
	}
	if got := snap.VisualColumn(7); got != 1 {
		t.Errorf("VisualColumn(7) = %d, want 1", got)
	}
	if got := d.PrimaryColumn(); got != 1 {
		t.Errorf("PrimaryColumn() = %d, want 1", got)
	}

	if err := d.Edit(change.NewInsert(0, "x\r")); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if got := d.LineCount(); got != 4 {
		t.Errorf("LineCount() after edit = %d, want 4", got)
	}
	if got := d.Snapshot().PosToPoint(6); got != (Point{Line: 2, Column: 1}) {
		t.Errorf("PosToPoint(6) after edit = %+v, want {2 1}", got)
	}
}

func TestPrimaryColumnAndHoriz(t *testing.T) {
	d, _ := NewDocument("a\tb\n世界x", WithTabWidth(4), WithSelection(selection.New([]selection.Range{
		selection.PointRange(2),
		selection.PointRange(7),
	}, 1)))

	if got := d.PrimaryColumn(); got != 5 {
		t.Errorf("PrimaryColumn() = %d, want 5", got)
	}

	d.UpdateHoriz()
	want := []uint32{4, 5}
	for i, r := range d.Selection().All() {
		col, ok := r.Horiz()
		if !ok || col != want[i] {
			t.Errorf("range %d Horiz() = %d, %v, want %d, true", i, col, ok, want[i])
		}
	}
}

func TestSnapshotIsStable(t *testing.T) {
	d, _ := NewDocument("one\ntwo", WithSelection(selection.Single(4, 7)))
	snap := d.Snapshot()

	if err := d.Edit(change.NewDelete(0, 4)); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	if snap.Text() != "one\ntwo" || snap.Len() != 7 {
		t.Errorf("snapshot text changed: %q", snap.Text())
	}
	if snap.Selection().Primary() != selection.NewRange(4, 7) {
		t.Errorf("snapshot selection changed: %v", snap.Selection())
	}
	if snap.ID() != d.ID() {
		t.Error("snapshot ID should match the document")
	}
	if got := snap.PosToPoint(5); got != (Point{Line: 1, Column: 1}) {
		t.Errorf("PosToPoint(5) = %+v, want {1 1}", got)
	}
	if snap.Revision() == d.Revision() {
		t.Error("snapshot revision should lag behind the edited document")
	}
}

func TestDocumentConcurrency(t *testing.T) {
	d, _ := NewDocument(strings.Repeat("word ", 100))
	re := regexp.MustCompile(`\w+`)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if i%2 == 0 {
					d.SetSelection(selection.Single(0, d.Len()))
					d.Select(re)
				} else {
					snap := d.Snapshot()
					if err := snap.Selection().Validate(snap.Len()); err != nil {
						t.Errorf("snapshot selection invalid: %v", err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestEditConcurrentWithEdit(t *testing.T) {
	d, _ := NewDocument("abcd")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if err := d.Edit(change.NewInsert(0, "x")); err != nil {
					t.Errorf("Edit(insert) error = %v", err)
					return
				}
				if err := d.Edit(change.NewDelete(0, 1)); err != nil {
					t.Errorf("Edit(delete) error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := d.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4 after balanced edits", got)
	}
}
