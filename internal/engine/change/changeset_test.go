package change

import (
	"errors"
	"testing"

	"github.com/dshills/multisel/internal/engine/rope"
)

func TestBuilderFusesOperations(t *testing.T) {
	cs := NewBuilder(10).Retain(2).Retain(3).Delete(1).Delete(1).Insert("a").Insert("bc").Build()

	want := "retain(5) delete(2) insert(\"abc\") retain(3)"
	if got := cs.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
	if cs.LenBefore() != 10 || cs.LenAfter() != 11 {
		t.Errorf("lengths = %d/%d, want 10/11", cs.LenBefore(), cs.LenAfter())
	}
}

func TestBuilderPanicsPastEnd(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Build() should panic when operations exceed the document")
		}
	}()
	NewBuilder(3).Retain(2).Delete(2).Build()
}

func TestIsEmpty(t *testing.T) {
	if !Empty(5).IsEmpty() {
		t.Error("Empty(5) should be empty")
	}
	if !Empty(0).IsEmpty() {
		t.Error("Empty(0) should be empty")
	}
	if NewBuilder(5).Insert("x").Build().IsEmpty() {
		t.Error("insertion should not be empty")
	}
}

func TestMapPos(t *testing.T) {
	// "hello world" -> "hello big world"
	insert := NewBuilder(11).Retain(6).Insert("big ").Build()
	// "hello world" -> "hello there"
	replace := NewBuilder(11).Retain(6).Delete(5).Insert("there").Build()
	// "hello world" -> "hello "
	remove := NewBuilder(11).Retain(6).Delete(5).Build()

	tests := []struct {
		name  string
		cs    ChangeSet
		pos   int
		assoc Assoc
		want  int
	}{
		{"before insert", insert, 3, AssocAfter, 3},
		{"at insert after", insert, 6, AssocAfter, 10},
		{"at insert before", insert, 6, AssocBefore, 6},
		{"after insert", insert, 8, AssocAfter, 12},
		{"end of doc", insert, 11, AssocAfter, 15},
		{"start of replace", replace, 6, AssocAfter, 6},
		{"inside replace after", replace, 8, AssocAfter, 11},
		{"inside replace before", replace, 8, AssocBefore, 6},
		{"end of replace", replace, 11, AssocAfter, 11},
		{"inside delete", remove, 9, AssocAfter, 6},
		{"end of delete", remove, 11, AssocAfter, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cs.MapPos(tt.pos, tt.assoc); got != tt.want {
				t.Errorf("MapPos(%d, %v) = %d, want %d", tt.pos, tt.assoc, got, tt.want)
			}
		})
	}
}

func TestMapPosOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MapPos() should panic past the end of the change set")
		}
	}()
	Empty(4).MapPos(5, AssocAfter)
}

func TestApply(t *testing.T) {
	doc := rope.FromString("héllo wörld")
	cs, err := FromEdits(doc.LenChars(), []Edit{
		NewDelete(0, 1),
		NewInsert(1, "E"),
		{From: 6, To: 11, Text: "gophers"},
	})
	if err != nil {
		t.Fatalf("FromEdits() error = %v", err)
	}

	got, err := cs.Apply(doc)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.String() != "Eéllo gophers" {
		t.Errorf("Apply() = %q, want %q", got.String(), "Eéllo gophers")
	}
	if got.LenChars() != cs.LenAfter() {
		t.Errorf("LenAfter() = %d, document has %d", cs.LenAfter(), got.LenChars())
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	_, err := Empty(3).Apply(rope.FromString("four"))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Apply() error = %v, want ErrLengthMismatch", err)
	}
}

func TestFromEditsErrors(t *testing.T) {
	tests := []struct {
		name  string
		edits []Edit
		want  error
	}{
		{"inverted", []Edit{{From: 4, To: 2}}, ErrRangeInvalid},
		{"past end", []Edit{{From: 2, To: 20}}, ErrRangeInvalid},
		{"negative", []Edit{{From: -1, To: 0}}, ErrRangeInvalid},
		{"overlap", []Edit{NewDelete(0, 4), NewDelete(2, 5)}, ErrEditsOverlap},
		{"unsorted", []Edit{NewInsert(5, "a"), NewInsert(1, "b")}, ErrEditsOverlap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromEdits(10, tt.edits); !errors.Is(err, tt.want) {
				t.Errorf("FromEdits() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromEditsSamePositionInserts(t *testing.T) {
	cs, err := FromEdits(3, []Edit{NewInsert(1, "a"), NewInsert(1, "b")})
	if err != nil {
		t.Fatalf("FromEdits() error = %v", err)
	}
	got, _ := cs.Apply(rope.FromString("xyz"))
	if got.String() != "xabyz" {
		t.Errorf("Apply() = %q, want %q", got.String(), "xabyz")
	}
}
