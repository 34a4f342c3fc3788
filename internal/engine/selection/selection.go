package selection

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Errors returned by Validate.
var (
	ErrOutOfBounds = errors.New("selection range out of bounds")
	ErrInvalid     = errors.New("selection invariant violated")
)

// Selection is an ordered, non-empty set of ranges with one primary range.
// The zero value is not a valid Selection; use New, Single or Point.
type Selection struct {
	ranges  []Range
	primary int
}

// Single creates a selection holding one range.
func Single(anchor, head int) Selection {
	return Selection{ranges: []Range{NewRange(anchor, head)}}
}

// Point creates a selection holding one cursor.
func Point(pos int) Selection {
	return Single(pos, pos)
}

// New creates a selection from ranges, sorting and merging them as needed.
// primary indexes the primary range in the input. The input slice is not
// retained. It panics if ranges is empty.
func New(ranges []Range, primary int) Selection {
	if len(ranges) == 0 {
		panic("selection: New called with no ranges")
	}
	if len(ranges) == 1 {
		return Selection{ranges: []Range{ranges[0]}}
	}
	return normalize(slices.Clone(ranges), primary)
}

// normalize sorts ranges by start and merges overlapping ones. The primary
// index follows the primary range by value, and ends up on whichever range
// absorbed it.
func normalize(ranges []Range, primary int) Selection {
	want := ranges[primary]
	slices.SortStableFunc(ranges, func(a, b Range) int {
		return a.Start() - b.Start()
	})
	primary = slices.Index(ranges, want)

	merged := ranges[:0:0]
	for i, r := range ranges {
		if n := len(merged); n > 0 && r.Overlaps(merged[n-1]) {
			prev := merged[n-1]
			from := prev.Start()
			to := max(r.End(), prev.End())

			// Every merge at or before the primary shifts it left by one.
			if len(merged) <= primary {
				primary--
			}

			// The merged range keeps prev's horiz.
			if r.Anchor > r.Head {
				merged[n-1].Anchor, merged[n-1].Head = to, from
			} else {
				merged[n-1].Anchor, merged[n-1].Head = from, to
			}
			continue
		}
		merged = append(merged, ranges[i])
	}

	return Selection{ranges: merged, primary: primary}
}

// Primary returns the primary range.
func (s Selection) Primary() Range {
	return s.ranges[s.primary]
}

// PrimaryIndex returns the index of the primary range.
func (s Selection) PrimaryIndex() int {
	return s.primary
}

// Cursor returns the head of the primary range.
func (s Selection) Cursor() int {
	return s.Primary().Head
}

// Len returns the number of ranges.
func (s Selection) Len() int {
	return len(s.ranges)
}

// Ranges returns a copy of the ranges in sorted order.
func (s Selection) Ranges() []Range {
	return slices.Clone(s.ranges)
}

// All iterates over the ranges in sorted order with their index.
func (s Selection) All() iter.Seq2[int, Range] {
	return func(yield func(int, Range) bool) {
		for i, r := range s.ranges {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Fragments iterates over the text of each range in sorted order.
// Slices are taken lazily, and the sequence can be ranged over repeatedly.
func (s Selection) Fragments(text Text) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, r := range s.ranges {
			if !yield(r.Fragment(text)) {
				return
			}
		}
	}
}

// IntoSingle returns a selection holding only the primary range.
func (s Selection) IntoSingle() Selection {
	if len(s.ranges) == 1 {
		return s
	}
	return Selection{ranges: []Range{s.Primary()}}
}

// Push adds a range and makes it primary, merging with overlapping ranges.
func (s Selection) Push(r Range) Selection {
	ranges := make([]Range, len(s.ranges), len(s.ranges)+1)
	copy(ranges, s.ranges)
	ranges = append(ranges, r)
	return normalize(ranges, len(ranges)-1)
}

// Map maps every range through a set of changes. An empty change set
// returns the selection as is.
func (s Selection) Map(changes Changes) Selection {
	if changes.IsEmpty() {
		return s
	}
	return s.Transform(func(r Range) Range {
		return r.Map(changes)
	})
}

// Transform applies f to every range and rebuilds the selection.
// f must not depend on the order in which ranges are visited.
func (s Selection) Transform(f func(Range) Range) Selection {
	ranges := make([]Range, len(s.ranges))
	for i, r := range s.ranges {
		ranges[i] = f(r)
	}
	if len(ranges) == 1 {
		return Selection{ranges: ranges}
	}
	return normalize(ranges, s.primary)
}

// Validate checks the selection invariants and that every range fits in a
// text of textLen characters.
func (s Selection) Validate(textLen int) error {
	if len(s.ranges) == 0 {
		return fmt.Errorf("no ranges: %w", ErrInvalid)
	}
	if s.primary < 0 || s.primary >= len(s.ranges) {
		return fmt.Errorf("primary index %d of %d ranges: %w", s.primary, len(s.ranges), ErrInvalid)
	}
	for i, r := range s.ranges {
		if r.Start() < 0 || r.End() > textLen {
			return fmt.Errorf("range %d %v in text of length %d: %w", i, r, textLen, ErrOutOfBounds)
		}
		if i == 0 {
			continue
		}
		prev := s.ranges[i-1]
		if prev.Start() > r.Start() || prev.Overlaps(r) {
			return fmt.Errorf("ranges %d and %d %v %v: %w", i-1, i, prev, r, ErrInvalid)
		}
	}
	return nil
}

// Equal reports whether two selections have the same ranges and primary.
func (s Selection) Equal(other Selection) bool {
	return s.primary == other.primary && slices.Equal(s.ranges, other.ranges)
}

// String returns a string representation of the selection. The primary
// range is marked with '*'.
func (s Selection) String() string {
	var sb strings.Builder
	sb.WriteString("Selection[")
	for i, r := range s.ranges {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i == s.primary {
			sb.WriteByte('*')
		}
		fmt.Fprintf(&sb, "%d:%d", r.Anchor, r.Head)
	}
	sb.WriteByte(']')
	return sb.String()
}
