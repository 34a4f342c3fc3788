package rope

import (
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

// Rope is an immutable rope data structure for text storage.
// Operations return new Rope values; the original is never modified.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeafNode()}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return buildFromChunks(splitIntoChunks(s))
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	if _, err := io.Copy(&b, r); err != nil {
		return Rope{}, err
	}
	return b.Build(), nil
}

// buildFromChunks builds a balanced rope bottom-up.
func buildFromChunks(chunks []Chunk) Rope {
	if len(chunks) == 0 {
		return New()
	}

	var leaves []*Node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		leafChunks := make([]Chunk, end-i)
		copy(leafChunks, chunks[i:end])
		leaves = append(leaves, newLeafNodeWithChunks(leafChunks))
	}
	return Rope{root: buildNodeFromChildren(leaves)}
}

// Len returns the total byte length.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// LenChars returns the number of characters (runes).
func (r Rope) LenChars() int {
	if r.root == nil {
		return 0
	}
	return r.root.summary.Chars
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() int {
	if r.root == nil {
		return 1
	}
	return r.root.summary.Lines + 1
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return zeroSummary()
	}
	return r.root.summary
}

// String returns the full text as a string.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.Len())
	r.root.appendTo(&sb)
	return sb.String()
}

// SliceBytes returns the text in the byte range [start, end).
func (r Rope) SliceBytes(start, end int) string {
	start = max(start, 0)
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(end - start)
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// Slice returns the text in the character range [from, to).
func (r Rope) Slice(from, to int) string {
	if from >= to {
		return ""
	}
	return r.SliceBytes(r.CharToByte(from), r.CharToByte(to))
}

// CharToByte converts a character offset to a byte offset.
// Offsets past the end clamp to Len.
func (r Rope) CharToByte(pos int) int {
	if r.root == nil || pos <= 0 {
		return 0
	}
	return r.root.charToByte(pos)
}

// ByteToChar converts a byte offset to a character offset. A byte inside a
// multi-byte character maps to that character.
func (r Rope) ByteToChar(offset int) int {
	if r.root == nil || offset <= 0 {
		return 0
	}
	return r.root.byteToChar(offset)
}

// CharToLine returns the 0-indexed line containing character offset pos.
func (r Rope) CharToLine(pos int) int {
	if r.root == nil || pos <= 0 {
		return 0
	}
	return r.root.charToLine(pos)
}

// LineToChar returns the character offset at which a 0-indexed line starts.
// Lines past the end map to LenChars.
func (r Rope) LineToChar(line int) int {
	if r.root == nil || line <= 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.LenChars()
	}
	return r.root.lineStart(line)
}

// VisualColumn returns the display column of character offset pos within
// its line. Grapheme clusters are measured with their monospace width and
// tabs advance to the next multiple of tabWidth.
func (r Rope) VisualColumn(pos, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 1
	}
	pos = min(max(pos, 0), r.LenChars())
	prefix := r.Slice(r.LineToChar(r.CharToLine(pos)), pos)

	col := 0
	state := -1
	for len(prefix) > 0 {
		var cluster string
		var width int
		cluster, prefix, width, state = uniseg.FirstGraphemeClusterInString(prefix, state)
		if cluster == "\t" {
			col += tabWidth - col%tabWidth
			continue
		}
		col += width
	}
	return col
}

// Insert inserts text at the given character offset.
func (r Rope) Insert(pos int, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.root == nil || r.Len() == 0 {
		return FromString(text)
	}
	left, right := r.Split(r.CharToByte(pos))
	return left.Concat(FromString(text)).Concat(right)
}

// Delete removes the characters in [from, to).
func (r Rope) Delete(from, to int) Rope {
	if r.root == nil || from >= to {
		return r
	}
	start, end := r.CharToByte(from), r.CharToByte(to)
	if start >= end {
		return r
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace replaces the characters in [from, to) with text.
func (r Rope) Replace(from, to int, text string) Rope {
	return r.Delete(from, to).Insert(from, text)
}

// Split splits the rope at a byte offset on a rune boundary.
func (r Rope) Split(offset int) (Rope, Rope) {
	if r.root == nil {
		return New(), New()
	}
	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat concatenates two ropes.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// Height returns the height of the rope tree.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}

// Equals returns true if two ropes contain the same text.
// Only content is compared, not structure.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	// Chunk boundaries differ between ropes, so compare by streaming bytes.
	a, b := r.Chunks(), other.Chunks()
	var sa, sb string
	for {
		if len(sa) == 0 {
			if !a.Next() {
				return len(sb) == 0 && !b.Next()
			}
			sa = a.Chunk().String()
		}
		if len(sb) == 0 {
			if !b.Next() {
				return false
			}
			sb = b.Chunk().String()
		}
		n := min(len(sa), len(sb))
		if sa[:n] != sb[:n] {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}
