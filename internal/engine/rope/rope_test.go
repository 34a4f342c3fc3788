package rope

import (
	"strings"
	"testing"
	"testing/quick"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Errorf("New rope should have length 0, got %d", r.Len())
	}
	if !r.IsEmpty() {
		t.Error("New rope should be empty")
	}
	if r.LineCount() != 1 {
		t.Errorf("New rope should have 1 line, got %d", r.LineCount())
	}

	var zero Rope
	if zero.String() != "" || zero.LenChars() != 0 || zero.CharToByte(3) != 0 {
		t.Error("zero Rope should behave as empty")
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single char", "a"},
		{"with newline", "hello\nworld"},
		{"unicode", "hello 世界 🌍"},
		{"long string", strings.Repeat("abcdefghij", 100)},
		{"long unicode", strings.Repeat("ünïcödé ", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.input)
			if r.String() != tt.input {
				t.Errorf("String() = %q, want %q", r.String(), tt.input)
			}
			if r.Len() != len(tt.input) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.input))
			}
			if want := utf8.RuneCountInString(tt.input); r.LenChars() != want {
				t.Errorf("LenChars() = %d, want %d", r.LenChars(), want)
			}
		})
	}
}

func TestFromReader(t *testing.T) {
	input := strings.Repeat("línea de texto\n", 200)
	r, err := FromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FromReader() error = %v", err)
	}
	if r.String() != input {
		t.Error("FromReader() content mismatch")
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		pos      int
		text     string
		expected string
	}{
		{"insert at start", "world", 0, "hello ", "hello world"},
		{"insert at end", "hello", 5, " world", "hello world"},
		{"insert in middle", "helloworld", 5, " ", "hello world"},
		{"insert into empty", "", 0, "hello", "hello"},
		{"insert empty string", "hello", 3, "", "hello"},
		{"insert after multibyte", "世界", 1, "!", "世!界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromString(tt.initial).Insert(tt.pos, tt.text).String()
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		from, to int
		expected string
	}{
		{"delete start", "hello world", 0, 6, "world"},
		{"delete end", "hello world", 5, 11, "hello"},
		{"delete all", "hello", 0, 5, ""},
		{"delete nothing", "hello", 2, 2, "hello"},
		{"delete multibyte", "a世界b", 1, 3, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromString(tt.initial).Delete(tt.from, tt.to).String()
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	got := FromString("hello world").Replace(6, 11, "gophers").String()
	if got != "hello gophers" {
		t.Errorf("Replace() = %q, want %q", got, "hello gophers")
	}
}

func TestSlice(t *testing.T) {
	r := FromString("héllo wörld")
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 5, "héllo"},
		{6, 11, "wörld"},
		{1, 2, "é"},
		{3, 3, ""},
		{5, 3, ""},
		{8, 100, "rld"},
	}
	for _, tt := range tests {
		if got := r.Slice(tt.from, tt.to); got != tt.want {
			t.Errorf("Slice(%d, %d) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCharByteConversion(t *testing.T) {
	text := "aé世🌍b"
	r := FromString(text)

	// char -> byte offsets of each rune start
	wantBytes := []int{0, 1, 3, 6, 10, 11}
	for c, want := range wantBytes {
		if got := r.CharToByte(c); got != want {
			t.Errorf("CharToByte(%d) = %d, want %d", c, got, want)
		}
		if got := r.ByteToChar(want); got != c {
			t.Errorf("ByteToChar(%d) = %d, want %d", want, got, c)
		}
	}

	// A byte inside '世' maps to the char that contains it.
	if got := r.ByteToChar(4); got != 2 {
		t.Errorf("ByteToChar(4) = %d, want 2", got)
	}
	if got := r.CharToByte(100); got != len(text) {
		t.Errorf("CharToByte(100) = %d, want %d", got, len(text))
	}
	if got := r.ByteToChar(100); got != 5 {
		t.Errorf("ByteToChar(100) = %d, want 5", got)
	}
}

func TestCharByteConversionLarge(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		if i%3 == 0 {
			sb.WriteString("ж")
		} else {
			sb.WriteString("x")
		}
	}
	text := sb.String()
	r := FromString(text)
	if r.Height() < 2 {
		t.Fatalf("expected a multi-level tree, height = %d", r.Height())
	}

	char := 0
	for i := range text {
		if got := r.CharToByte(char); got != i {
			t.Fatalf("CharToByte(%d) = %d, want %d", char, got, i)
		}
		if got := r.ByteToChar(i); got != char {
			t.Fatalf("ByteToChar(%d) = %d, want %d", i, got, char)
		}
		char++
	}
}

func TestLines(t *testing.T) {
	r := FromString("one\ntwö\n\nfour")
	if r.LineCount() != 4 {
		t.Fatalf("LineCount() = %d, want 4", r.LineCount())
	}

	starts := []int{0, 4, 8, 9}
	for line, want := range starts {
		if got := r.LineToChar(line); got != want {
			t.Errorf("LineToChar(%d) = %d, want %d", line, got, want)
		}
		if got := r.CharToLine(want); got != line {
			t.Errorf("CharToLine(%d) = %d, want %d", want, got, line)
		}
	}
	if got := r.CharToLine(3); got != 0 {
		t.Errorf("CharToLine(3) = %d, want 0", got)
	}
	if got := r.LineToChar(10); got != r.LenChars() {
		t.Errorf("LineToChar(10) = %d, want %d", got, r.LenChars())
	}
}

func TestLinesLarge(t *testing.T) {
	line := "the quick brown föx\n"
	r := FromString(strings.Repeat(line, 300))
	n := utf8.RuneCountInString(line)
	for _, l := range []int{0, 1, 17, 150, 299} {
		if got := r.LineToChar(l); got != l*n {
			t.Errorf("LineToChar(%d) = %d, want %d", l, got, l*n)
		}
		if got := r.CharToLine(l*n + 3); got != l {
			t.Errorf("CharToLine(%d) = %d, want %d", l*n+3, got, l)
		}
	}
}

func TestVisualColumn(t *testing.T) {
	r := FromString("ab\n\tx世界y\ne\u0301z")
	tests := []struct {
		name string
		pos  int
		want int
	}{
		{"line start", 3, 0},
		{"after tab", 4, 4},
		{"after ascii", 5, 5},
		{"after wide", 6, 7},
		{"after two wide", 7, 9},
		{"combining mark", 11, 1},
		{"first line", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.VisualColumn(tt.pos, 4); got != tt.want {
				t.Errorf("VisualColumn(%d) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}
}

func TestSplitConcat(t *testing.T) {
	text := strings.Repeat("0123456789", 120)
	r := FromString(text)
	for _, at := range []int{0, 1, 255, 256, 700, len(text)} {
		left, right := r.Split(at)
		if left.String() != text[:at] || right.String() != text[at:] {
			t.Fatalf("Split(%d) mismatch", at)
		}
		if got := left.Concat(right).String(); got != text {
			t.Fatalf("Concat after Split(%d) mismatch", at)
		}
	}
}

func TestImmutability(t *testing.T) {
	r1 := FromString("hello")
	r2 := r1.Insert(5, " world")
	if r1.String() != "hello" {
		t.Errorf("original rope modified: %q", r1.String())
	}
	if r2.String() != "hello world" {
		t.Errorf("new rope = %q", r2.String())
	}
}

func TestEquals(t *testing.T) {
	text := strings.Repeat("abc", 400)
	a := FromString(text)
	b := FromString(text[:500]).Concat(FromString(text[500:]))
	if !a.Equals(b) {
		t.Error("ropes with same content but different structure should be equal")
	}
	if a.Equals(FromString(text[:len(text)-1] + "x")) {
		t.Error("ropes with different content should not be equal")
	}
	if !New().Equals(FromString("")) {
		t.Error("empty ropes should be equal")
	}
}

func TestChunkIterator(t *testing.T) {
	text := strings.Repeat("chunk iteration ", 100)
	it := FromString(text).Chunks()
	var sb strings.Builder
	for it.Next() {
		if it.Offset() != sb.Len() {
			t.Fatalf("Offset() = %d, want %d", it.Offset(), sb.Len())
		}
		sb.WriteString(it.Chunk().String())
	}
	if sb.String() != text {
		t.Error("chunks do not reassemble the text")
	}
}

func TestInsertDeleteProperty(t *testing.T) {
	f := func(base, ins string, at uint8) bool {
		r := FromString(base)
		pos := int(at) % (r.LenChars() + 1)
		inserted := r.Insert(pos, ins)
		n := utf8.RuneCountInString(ins)
		return inserted.Delete(pos, pos+n).Equals(r) && inserted.Slice(pos, pos+n) == ins
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestComputeSummary(t *testing.T) {
	tests := []struct {
		input string
		want  TextSummary
	}{
		{"", TextSummary{Flags: FlagASCII}},
		{"abc", TextSummary{Bytes: 3, Chars: 3, Flags: FlagASCII}},
		{"a\nb", TextSummary{Bytes: 3, Chars: 3, Lines: 1, Flags: FlagASCII | FlagHasNewlines}},
		{"é", TextSummary{Bytes: 2, Chars: 1}},
	}
	for _, tt := range tests {
		if got := ComputeSummary(tt.input); got != tt.want {
			t.Errorf("ComputeSummary(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}

	sum := ComputeSummary("ab").Add(ComputeSummary("ü\n"))
	want := TextSummary{Bytes: 5, Chars: 4, Lines: 1, Flags: FlagHasNewlines}
	if sum != want {
		t.Errorf("Add() = %+v, want %+v", sum, want)
	}
}
