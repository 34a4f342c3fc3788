package rope

import (
	"strings"
	"unicode/utf8"
)

// TextSummary holds aggregated metrics for a span of text.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes int

	// Chars is the number of runes.
	Chars int

	// Lines is the number of newline characters.
	Lines int

	// Flags indicate text properties for fast paths.
	Flags TextFlags
}

// TextFlags indicate text properties for optimization fast paths.
type TextFlags uint8

const (
	// FlagASCII indicates all characters are ASCII, so bytes == chars.
	FlagASCII TextFlags = 1 << iota

	// FlagHasNewlines indicates the text contains newline characters.
	FlagHasNewlines
)

// Add combines two summaries (monoid operation).
func (s TextSummary) Add(other TextSummary) TextSummary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}

	result := TextSummary{
		Bytes: s.Bytes + other.Bytes,
		Chars: s.Chars + other.Chars,
		Lines: s.Lines + other.Lines,
		Flags: s.Flags & other.Flags & FlagASCII,
	}
	if (s.Flags|other.Flags)&FlagHasNewlines != 0 {
		result.Flags |= FlagHasNewlines
	}
	return result
}

// IsASCII reports whether byte and char offsets coincide for this span.
func (s TextSummary) IsASCII() bool {
	return s.Flags&FlagASCII != 0
}

// zeroSummary is the identity element for Add.
func zeroSummary() TextSummary {
	return TextSummary{Flags: FlagASCII}
}

// ComputeSummary calculates metrics for a string.
func ComputeSummary(s string) TextSummary {
	if len(s) == 0 {
		return zeroSummary()
	}

	sum := TextSummary{
		Bytes: len(s),
		Chars: utf8.RuneCountInString(s),
		Lines: strings.Count(s, "\n"),
	}
	if sum.Bytes == sum.Chars {
		sum.Flags |= FlagASCII
	}
	if sum.Lines > 0 {
		sum.Flags |= FlagHasNewlines
	}
	return sum
}
