package selection

// Pattern is a compiled search pattern.
// *regexp.Regexp satisfies Pattern.
type Pattern interface {
	// MatchString reports whether s contains any match.
	MatchString(s string) bool
	// FindAllStringIndex returns successive non-overlapping matches as byte
	// offset pairs into s, left to right. n < 0 returns all matches.
	FindAllStringIndex(s string, n int) [][]int
}

// KeepMatches keeps the ranges whose text contains a match.
// It returns false when no range matches; the selection should then be
// left as it was. The first remaining range becomes primary.
func KeepMatches(text Text, sel Selection, p Pattern) (Selection, bool) {
	var result []Range
	for _, r := range sel.ranges {
		if p.MatchString(r.Fragment(text)) {
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return Selection{}, false
	}
	return New(result, 0), true
}

// SelectOnMatches replaces each range with one forward range per match
// inside it. It returns false when nothing matched anywhere. The first
// resulting range becomes primary.
func SelectOnMatches(text Text, sel Selection, p Pattern) (Selection, bool) {
	var result []Range
	for _, r := range sel.ranges {
		startByte := text.CharToByte(r.Start())
		for _, m := range p.FindAllStringIndex(r.Fragment(text), -1) {
			start := text.ByteToChar(startByte + m[0])
			end := text.ByteToChar(startByte + m[1])
			result = append(result, NewRange(start, end))
		}
	}
	if len(result) == 0 {
		return Selection{}, false
	}
	return New(result, 0), true
}

// SplitOnMatches splits each range on the matches inside it, keeping the
// text between matches. Cursors are kept unchanged. A match at the start of
// a range leaves a cursor there; a match at the end leaves nothing. The
// first resulting range becomes primary.
func SplitOnMatches(text Text, sel Selection, p Pattern) Selection {
	result := make([]Range, 0, len(sel.ranges))
	for _, r := range sel.ranges {
		if r.IsEmpty() {
			result = append(result, r)
			continue
		}

		selStart, selEnd := r.Start(), r.End()
		startByte := text.CharToByte(selStart)
		start := selStart
		for _, m := range p.FindAllStringIndex(r.Fragment(text), -1) {
			end := text.ByteToChar(startByte + m[0])
			result = append(result, NewRange(start, end))
			start = text.ByteToChar(startByte + m[1])
		}
		if start < selEnd {
			result = append(result, NewRange(start, selEnd))
		}
	}
	return New(result, 0)
}
