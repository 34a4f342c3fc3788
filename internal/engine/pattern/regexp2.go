package pattern

import (
	"sync"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Regexp2 adapts a regexp2.Regexp to selection.Pattern.
//
// regexp2 reports match positions in runes; Regexp2 converts them to byte
// offsets. A match that fails (usually by exceeding the timeout) is treated
// as no match and ends iteration. The first failure sticks in Err until
// Reset, so a transform over many ranges can tell it was cut short.
type Regexp2 struct {
	re *regexp2.Regexp

	mu  sync.Mutex
	err error
}

// MatchString reports whether s contains any match.
func (r *Regexp2) MatchString(s string) bool {
	ok, err := r.re.MatchString(s)
	r.setErr(err)
	return err == nil && ok
}

// FindAllStringIndex returns successive non-overlapping matches as byte
// offset pairs. n < 0 returns all matches.
func (r *Regexp2) FindAllStringIndex(s string, n int) [][]int {
	if n == 0 {
		return nil
	}

	m, err := r.re.FindStringMatch(s)
	r.setErr(err)
	if m == nil {
		return nil
	}

	offsets := byteOffsets(s)
	var out [][]int
	for m != nil {
		out = append(out, []int{offsets(m.Index), offsets(m.Index + m.Length)})
		if n > 0 && len(out) == n {
			break
		}
		m, err = r.re.FindNextMatch(m)
		if err != nil {
			r.setErr(err)
			break
		}
	}
	return out
}

// Err returns the first match failure since the last Reset.
func (r *Regexp2) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// String returns the source expression.
func (r *Regexp2) String() string {
	return r.re.String()
}

// Reset clears the recorded match failure.
func (r *Regexp2) Reset() {
	r.mu.Lock()
	r.err = nil
	r.mu.Unlock()
}

func (r *Regexp2) setErr(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
}

// byteOffsets returns a function mapping rune indexes of s to byte offsets.
// Invalid bytes count as one rune each, as they do for regexp2.
func byteOffsets(s string) func(int) int {
	if isASCII(s) {
		return func(i int) int { return i }
	}

	table := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		table = append(table, i)
	}
	table = append(table, len(s))

	return func(i int) int {
		if i >= len(table) {
			return len(s)
		}
		return table[i]
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
