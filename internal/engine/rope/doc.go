// Package rope provides an immutable rope used as the text source for
// selections.
//
// A rope is a B+ tree whose leaves hold bounded UTF-8 chunks and whose
// internal nodes cache aggregated metrics (bytes, characters, newlines).
// Positions exposed to editing code are character (rune) offsets; byte
// offsets exist for the pattern engines, which operate on UTF-8 strings.
// CharToByte and ByteToChar convert between the two in O(log n).
//
// Basic usage:
//
//	r := rope.FromString("héllo world")
//	r = r.Insert(5, ",")            // "héllo, world"
//	b := r.CharToByte(2)            // 3, 'é' is two bytes
//	c := r.ByteToChar(b)            // 2
//	frag := r.Slice(0, 5)           // "héllo"
//
// Ropes are values. Insert, Delete and friends return new ropes and share
// unchanged subtrees with the original, so a Rope can be read from any
// number of goroutines.
package rope
