// Package change describes a batch of edits against a document as a
// change set, and maps positions from the old document into the new one.
//
// A ChangeSet is a sequence of operations that walks the old text from
// start to end:
//
//   - Retain(n): keep the next n characters
//   - Delete(n): drop the next n characters
//   - Insert(s): add s at the current position
//
// All counts are character (rune) offsets, matching selection positions.
//
// Basic usage:
//
//	b := change.NewBuilder(doc.LenChars())
//	b.Retain(5)
//	b.Delete(3)
//	b.Insert("xyz")
//	cs := b.Build()
//
//	newDoc, err := cs.Apply(doc)
//	pos := cs.MapPos(10, change.AssocAfter)
//
// Edits given as from/to/text triples can be turned into a change set with
// FromEdits.
package change
