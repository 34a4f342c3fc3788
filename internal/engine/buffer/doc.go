// Package buffer provides a thread-safe document that pairs text with the
// multi-range selection over it.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Change sets applied to the text with the selection mapped through them
//   - Pattern-driven selection refinement (keep, select, split)
//   - Read-only snapshots for concurrent access
//   - Line ending normalization on load
//   - Revision tracking for change management
//
// Basic usage:
//
//	doc, err := buffer.NewDocument("one two three")
//	if err != nil {
//	    return err
//	}
//
//	// Select every word
//	doc.SetSelection(selection.Single(0, doc.Len()))
//	doc.Select(regexp.MustCompile(`\w+`))
//
//	// Edits move the selection along with the text
//	doc.Edit(change.NewInsert(0, "> "))
//
//	// Get a snapshot for concurrent reading
//	snap := doc.Snapshot()
//	go func() {
//	    for frag := range snap.Selection().Fragments(snap.Rope()) {
//	        // Process fragment...
//	    }
//	}()
//
// Positions:
//
// All positions are character (rune) offsets. The rope converts to byte
// offsets where pattern engines need them.
//
// Thread Safety:
//
// All Document methods are thread-safe. Read operations acquire a read lock,
// while write operations acquire an exclusive write lock. Text and selection
// are immutable values that are replaced wholesale, so a Snapshot stays
// consistent while the document moves on.
package buffer
