package rope

// ChunkIterator iterates over the chunks of a rope in order.
type ChunkIterator struct {
	stack   []*Node
	pending []Chunk
	chunk   Chunk
	offset  int
	next    int
}

// Chunks returns an iterator over all chunks in the rope.
func (r Rope) Chunks() *ChunkIterator {
	it := &ChunkIterator{stack: make([]*Node, 0, 16)}
	if r.root != nil {
		it.stack = append(it.stack, r.root)
	}
	return it
}

// Next advances to the next chunk and reports whether one exists.
func (it *ChunkIterator) Next() bool {
	for len(it.pending) == 0 {
		if len(it.stack) == 0 {
			return false
		}
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		if n.IsLeaf() {
			it.pending = n.chunks
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			it.stack = append(it.stack, n.children[i])
		}
	}
	it.chunk = it.pending[0]
	it.pending = it.pending[1:]
	it.offset = it.next
	it.next += it.chunk.Len()
	return true
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

// Offset returns the byte offset of the current chunk.
func (it *ChunkIterator) Offset() int {
	return it.offset
}
