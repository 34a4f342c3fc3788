package rope

import (
	"strings"
	"unicode/utf8"
)

// Tree structure constants.
const (
	// MaxChildren is the maximum children per internal node.
	MaxChildren = 8

	// MaxChunksPerLeaf is the maximum chunks in a leaf node.
	MaxChunksPerLeaf = 4
)

// Node is a node in the rope B+ tree.
// Leaf nodes (height == 0) hold chunks; internal nodes hold children.
type Node struct {
	height   uint8
	summary  TextSummary
	children []*Node
	chunks   []Chunk
}

func newLeafNode() *Node {
	return &Node{summary: zeroSummary()}
}

func newLeafNodeWithChunks(chunks []Chunk) *Node {
	n := &Node{chunks: chunks}
	n.recomputeSummary()
	return n
}

func newInternalNode(children []*Node) *Node {
	if len(children) == 0 {
		return newLeafNode()
	}
	n := &Node{
		height:   children[0].height + 1,
		children: children,
	}
	n.recomputeSummary()
	return n
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Len returns the byte length of text in this subtree.
func (n *Node) Len() int {
	return n.summary.Bytes
}

func (n *Node) recomputeSummary() {
	n.summary = zeroSummary()
	if n.IsLeaf() {
		for _, c := range n.chunks {
			n.summary = n.summary.Add(c.summary)
		}
		return
	}
	for _, child := range n.children {
		n.summary = n.summary.Add(child.summary)
	}
}

// appendTo appends all text in this subtree to the builder.
func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.data)
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends the bytes in [start, end) of this subtree.
func (n *Node) appendRange(sb *strings.Builder, start, end int) {
	if start >= end {
		return
	}

	offset := 0
	if n.IsLeaf() {
		for _, c := range n.chunks {
			chunkEnd := offset + c.Len()
			if chunkEnd > start && offset < end {
				lo := max(start-offset, 0)
				hi := min(end-offset, c.Len())
				sb.WriteString(c.data[lo:hi])
			}
			if chunkEnd >= end {
				return
			}
			offset = chunkEnd
		}
		return
	}

	for _, child := range n.children {
		childEnd := offset + child.Len()
		if childEnd > start && offset < end {
			child.appendRange(sb, max(start-offset, 0), min(end-offset, child.Len()))
		}
		if childEnd >= end {
			return
		}
		offset = childEnd
	}
}

// charToByte converts a char offset within this subtree to a byte offset.
func (n *Node) charToByte(pos int) int {
	if pos >= n.summary.Chars {
		return n.summary.Bytes
	}
	if n.summary.IsASCII() {
		return pos
	}

	bytes := 0
	if n.IsLeaf() {
		for _, c := range n.chunks {
			if pos < c.summary.Chars {
				return bytes + c.charToByte(pos)
			}
			pos -= c.summary.Chars
			bytes += c.Len()
		}
		return bytes
	}

	for _, child := range n.children {
		if pos < child.summary.Chars {
			return bytes + child.charToByte(pos)
		}
		pos -= child.summary.Chars
		bytes += child.Len()
	}
	return bytes
}

// byteToChar converts a byte offset within this subtree to a char offset.
func (n *Node) byteToChar(offset int) int {
	if offset >= n.summary.Bytes {
		return n.summary.Chars
	}
	if n.summary.IsASCII() {
		return offset
	}

	chars := 0
	if n.IsLeaf() {
		for _, c := range n.chunks {
			if offset < c.Len() {
				return chars + c.byteToChar(offset)
			}
			offset -= c.Len()
			chars += c.summary.Chars
		}
		return chars
	}

	for _, child := range n.children {
		if offset < child.Len() {
			return chars + child.byteToChar(offset)
		}
		offset -= child.Len()
		chars += child.summary.Chars
	}
	return chars
}

// charToLine counts the newlines that precede char offset pos.
func (n *Node) charToLine(pos int) int {
	if pos >= n.summary.Chars {
		return n.summary.Lines
	}
	if n.summary.Flags&FlagHasNewlines == 0 {
		return 0
	}

	lines := 0
	if n.IsLeaf() {
		for _, c := range n.chunks {
			if pos < c.summary.Chars {
				return lines + strings.Count(c.data[:c.charToByte(pos)], "\n")
			}
			pos -= c.summary.Chars
			lines += c.summary.Lines
		}
		return lines
	}

	for _, child := range n.children {
		if pos < child.summary.Chars {
			return lines + child.charToLine(pos)
		}
		pos -= child.summary.Chars
		lines += child.summary.Lines
	}
	return lines
}

// lineStart returns the char offset just past the line-th newline
// (1-indexed) in this subtree. The caller guarantees 1 <= line <= Lines.
func (n *Node) lineStart(line int) int {
	chars := 0
	if n.IsLeaf() {
		for _, c := range n.chunks {
			if line > c.summary.Lines {
				line -= c.summary.Lines
				chars += c.summary.Chars
				continue
			}
			for i, r := range c.data {
				if r != '\n' {
					continue
				}
				line--
				if line == 0 {
					return chars + utf8.RuneCountInString(c.data[:i]) + 1
				}
			}
		}
		return chars
	}

	for _, child := range n.children {
		if line > child.summary.Lines {
			line -= child.summary.Lines
			chars += child.summary.Chars
			continue
		}
		return chars + child.lineStart(line)
	}
	return chars
}

// split splits the node at a byte offset on a rune boundary.
// The left node holds [0, offset), the right [offset, Len).
func (n *Node) split(offset int) (*Node, *Node) {
	if offset <= 0 {
		return newLeafNode(), n
	}
	if offset >= n.Len() {
		return n, newLeafNode()
	}

	if n.IsLeaf() {
		var left, right []Chunk
		pos := 0
		for _, c := range n.chunks {
			switch {
			case pos+c.Len() <= offset:
				left = append(left, c)
			case pos >= offset:
				right = append(right, c)
			default:
				l, r := c.Split(offset - pos)
				left = append(left, l)
				right = append(right, r)
			}
			pos += c.Len()
		}
		return newLeafNodeWithChunks(left), newLeafNodeWithChunks(right)
	}

	var left, right []*Node
	pos := 0
	for _, child := range n.children {
		switch {
		case pos+child.Len() <= offset:
			left = append(left, child)
		case pos >= offset:
			right = append(right, child)
		default:
			l, r := child.split(offset - pos)
			if l.Len() > 0 {
				left = append(left, l)
			}
			if r.Len() > 0 {
				right = append(right, r)
			}
		}
		pos += child.Len()
	}
	return buildNodeFromChildren(left), buildNodeFromChildren(right)
}

// buildNodeFromChildren creates a balanced tree from a list of nodes.
// Children may have mixed heights after a split; they are levelled first.
func buildNodeFromChildren(children []*Node) *Node {
	switch len(children) {
	case 0:
		return newLeafNode()
	case 1:
		return children[0]
	}

	var height uint8
	for _, c := range children {
		height = max(height, c.height)
	}
	for i, c := range children {
		for c.height < height {
			c = newInternalNode([]*Node{c})
		}
		children[i] = c
	}

	if len(children) <= MaxChildren {
		return newInternalNode(children)
	}

	var parents []*Node
	for i := 0; i < len(children); i += MaxChildren {
		end := min(i+MaxChildren, len(children))
		group := make([]*Node, end-i)
		copy(group, children[i:end])
		parents = append(parents, newInternalNode(group))
	}
	return buildNodeFromChildren(parents)
}

// concat concatenates two nodes.
func concat(left, right *Node) *Node {
	if left == nil || left.Len() == 0 {
		if right == nil {
			return newLeafNode()
		}
		return right
	}
	if right == nil || right.Len() == 0 {
		return left
	}

	for left.height < right.height {
		left = newInternalNode([]*Node{left})
	}
	for right.height < left.height {
		right = newInternalNode([]*Node{right})
	}
	return mergeNodes(left, right)
}

// mergeNodes merges two nodes of the same height.
func mergeNodes(left, right *Node) *Node {
	if left.IsLeaf() {
		total := len(left.chunks) + len(right.chunks)
		if total <= MaxChunksPerLeaf {
			chunks := make([]Chunk, 0, total)
			chunks = append(chunks, left.chunks...)
			chunks = append(chunks, right.chunks...)
			return newLeafNodeWithChunks(chunks)
		}
		return newInternalNode([]*Node{left, right})
	}

	all := make([]*Node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	return buildNodeFromChildren(all)
}
