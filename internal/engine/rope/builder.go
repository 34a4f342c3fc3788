package rope

import "strings"

// Builder provides incremental construction of a rope.
// Writes are buffered and cut into chunks as the buffer fills.
type Builder struct {
	chunks []Chunk
	buffer strings.Builder
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) (int, error) {
	b.buffer.WriteString(s)
	if b.buffer.Len() >= MaxChunkSize*2 {
		b.flush(false)
	}
	return len(s), nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	return b.WriteString(string(p))
}

// flush moves buffered text into chunks. Unless final is set, a short tail
// (and any partial UTF-8 sequence) stays buffered for the next write.
func (b *Builder) flush(final bool) {
	s := b.buffer.String()
	if len(s) == 0 {
		return
	}
	keep := 0
	if !final {
		cut := len(s) - MaxChunkSize
		for cut > 0 && !isUTF8Start(s[cut]) {
			cut--
		}
		keep = len(s) - cut
	}
	b.chunks = append(b.chunks, splitIntoChunks(s[:len(s)-keep])...)
	b.buffer.Reset()
	b.buffer.WriteString(s[len(s)-keep:])
}

// Build returns the rope and resets the builder.
func (b *Builder) Build() Rope {
	b.flush(true)
	r := buildFromChunks(b.chunks)
	b.chunks = nil
	return r
}
