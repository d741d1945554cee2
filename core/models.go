package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Chunk IDs are content hashes, so identical text always yields the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is a bounded-size text segment paired with its embedding vector.
// Chunks are immutable once created; Text and Vector always belong together.
type Chunk struct {
	Id     ID
	Text   string
	Vector []float32
}

// NewChunk creates a chunk and derives its ID from the text.
func NewChunk(text string, vector []float32) *Chunk {
	return &Chunk{
		Id:     IDFromContent(text),
		Text:   text,
		Vector: vector,
	}
}

// Dimension returns the length of the chunk's embedding vector.
func (c *Chunk) Dimension() int {
	return len(c.Vector)
}
