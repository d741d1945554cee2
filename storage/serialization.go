package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/poiesic/quorum/core"
)

// Chunk wire layout:
//
//	id      uint64 little endian
//	textLen uvarint
//	text    textLen bytes of UTF-8
//	dim     uvarint
//	vector  dim float32 values, little endian IEEE 754

// MarshalSequence encodes a sequence number so that byte order matches numeric order.
func MarshalSequence(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

// UnmarshalSequence decodes a value produced by MarshalSequence.
func UnmarshalSequence(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: sequence needs 8 bytes, got %d", ErrTruncatedData, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// MarshalChunk encodes a chunk in the binary layout above.
func MarshalChunk(chunk *core.Chunk) []byte {
	size := 8 + binary.MaxVarintLen64*2 + len(chunk.Text) + 4*len(chunk.Vector)
	buf := make([]byte, 8, size)
	binary.LittleEndian.PutUint64(buf, uint64(chunk.Id))
	buf = binary.AppendUvarint(buf, uint64(len(chunk.Text)))
	buf = append(buf, chunk.Text...)
	buf = binary.AppendUvarint(buf, uint64(len(chunk.Vector)))
	for _, v := range chunk.Vector {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// UnmarshalChunk decodes a chunk produced by MarshalChunk.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: chunk header", ErrTruncatedData)
	}
	id := core.ID(binary.LittleEndian.Uint64(data))
	pos := 8

	textLen, n := binary.Uvarint(data[pos:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: text length", ErrTruncatedData)
	}
	pos += n
	if uint64(len(data)-pos) < textLen {
		return nil, fmt.Errorf("%w: text", ErrTruncatedData)
	}
	text := data[pos : pos+int(textLen)]
	if !utf8.Valid(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrSerializationFailed)
	}
	pos += int(textLen)

	dim, n := binary.Uvarint(data[pos:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: vector length", ErrTruncatedData)
	}
	pos += n
	if uint64(len(data)-pos) != dim*4 {
		return nil, fmt.Errorf("%w: vector has %d bytes for %d dimensions", ErrTruncatedData, len(data)-pos, dim)
	}

	vector := make([]float32, dim)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
	}

	return &core.Chunk{Id: id, Text: string(text), Vector: vector}, nil
}

// CheckChunks rejects chunks that must never reach storage.
func CheckChunks(chunks []*core.Chunk) error {
	for i, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return fmt.Errorf("%w: chunk %d: %w", ErrInvalidChunk, i, err)
		}
	}
	return nil
}
