package storage

import (
	"math"
	"testing"

	"github.com/poiesic/quorum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalSequence(t *testing.T) {
	for _, seq := range []uint64{0, 1, 255, 256, math.MaxUint64} {
		decoded, err := UnmarshalSequence(MarshalSequence(seq))
		require.NoError(t, err)
		assert.Equal(t, seq, decoded)
	}

	assert.Less(t, string(MarshalSequence(255)), string(MarshalSequence(256)), "byte order must match numeric order")

	_, err := UnmarshalSequence([]byte{1, 2})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{"ascii text", core.NewChunk("EDA stands for Electronic Design Automation.", []float32{0.1, -0.2, 0.3})},
		{"multibyte text", core.NewChunk("电子设计自动化", []float32{1, 2})},
		{"special floats", core.NewChunk("x", []float32{float32(math.Inf(1)), 0, -0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			assert.Equal(t, tt.chunk, decoded)
		})
	}
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	valid := MarshalChunk(core.NewChunk("hello", []float32{1, 2, 3}))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"header only", valid[:8]},
		{"truncated text", valid[:11]},
		{"truncated vector", valid[:len(valid)-2]},
		{"trailing bytes", append(append([]byte{}, valid...), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalChunk(tt.data)
			assert.ErrorIs(t, err, ErrTruncatedData)
		})
	}
}

func TestCheckChunks(t *testing.T) {
	good := core.NewChunk("a", []float32{1})
	assert.NoError(t, CheckChunks([]*core.Chunk{good}))

	err := CheckChunks([]*core.Chunk{good, core.NewChunk("b", nil)})
	assert.ErrorIs(t, err, ErrInvalidChunk)
	assert.ErrorIs(t, err, core.ErrInvalidChunk)
}
