package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "multibyte content",
			content: "向量检索增强生成",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestNewChunk(t *testing.T) {
	chunk := NewChunk("hello", []float32{1, 2, 3})

	if chunk.Id != IDFromContent("hello") {
		t.Errorf("NewChunk() id = %d, want content hash", chunk.Id)
	}
	if chunk.Dimension() != 3 {
		t.Errorf("Dimension() = %d, want 3", chunk.Dimension())
	}
}
