package core

import (
	"fmt"
	"strings"
)

// ValidateQuestion rejects empty or whitespace-only questions.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyQuestion)
	}
	return nil
}

// ValidateChunkSize rejects chunk sizes below 1.
func ValidateChunkSize(size int) error {
	if size < 1 {
		return fmt.Errorf("%w: %w: got %d", ErrValidation, ErrInvalidChunkSize, size)
	}
	return nil
}

// ValidateText rejects empty or whitespace-only ingest items.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyText)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Vector must not be empty
//   - Id must match the content hash of Text
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}
	if len(chunk.Vector) == 0 {
		return fmt.Errorf("%w: vector is empty", ErrInvalidChunk)
	}
	if chunk.Id != IDFromContent(chunk.Text) {
		return fmt.Errorf("%w: id does not match content", ErrInvalidChunk)
	}
	return nil
}
