package core

import "errors"

// Domain validation errors
var (
	// ErrValidation is the parent of every input validation failure.
	// Validation failures are raised before any network call and are never retried.
	ErrValidation = errors.New("validation error")

	// ErrEmptyQuestion indicates the question is empty or whitespace only.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrInvalidChunkSize indicates a chunk size below 1.
	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")

	// ErrEmptyText indicates an ingest item is empty or whitespace only.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidStageTable indicates a malformed stage descriptor table.
	ErrInvalidStageTable = errors.New("invalid stage table")
)
