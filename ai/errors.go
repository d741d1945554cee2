package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("ai config")

	// ErrEmbedding is the parent of every embedding failure.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnectionFailure indicates the embedding service was unreachable or
	// answered with a non-2xx status.
	ErrConnectionFailure = fmt.Errorf("%w: connection failure", ErrEmbedding)

	// ErrMalformedResponse indicates a 2xx embedding response without the
	// expected vectors, or with a different number of vectors than inputs.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrEmbedding)

	// ErrGeneration is the parent of every generation failure.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyCompletion indicates the generation service returned no text.
	ErrEmptyCompletion = fmt.Errorf("%w: empty completion", ErrGeneration)
)
