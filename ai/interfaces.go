package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts,
	// and has exactly one entry per input. Failures wrap ErrEmbedding.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a single text completion for a prompt.
// Every call is independent: no conversation memory is carried between calls.
type Generator interface {
	// Generate sends role as the system message and prompt as the user message
	// and returns the completion text. A blank completion is ErrEmptyCompletion.
	Generate(ctx context.Context, role, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
