package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/quorum/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// CompatEmbedder implements ai.Embedder for services that only speak the
// OpenAI embeddings API.
type CompatEmbedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// newCompatEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompatEmbedder(config *ai.Config) (*CompatEmbedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingBaseURL()),
		openai.WithToken(token(config)),
		openai.WithEmbeddingModel(config.EmbeddingModel),
		openai.WithHTTPClient(newTimeoutClient(config.EmbeddingTimeout)),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &CompatEmbedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "compat-embedder"),
	}, nil
}

// NewCompatEmbedder creates an OpenAI-protocol embedder.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewCompatEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newCompatEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *CompatEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *CompatEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrConnectionFailure, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ai.ErrMalformedResponse, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: item %d has no embedding", ai.ErrMalformedResponse, i)
		}
	}
	return vectors, nil
}
