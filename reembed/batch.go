// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/core"
)

// BatchProcessor embeds one batch of chunks and returns fresh chunks with
// the same text and the new vectors. Input chunks are never modified.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	normalize      bool
}

// NewBatchProcessor creates a batch processor from the retry and
// normalization settings in config.
func NewBatchProcessor(embedder ai.Embedder, config *Config) *BatchProcessor {
	if config == nil {
		config = DefaultConfig()
	}
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     config.MaxRetries,
		retryBaseDelay: config.RetryDelay,
		retryMaxDelay:  config.MaxRetryDelay,
		normalize:      config.Normalize,
	}
}

// Process embeds the texts of chunks as one request.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) ([]*core.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay, bp.retryMaxDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(chunks), len(embeddings))
	}

	out := make([]*core.Chunk, len(chunks))
	for i, text := range texts {
		vector := embeddings[i]
		if bp.normalize {
			vector = NormalizeVector(vector)
		} else {
			vector = slices.Clone(vector)
		}
		out[i] = core.NewChunk(text, vector)
	}
	return out, nil
}

// forEachBatch calls fn for consecutive batches of at most size chunks,
// checking ctx before each batch.
func forEachBatch(ctx context.Context, chunks []*core.Chunk, size int, fn func([]*core.Chunk) error) error {
	for batch := range slices.Chunk(chunks, size) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}
