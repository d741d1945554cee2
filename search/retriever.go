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

package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/core"
)

const (
	// DefaultTopK is the number of chunks returned when the caller passes 0.
	DefaultTopK = 3
	// DefaultVectorWeight is the share of the vector score in the hybrid score.
	DefaultVectorWeight = 0.7
)

// ChunkSource supplies retrieval candidates in insertion order.
type ChunkSource interface {
	Chunks() []*core.Chunk
}

// ScoredChunk is a retrieval result with its component scores.
type ScoredChunk struct {
	Chunk        *core.Chunk
	Score        float64
	VectorScore  float64
	LexicalScore float64
	Position     int // index in insertion order
}

// Retriever ranks stored chunks against a query by a weighted sum of cosine
// similarity and keyword overlap.
type Retriever struct {
	source       ChunkSource
	embedder     ai.Embedder
	vectorWeight float64
	defaultTopK  int
	logger       *slog.Logger
}

type Option func(*Retriever) error

// WithVectorWeight sets the vector share of the hybrid score; the lexical
// share is 1-w.
func WithVectorWeight(w float64) Option {
	return func(r *Retriever) error {
		if w < 0 || w > 1 {
			return ErrInvalidWeight
		}
		r.vectorWeight = w
		return nil
	}
}

// WithDefaultTopK sets the result count used when Retrieve gets topK <= 0.
func WithDefaultTopK(k int) Option {
	return func(r *Retriever) error {
		if k > 0 {
			r.defaultTopK = k
		}
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retriever")
		return nil
	}
}

func NewRetriever(source ChunkSource, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if source == nil {
		return nil, ErrChunkSourceRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		source:       source,
		embedder:     embedder,
		vectorWeight: DefaultVectorWeight,
		defaultTopK:  DefaultTopK,
		logger:       slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns the texts of the topK best chunks, most relevant first.
// It never fails: an empty store or a failed query embedding yields no results.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []string {
	scored := r.RetrieveScored(ctx, query, topK)
	texts := make([]string, len(scored))
	for i, s := range scored {
		texts[i] = s.Chunk.Text
	}
	return texts
}

// RetrieveScored is Retrieve with scores attached.
func (r *Retriever) RetrieveScored(ctx context.Context, query string, topK int) []ScoredChunk {
	return r.RetrieveWithMonitor(ctx, query, topK, nil)
}

// RetrieveWithMonitor is RetrieveScored reporting progress to monitor.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, topK int, monitor RetrievalMonitor) []ScoredChunk {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK <= 0 {
		topK = r.defaultTopK
	}

	chunks := r.source.Chunks()
	monitor.Start(query, len(chunks))

	if len(chunks) == 0 || strings.TrimSpace(query) == "" {
		monitor.Finish(nil)
		return []ScoredChunk{}
	}

	queryVector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, continuing without context", "err", err)
		monitor.EmbeddingFailed(err)
		monitor.Finish(nil)
		return []ScoredChunk{}
	}
	monitor.AfterQueryEmbedding(len(queryVector))

	queryTokens := tokenSet(query)
	scored := make([]ScoredChunk, len(chunks))
	for i, chunk := range chunks {
		vs := cosineSimilarity(queryVector, chunk.Vector)
		ls := lexicalOverlap(queryTokens, chunk.Text)
		scored[i] = ScoredChunk{
			Chunk:        chunk,
			Score:        r.vectorWeight*vs + (1-r.vectorWeight)*ls,
			VectorScore:  vs,
			LexicalScore: ls,
			Position:     i,
		}
	}

	// Stable sort keeps insertion order among equal scores.
	slices.SortStableFunc(scored, func(a, b ScoredChunk) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	r.logger.Debug("retrieved chunks", "candidates", len(chunks), "returned", len(scored))
	monitor.Finish(scored)
	return scored
}
