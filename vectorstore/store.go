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

package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/chunker"
	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/storage"
)

// Store is the ordered in-memory view of a ChunkRepository plus the
// ingestion path that grows it.
//
// Items of one Ingest call are chunked and embedded on a worker pool but
// committed strictly in input order, one repository write per item. Mutating
// calls are serialized; readers see a consistent snapshot between commits.
type Store struct {
	repository storage.ChunkRepository
	embedder   ai.Embedder
	splitter   *chunker.Splitter
	pool       *ants.Pool
	logger     *slog.Logger

	writeMu sync.Mutex
	mu      sync.RWMutex
	chunks  []*core.Chunk
}

// Option configures a Store.
type Option func(*Store) error

// WithPoolSize sets how many items are embedded concurrently. Values below 1 mean 1.
func WithPoolSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithSplitter replaces the default chunk splitter.
func WithSplitter(splitter *chunker.Splitter) Option {
	return func(s *Store) error {
		if splitter != nil {
			s.splitter = splitter
		}
		return nil
	}
}

// WithLogger sets the logger. Nil falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "vectorstore")
		return nil
	}
}

// Open creates a Store and loads the chunks already in repository.
func Open(ctx context.Context, repository storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	splitter, err := chunker.New()
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	s := &Store{
		repository: repository,
		embedder:   embedder,
		splitter:   splitter,
		pool:       pool,
		logger:     slog.Default().With("component", "vectorstore"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Close()
			return nil, optErr
		}
	}

	chunks, err := repository.LoadChunks(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	s.chunks = chunks
	s.logger.Info("vector store loaded", "chunks", len(chunks))

	return s, nil
}

// Close releases the worker pool. The repository is owned by the caller.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

type prepared struct {
	chunks []*core.Chunk
	err    error
}

// Ingest chunks, embeds and appends each text. Blank items and items whose
// embedding fails are reported in the result and skipped; the rest of the
// batch continues. An invalid chunkSize is rejected before any work starts.
// A returned error means the repository refused a write; the result then
// describes everything committed before that point.
func (s *Store) Ingest(ctx context.Context, texts []string, chunkSize int) (*IngestResult, error) {
	if err := core.ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	results := make([]chan prepared, len(texts))
	for i := range results {
		results[i] = make(chan prepared, 1)
	}

	go func() {
		for i, text := range texts {
			if err := core.ValidateText(text); err != nil {
				results[i] <- prepared{err: err}
				continue
			}
			ch := results[i]
			if err := s.pool.Submit(func() {
				ch <- s.prepare(ctx, text, chunkSize)
			}); err != nil {
				ch <- prepared{err: err}
			}
		}
	}()

	result := &IngestResult{}
	for i := range texts {
		p := <-results[i]
		if p.err != nil {
			s.logger.Warn("skipping ingest item", "item", i, "err", p.err)
			result.Errors = append(result.Errors, ItemError{Index: i, Err: p.err})
			continue
		}

		if err := s.repository.AppendChunks(ctx, p.chunks...); err != nil {
			s.logger.Error("failed to persist chunks", "item", i, "err", err)
			return result, fmt.Errorf("persisting item %d: %w", i, err)
		}

		s.mu.Lock()
		s.chunks = append(s.chunks, p.chunks...)
		s.mu.Unlock()
		result.Added += len(p.chunks)
	}

	s.logger.Info("ingest complete", "items", len(texts), "added", result.Added, "errors", len(result.Errors))
	return result, nil
}

func (s *Store) prepare(ctx context.Context, text string, chunkSize int) prepared {
	pieces, err := s.splitter.Split(text, chunkSize)
	if err != nil {
		return prepared{err: err}
	}

	vectors, err := s.embedder.EmbedTexts(ctx, pieces)
	if err != nil {
		return prepared{err: err}
	}
	if len(vectors) != len(pieces) {
		return prepared{err: fmt.Errorf("%w: %d vectors for %d chunks", ErrVectorCountMismatch, len(vectors), len(pieces))}
	}

	chunks := make([]*core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = core.NewChunk(piece, vectors[i])
	}
	return prepared{chunks: chunks}
}

// Reset removes every chunk. It is idempotent.
func (s *Store) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repository.Reset(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.chunks = nil
	s.mu.Unlock()

	s.logger.Info("vector store reset")
	return nil
}

// Replace swaps the whole chunk sequence.
func (s *Store) Replace(ctx context.Context, chunks []*core.Chunk) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repository.ReplaceChunks(ctx, chunks); err != nil {
		return err
	}

	s.mu.Lock()
	s.chunks = append([]*core.Chunk(nil), chunks...)
	s.mu.Unlock()
	return nil
}

// Chunks returns the stored chunks in insertion order.
// The slice is a copy; the chunks themselves are shared and must not be modified.
func (s *Store) Chunks() []*core.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*core.Chunk(nil), s.chunks...)
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Embedder returns the embedder used for ingestion.
func (s *Store) Embedder() ai.Embedder {
	return s.embedder
}
