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
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/core"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks embedded per request
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay; zero means no cap
	MaxRetryDelay time.Duration

	// Normalize scales every new vector to unit length; off by default so
	// reindexed vectors match freshly ingested ones
	Normalize bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		MaxRetryDelay:  30 * time.Second,
	}
}

// ChunkStore is the part of the vector store the reembedder needs.
type ChunkStore interface {
	Chunks() []*core.Chunk
	Replace(ctx context.Context, chunks []*core.Chunk) error
}

// Report summarizes a completed run.
type Report struct {
	Chunks    int
	Dimension int
	Elapsed   time.Duration
}

// Reembedder re-embeds every chunk of a store.
type Reembedder struct {
	store     ChunkStore
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

type Option func(*Reembedder) error

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(r *Reembedder) error {
		if config != nil {
			c := *config
			r.config = &c
		}
		return nil
	}
}

// WithProgress sets where the progress line is written (typically os.Stderr).
func WithProgress(w io.Writer) Option {
	return func(r *Reembedder) error {
		r.progress = w
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "reembed")
		return nil
	}
}

// NewReembedder creates a reembedder for store using embedder.
func NewReembedder(store ChunkStore, embedder ai.Embedder, opts ...Option) (*Reembedder, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Reembedder{
		store:    store,
		config:   DefaultConfig(),
		progress: io.Discard,
		logger:   slog.Default().With("component", "reembed"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.config.BatchSize <= 0 {
		r.config.BatchSize = DefaultConfig().BatchSize
	}
	r.processor = NewBatchProcessor(embedder, r.config)
	return r, nil
}

// Run re-embeds every chunk and replaces the stored sequence in one step.
// On error the store is left unchanged.
func (r *Reembedder) Run(ctx context.Context) (*Report, error) {
	chunks := r.store.Chunks()
	if len(chunks) == 0 {
		r.logger.Info("no chunks to reembed")
		return &Report{}, nil
	}

	r.logger.Info("starting reembedding", "chunks", len(chunks), "batch_size", r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(chunks), r.config.ReportInterval)
	tracker.Start()

	updated := make([]*core.Chunk, 0, len(chunks))
	err := forEachBatch(ctx, chunks, r.config.BatchSize, func(batch []*core.Chunk) error {
		out, err := r.processor.Process(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to process batch at chunk %d: %w", len(updated), err)
		}
		updated = append(updated, out...)
		tracker.Add(len(out))
		return nil
	})
	tracker.Finish()
	if err != nil {
		r.logger.Error("reembedding aborted, store unchanged", "processed", len(updated), "err", err)
		return nil, err
	}

	if err := r.store.Replace(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to replace chunks: %w", err)
	}

	report := &Report{
		Chunks:    len(updated),
		Dimension: updated[0].Dimension(),
		Elapsed:   tracker.Elapsed(),
	}
	r.logger.Info("reembedding complete",
		"chunks", report.Chunks,
		"dimension", report.Dimension,
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}
