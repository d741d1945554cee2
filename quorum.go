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

package quorum

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/ai/openai"
	"github.com/poiesic/quorum/config"
	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/loader"
	"github.com/poiesic/quorum/pipeline"
	"github.com/poiesic/quorum/refusal"
	"github.com/poiesic/quorum/reembed"
	"github.com/poiesic/quorum/search"
	"github.com/poiesic/quorum/storage"
	"github.com/poiesic/quorum/storage/badger"
	"github.com/poiesic/quorum/storage/file"
	"github.com/poiesic/quorum/vectorstore"
)

var ErrConfigRequired = errors.New("config required")

// System wires the provider, chunk store, retriever and pipeline together.
type System struct {
	cfg          *config.Config
	provider     ai.AIProvider
	repo         storage.ChunkRepository
	store        *vectorstore.Store
	retriever    *search.Retriever
	orchestrator *pipeline.Orchestrator
	loader       *loader.Loader
	logger       *slog.Logger
}

// Option configures a System.
type Option func(*systemOptions)

type systemOptions struct {
	provider ai.AIProvider
	observer pipeline.Observer
	logger   *slog.Logger
}

// WithProvider supplies the AI provider instead of building one from the
// config. The System takes ownership and closes it.
func WithProvider(p ai.AIProvider) Option {
	return func(o *systemOptions) {
		o.provider = p
	}
}

// WithObserver receives stage progress for every Ask.
func WithObserver(obs pipeline.Observer) Option {
	return func(o *systemOptions) {
		o.observer = obs
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *systemOptions) {
		o.logger = logger
	}
}

// NewSystem opens the configured store and builds the question pipeline.
func NewSystem(cfg *config.Config, opts ...Option) (*System, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &systemOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(cfg.ProviderConfig())
		if err != nil {
			return nil, err
		}
	}

	repo, err := openRepository(cfg.Store, logger)
	if err != nil {
		provider.Close()
		return nil, err
	}

	sys := &System{
		cfg:      cfg,
		provider: provider,
		repo:     repo,
		loader:   loader.New(loader.WithLogger(logger)),
		logger:   logger.With("component", "system"),
	}
	if err := sys.build(options); err != nil {
		sys.Close()
		return nil, err
	}

	sys.logger.Info("system ready",
		"store", cfg.Store.Type,
		"path", cfg.Store.Path,
		"chunks", sys.store.Len(),
		"retrieval", !cfg.Retrieval.Disabled)
	return sys, nil
}

func openRepository(cfg config.StoreConfig, logger *slog.Logger) (storage.ChunkRepository, error) {
	switch cfg.Type {
	case config.StoreBadger:
		return badger.Open(cfg.Path)
	case config.StoreFile:
		return file.Open(cfg.Path, file.WithLogger(logger))
	default:
		return nil, fmt.Errorf("%w: unknown store type %q", config.ErrInvalidConfig, cfg.Type)
	}
}

func (s *System) build(options *systemOptions) error {
	var err error
	s.store, err = vectorstore.Open(context.Background(), s.repo, s.provider.Embedder(),
		vectorstore.WithPoolSize(s.cfg.Store.PoolSize),
		vectorstore.WithLogger(options.logger))
	if err != nil {
		return err
	}

	s.retriever, err = search.NewRetriever(s.store, s.provider.Embedder(),
		search.WithVectorWeight(s.cfg.Retrieval.VectorWeight),
		search.WithDefaultTopK(s.cfg.Retrieval.TopK),
		search.WithLogger(options.logger))
	if err != nil {
		return err
	}

	enforcer, err := newEnforcer(s.cfg.Refusal, options.logger)
	if err != nil {
		return err
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithStages(pipeline.DefaultStages(s.cfg.Pipeline.Domain)),
		pipeline.WithTopK(s.cfg.Retrieval.TopK),
		pipeline.WithEnforcer(enforcer),
		pipeline.WithObserver(options.observer),
		pipeline.WithLogger(options.logger),
	}
	if !s.cfg.Retrieval.Disabled {
		pipelineOpts = append(pipelineOpts, pipeline.WithRetriever(s.retriever))
	}
	s.orchestrator, err = pipeline.New(s.provider.Generator(), pipelineOpts...)
	return err
}

func newEnforcer(cfg config.RefusalConfig, logger *slog.Logger) (*refusal.Enforcer, error) {
	if cfg.Disabled {
		return nil, nil
	}
	opts := []refusal.Option{refusal.WithLogger(logger)}
	if len(cfg.Denylist) > 0 {
		opts = append(opts, refusal.WithDenylist(cfg.Denylist...))
	}
	if len(cfg.ExtraPhrases) > 0 {
		opts = append(opts, refusal.WithExtraPhrases(cfg.ExtraPhrases...))
	}
	return refusal.New(opts...)
}

// Ingest chunks, embeds and stores texts using the configured chunk size.
func (s *System) Ingest(ctx context.Context, texts []string) (*vectorstore.IngestResult, error) {
	return s.store.Ingest(ctx, texts, s.cfg.Store.ChunkSize)
}

// IngestFiles loads each file and ingests its text. Files that cannot be
// read are reported as item errors indexed by their position in paths.
func (s *System) IngestFiles(ctx context.Context, paths []string) (*vectorstore.IngestResult, error) {
	var (
		texts    []string
		origin   []int
		loadErrs []vectorstore.ItemError
	)
	for i, path := range paths {
		text, err := s.loader.Load(path)
		if err != nil {
			s.logger.Warn("skipping file", "path", path, "err", err)
			loadErrs = append(loadErrs, vectorstore.ItemError{Index: i, Err: err})
			continue
		}
		texts = append(texts, text)
		origin = append(origin, i)
	}

	result := &vectorstore.IngestResult{}
	if len(texts) > 0 {
		ingested, err := s.Ingest(ctx, texts)
		if ingested != nil {
			result.Added = ingested.Added
			for _, e := range ingested.Errors {
				result.Errors = append(result.Errors, vectorstore.ItemError{Index: origin[e.Index], Err: e.Err})
			}
		}
		if err != nil {
			result.Errors = mergeItemErrors(result.Errors, loadErrs)
			return result, err
		}
	}
	result.Errors = mergeItemErrors(result.Errors, loadErrs)
	return result, nil
}

func mergeItemErrors(a, b []vectorstore.ItemError) []vectorstore.ItemError {
	merged := append(slices.Clone(a), b...)
	slices.SortStableFunc(merged, func(x, y vectorstore.ItemError) int {
		return cmp.Compare(x.Index, y.Index)
	})
	return merged
}

// Ask runs question through the pipeline. The error is non-nil only for an
// invalid question; stage failures are reported in the Result.
func (s *System) Ask(ctx context.Context, question string) (*pipeline.Result, error) {
	return s.orchestrator.Run(ctx, question)
}

// Retrieve returns the topK best chunks for query with their scores.
// topK <= 0 uses the configured default.
func (s *System) Retrieve(ctx context.Context, query string, topK int) []search.ScoredChunk {
	return s.retriever.RetrieveScored(ctx, query, topK)
}

// Reset removes every stored chunk.
func (s *System) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}

// Reindex re-embeds every stored chunk with the current embedder. Progress
// is written to progress when it is non-nil; a nil rc uses the defaults.
func (s *System) Reindex(ctx context.Context, progress io.Writer, rc *reembed.Config) (*reembed.Report, error) {
	r, err := reembed.NewReembedder(s.store, s.provider.Embedder(),
		reembed.WithConfig(rc),
		reembed.WithProgress(progress),
		reembed.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}

// Stages returns the pipeline's stage table.
func (s *System) Stages() []core.StageDescriptor {
	return s.orchestrator.Stages()
}

// Len returns the number of stored chunks.
func (s *System) Len() int {
	return s.store.Len()
}

// Close releases the provider, store and repository.
func (s *System) Close() error {
	var errs []error
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		s.store.Close()
	}
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			s.logger.Error("error closing chunk repository", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
