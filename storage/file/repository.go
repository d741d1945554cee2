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

package file

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/storage"
)

const snapshotVersion = 1

// snapshot is the on-disk document: an ordered list of (vector, text) pairs.
type snapshot struct {
	Version int
	Entries []entry
}

type entry struct {
	Vector []float32
	Text   string
}

// Repository keeps the chunk sequence in memory and rewrites the snapshot
// file on every mutation. The file is replaced by rename, so readers see
// either the previous or the next state and never a partial write.
type Repository struct {
	path   string
	mu     sync.Mutex
	chunks []*core.Chunk
	closed bool
	logger *slog.Logger
}

var _ storage.ChunkRepository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository) error

// WithLogger sets the logger. Nil falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "file-store")
		return nil
	}
}

// Open loads the snapshot at path. A missing file is an empty store; the
// parent directory is created if needed.
func Open(path string, opts ...Option) (*Repository, error) {
	r := &Repository{
		path:   path,
		logger: slog.Default().With("component", "file-store"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	chunks, err := readSnapshot(path)
	if err != nil {
		return nil, err
	}
	r.chunks = chunks
	r.logger.Debug("opened snapshot", "path", path, "chunks", len(chunks))
	return r, nil
}

// Path returns the snapshot file location.
func (r *Repository) Path() string {
	return r.path
}

// AppendChunks persists the current sequence plus chunks.
func (r *Repository) AppendChunks(ctx context.Context, chunks ...*core.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return storage.ErrStorageClosed
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := storage.CheckChunks(chunks); err != nil {
		return err
	}

	next := make([]*core.Chunk, 0, len(r.chunks)+len(chunks))
	next = append(next, r.chunks...)
	next = append(next, chunks...)
	return r.commit(next)
}

// LoadChunks returns a copy of the stored sequence.
func (r *Repository) LoadChunks(ctx context.Context) ([]*core.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, storage.ErrStorageClosed
	}
	return append([]*core.Chunk(nil), r.chunks...), nil
}

// ReplaceChunks persists chunks as the whole sequence.
func (r *Repository) ReplaceChunks(ctx context.Context, chunks []*core.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return storage.ErrStorageClosed
	}
	if err := storage.CheckChunks(chunks); err != nil {
		return err
	}
	return r.commit(append([]*core.Chunk(nil), chunks...))
}

// Reset rewrites the snapshot as an empty list.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return storage.ErrStorageClosed
	}
	return r.commit(nil)
}

// Count returns the number of stored chunks.
func (r *Repository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, storage.ErrStorageClosed
	}
	return len(r.chunks), nil
}

// Close marks the repository closed. The snapshot is already durable.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// commit writes next to disk and adopts it only once the rename succeeded.
func (r *Repository) commit(next []*core.Chunk) error {
	if err := writeSnapshot(r.path, next); err != nil {
		r.logger.Error("failed to write snapshot", "path", r.path, "err", err)
		return err
	}
	r.chunks = next
	r.logger.Debug("wrote snapshot", "path", r.path, "chunks", len(next))
	return nil
}

func readSnapshot(path string) ([]*core.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrSerializationFailed, path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %s: unsupported snapshot version %d", storage.ErrSerializationFailed, path, snap.Version)
	}

	chunks := make([]*core.Chunk, len(snap.Entries))
	for i, e := range snap.Entries {
		chunks[i] = core.NewChunk(e.Text, e.Vector)
	}
	return chunks, nil
}

func writeSnapshot(path string, chunks []*core.Chunk) error {
	snap := snapshot{
		Version: snapshotVersion,
		Entries: make([]entry, len(chunks)),
	}
	for i, c := range chunks {
		snap.Entries[i] = entry{Vector: c.Vector, Text: c.Text}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmpName, path)
}
