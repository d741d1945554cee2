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

package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/storage"
)

// ChunkRepository stores chunks under sequence-ordered keys.
type ChunkRepository struct {
	backend     *Backend
	seq         *badger.Sequence
	ownsBackend bool
	closeOnce   sync.Once
	closeErr    error
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a ChunkRepository on an open backend.
// Closing the repository does not close the backend.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	seq, err := backend.GetSequence(chunkSeqKey)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Open opens a database directory and returns a repository that owns it.
func Open(path string) (*ChunkRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return own(backend)
}

func own(backend *Backend) (*ChunkRepository, error) {
	repo, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsBackend = true
	return repo, nil
}

// Close releases the sequence and, for owned backends, the database.
// Repeated calls return the first result.
func (r *ChunkRepository) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.seq.Release()
		if r.ownsBackend {
			r.closeErr = errors.Join(r.closeErr, r.backend.Close())
		}
	})
	return r.closeErr
}

// AppendChunks writes every chunk in one transaction.
func (r *ChunkRepository) AppendChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := storage.CheckChunks(chunks); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := r.writeChunks(tx, chunks); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadChunks returns every chunk in key order, which is insertion order.
func (r *ChunkRepository) LoadChunks(ctx context.Context) ([]*core.Chunk, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("reading %x: %w", iter.Item().Key(), err)
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return chunks, nil
}

// ReplaceChunks deletes the stored chunks and writes the new ones in a
// single transaction. Very large stores can exceed badger's transaction
// size, in which case badger.ErrTxnTooBig is returned and nothing changes.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, chunks []*core.Chunk) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := storage.CheckChunks(chunks); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var stale [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := r.writeChunks(tx, chunks); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Reset drops every chunk key.
func (r *ChunkRepository) Reset(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.DropPrefix(chunkPrefix)
}

// Count returns the number of stored chunks without decoding values.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

func (r *ChunkRepository) writeChunks(tx *badger.Txn, chunks []*core.Chunk) error {
	for _, chunk := range chunks {
		next, err := r.seq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if next == 0 {
			if next, err = r.seq.Next(); err != nil {
				return err
			}
		}
		if err := tx.Set(makeChunkKey(next), storage.MarshalChunk(chunk)); err != nil {
			return err
		}
	}
	return nil
}
