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

package storage

import (
	"context"

	"github.com/poiesic/quorum/core"
)

// ChunkRepository persists the ordered chunk sequence of a vector store.
// Every mutating call is durable when it returns nil.
type ChunkRepository interface {
	// AppendChunks adds chunks after all previously stored chunks.
	// The write is atomic: either every chunk is persisted or none is.
	AppendChunks(ctx context.Context, chunks ...*core.Chunk) error

	// LoadChunks returns every stored chunk in insertion order.
	LoadChunks(ctx context.Context) ([]*core.Chunk, error)

	// ReplaceChunks atomically swaps the stored sequence for chunks.
	ReplaceChunks(ctx context.Context, chunks []*core.Chunk) error

	// Reset removes every stored chunk. Resetting an empty repository is a no-op.
	Reset(ctx context.Context) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
