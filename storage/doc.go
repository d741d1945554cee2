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

// Package storage defines the persistence contract for the vector store.
//
// A ChunkRepository keeps an ordered sequence of chunks. Insertion order is
// meaningful: it is the candidate order the retriever scans and the tie-break
// order for equal scores. Repositories never update or delete a single chunk;
// they only append, replace the whole sequence, or reset.
//
// # Implementations
//
//   - storage/file: one snapshot file rewritten atomically on every mutation
//   - storage/badger: BadgerDB keyed by a monotonically increasing sequence
//
// The binary chunk codec in this package is shared by the badger backend.
package storage
