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

// Package badger implements storage.ChunkRepository on BadgerDB.
//
// Chunks live under "chunk:" followed by a big-endian sequence number drawn
// from a persistent badger.Sequence, so prefix iteration returns them in
// insertion order. Values use the binary codec from the storage package.
// Appends and replacements run in a single transaction; resets drop the
// whole prefix.
package badger
