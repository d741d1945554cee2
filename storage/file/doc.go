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

// Package file implements storage.ChunkRepository as a single gob snapshot.
//
// The snapshot holds an ordered list of (vector, text) pairs. Every
// successful mutation rewrites the whole file through a temporary file and a
// rename in the same directory, so a crash loses at most the mutation in
// flight. Chunk IDs are not stored; they are recomputed from text on load.
package file
