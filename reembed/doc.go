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

// Package reembed rebuilds the vectors of every stored chunk with the
// current embedder, typically after the embedding model has changed.
//
// Chunks are embedded in batches with retry and exponential backoff. The
// store is only touched once every batch has succeeded, when the whole
// sequence is swapped in a single replace; a failed run leaves the existing
// chunks as they were.
package reembed
