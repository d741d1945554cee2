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

// Package search implements hybrid retrieval over the vector store.
//
// Every stored chunk is scored against the query as
//
//	score = w*cosine(queryVector, chunkVector) + (1-w)*overlap(query, chunk)
//
// where overlap is the fraction of distinct query tokens found in the chunk
// and w defaults to 0.7. The top k chunks are returned in non-increasing
// score order, ties going to the chunk inserted first.
//
// Retrieval is advisory. An empty store, a blank query or a failed query
// embedding all produce an empty result instead of an error, so callers can
// always fall back to answering without context.
package search
