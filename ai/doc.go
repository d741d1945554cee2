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

// Package ai provides abstractions for the AI services Quorum consumes.
//
// Two network services sit behind these interfaces:
//
//   - Embedder: turns text into vectors for the vector store and retriever
//   - Generator: turns a role and a prompt into one completion for a pipeline stage
//
// AIProvider bundles both so they share configuration and lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: HTTP embedding client plus a langchaingo backed generator
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return interface types. Mock constructors
// return concrete types so tests can inject behaviour and count calls:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, ai.ErrConnectionFailure
//	})
//
// # Errors
//
// Embedding failures wrap ErrEmbedding through one of two children:
// ErrConnectionFailure for transport problems and non-2xx statuses, and
// ErrMalformedResponse for 2xx bodies that lack usable vectors. Generation
// failures wrap ErrGeneration.
package ai
