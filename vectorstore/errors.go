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

package vectorstore

import "errors"

var (
	// ErrRepositoryRequired indicates a nil repository was passed to Open.
	ErrRepositoryRequired = errors.New("chunk repository is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to Open.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrVectorCountMismatch indicates the embedder returned a different
	// number of vectors than chunks it was given.
	ErrVectorCountMismatch = errors.New("vector count does not match chunk count")
)
