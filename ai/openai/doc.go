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

// Package openai provides AI service implementations for OpenAI-compatible APIs.
//
// Embeddings are fetched by EmbeddingClient, a plain HTTP client that accepts
// both the OpenAI {data:[...]} body and the {output:{embeddings:[...]}} body
// used by DashScope style services. Services that only speak the OpenAI
// protocol can use CompatEmbedder instead, which goes through langchaingo.
//
// Completions are produced by Generator through langchaingo's llms/openai
// client. Each Generate call sends exactly one system and one user message and
// runs under the configured generation timeout.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithGenerationHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithAPIKey(os.Getenv("QUORUM_API_KEY")),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"sample text"})
//	answer, err := provider.Generator().Generate(ctx, "You are a helpful assistant.", "What is EDA?")
package openai
