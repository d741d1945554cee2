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

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/poiesic/quorum/ai"
)

// maxResponseBytes bounds how much of an embedding response is read.
const maxResponseBytes = 64 << 20

// EmbeddingClient implements ai.Embedder by POSTing batches to an embedding
// endpoint. It accepts both the {output:{embeddings:[]}} and the {data:[]}
// response shapes.
type EmbeddingClient struct {
	url    string
	model  string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingItem struct {
	Embedding []float32 `json:"embedding"`
	Index     *int      `json:"index,omitempty"`
	TextIndex *int      `json:"text_index,omitempty"`
}

type embeddingResponse struct {
	Output *struct {
		Embeddings []embeddingItem `json:"embeddings"`
	} `json:"output"`
	Data []embeddingItem `json:"data"`
}

// newEmbeddingClient is an internal constructor that returns the concrete type.
func newEmbeddingClient(config *ai.Config) (*EmbeddingClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &EmbeddingClient{
		url:    config.EmbeddingURL,
		model:  config.EmbeddingModel,
		apiKey: config.APIKey,
		client: &http.Client{Timeout: config.EmbeddingTimeout},
		logger: slog.Default().With("component", "embedding-client"),
	}, nil
}

// NewEmbeddingClient creates an HTTP embedding client.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbeddingClient(config *ai.Config) (ai.Embedder, error) {
	return newEmbeddingClient(config)
}

// EmbedText generates a vector embedding for a single text string.
func (c *EmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts sends one batched request for texts. The result has one vector
// per input, in input order.
func (c *EmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	c.logger.Debug("generating embeddings for texts", "count", len(texts))

	payload, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", ai.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrConnectionFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("embedding request failed", "url", c.url, "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrConnectionFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ai.ErrConnectionFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("embedding service returned error status",
			"status", resp.StatusCode,
			"body", excerpt(body, 200))
		return nil, fmt.Errorf("%w: status %d", ai.ErrConnectionFailure, resp.StatusCode)
	}

	vectors, err := decodeEmbeddings(body, len(texts))
	if err != nil {
		c.logger.Warn("malformed embedding response", "body", excerpt(body, 200), "err", err)
		return nil, err
	}
	return vectors, nil
}

// decodeEmbeddings extracts want vectors from a successful response body.
func decodeEmbeddings(body []byte, want int) ([][]float32, error) {
	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
	}

	var items []embeddingItem
	switch {
	case parsed.Output != nil && parsed.Output.Embeddings != nil:
		items = parsed.Output.Embeddings
	case parsed.Data != nil:
		items = parsed.Data
	default:
		return nil, fmt.Errorf("%w: no output.embeddings or data field", ai.ErrMalformedResponse)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty embeddings array", ai.ErrMalformedResponse)
	}
	if len(items) != want {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ai.ErrMalformedResponse, len(items), want)
	}

	vectors := make([][]float32, want)
	for i, item := range items {
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("%w: item %d has no embedding", ai.ErrMalformedResponse, i)
		}
		pos := i
		if idx := item.position(); idx != nil {
			pos = *idx
		}
		if pos < 0 || pos >= want || vectors[pos] != nil {
			return nil, fmt.Errorf("%w: item %d has invalid index %d", ai.ErrMalformedResponse, i, pos)
		}
		vectors[pos] = item.Embedding
	}
	return vectors, nil
}

// position returns the input index the service reported for this item, if any.
func (e embeddingItem) position() *int {
	if e.TextIndex != nil {
		return e.TextIndex
	}
	return e.Index
}

func excerpt(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
