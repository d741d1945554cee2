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

package ai

import (
	"fmt"
	"strings"
	"time"
)

// Embedding wire protocols.
const (
	// ProtocolNative accepts both the {output:{embeddings:[]}} and the
	// {data:[]} response shapes.
	ProtocolNative = "native"
	// ProtocolOpenAI speaks only the OpenAI embeddings API.
	ProtocolOpenAI = "openai"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingURL is the full endpoint the embedding request is POSTed to.
	// Example: "http://localhost:11434/v1/embeddings"
	EmbeddingURL string

	// EmbeddingModel is the model identifier sent with every embedding request.
	// Example: "embeddinggemma", "text-embedding-v3"
	EmbeddingModel string

	// EmbeddingProtocol selects the embedding client. See ProtocolNative and
	// ProtocolOpenAI. Default: ProtocolNative
	EmbeddingProtocol string

	// EmbeddingTimeout bounds a single embedding request.
	// Default: 30s
	EmbeddingTimeout time.Duration

	// GenerationHost is the base URL for the chat completion service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	GenerationHost string

	// GenerationModel is the model identifier used by every pipeline stage.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	GenerationModel string

	// GenerationTimeout bounds a single stage call. Zero disables the bound.
	// Default: 120s
	GenerationTimeout time.Duration

	// MaxTokens caps the completion length of a stage call.
	// Default: 2048
	MaxTokens int

	// APIKey is sent as a bearer token to both services.
	// Local services usually accept any value.
	APIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingURL sets the embedding endpoint.
func WithEmbeddingURL(url string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingURL = url
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingProtocol sets the embedding wire protocol.
func WithEmbeddingProtocol(protocol string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingProtocol = protocol
	}
}

// WithEmbeddingTimeout sets the per-request embedding timeout.
func WithEmbeddingTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.EmbeddingTimeout = d
	}
}

// WithGenerationHost sets the chat completion service host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithGenerationModel sets the chat completion model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithGenerationTimeout sets the per-call generation timeout.
func WithGenerationTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.GenerationTimeout = d
	}
}

// WithMaxTokens sets the completion token cap.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingURL:      defaultHost + "/embeddings",
		EmbeddingModel:    "embeddinggemma",
		EmbeddingProtocol: ProtocolNative,
		EmbeddingTimeout:  30 * time.Second,
		GenerationHost:    defaultHost,
		GenerationModel:   "qwen2.5:3b",
		GenerationTimeout: 120 * time.Second,
		MaxTokens:         2048,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithGenerationHost("http://localhost:11434"),
//	    WithEmbeddingURL("https://dashscope.aliyuncs.com/api/v1/services/embeddings/text-embedding/text-embedding"),
//	    WithAPIKey(os.Getenv("QUORUM_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// GenerationHost gets a /v1 suffix when missing, as required by most
// OpenAI-compatible APIs. An EmbeddingURL that stops at /v1 gets the
// /embeddings path appended.
func (c *Config) Normalize() {
	if c.GenerationHost != "" && !strings.HasSuffix(c.GenerationHost, "/v1") {
		c.GenerationHost = strings.TrimSuffix(c.GenerationHost, "/") + "/v1"
	}
	if c.EmbeddingURL != "" {
		c.EmbeddingURL = strings.TrimSuffix(c.EmbeddingURL, "/")
		if strings.HasSuffix(c.EmbeddingURL, "/v1") {
			c.EmbeddingURL += "/embeddings"
		}
	}
	if c.EmbeddingProtocol == "" {
		c.EmbeddingProtocol = ProtocolNative
	}
}

// EmbeddingBaseURL returns the embedding endpoint without its trailing
// /embeddings path, which is the form OpenAI client libraries expect.
func (c *Config) EmbeddingBaseURL() string {
	return strings.TrimSuffix(strings.TrimSuffix(c.EmbeddingURL, "/"), "/embeddings")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingURL == "" {
		return fmt.Errorf("%w: EmbeddingURL is required", ErrInvalidConfig)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: EmbeddingModel is required", ErrInvalidConfig)
	}
	if c.EmbeddingProtocol != ProtocolNative && c.EmbeddingProtocol != ProtocolOpenAI {
		return fmt.Errorf("%w: unknown EmbeddingProtocol %q", ErrInvalidConfig, c.EmbeddingProtocol)
	}
	if c.EmbeddingTimeout <= 0 {
		return fmt.Errorf("%w: EmbeddingTimeout must be positive", ErrInvalidConfig)
	}
	if c.GenerationHost == "" {
		return fmt.Errorf("%w: GenerationHost is required", ErrInvalidConfig)
	}
	if c.GenerationModel == "" {
		return fmt.Errorf("%w: GenerationModel is required", ErrInvalidConfig)
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("%w: GenerationTimeout cannot be negative", ErrInvalidConfig)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("%w: MaxTokens must be at least 1", ErrInvalidConfig)
	}
	return nil
}
