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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/quorum/ai"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "quorum.yaml"

	// DefaultAPIKeyEnv names the environment variable holding the bearer key.
	DefaultAPIKeyEnv = "QUORUM_API_KEY"

	StoreFile   = "file"
	StoreBadger = "badger"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// AIConfig configures the embedding and generation services.
type AIConfig struct {
	GenerationHost    string        `yaml:"generation_host"`
	GenerationModel   string        `yaml:"generation_model"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	MaxTokens         int           `yaml:"max_tokens"`
	EmbeddingURL      string        `yaml:"embedding_url"`
	EmbeddingModel    string        `yaml:"embedding_model"`
	EmbeddingProtocol string        `yaml:"embedding_protocol"`
	EmbeddingTimeout  time.Duration `yaml:"embedding_timeout"`
	APIKeyEnv         string        `yaml:"api_key_env"`
}

// StoreConfig selects the chunk repository and ingestion settings.
type StoreConfig struct {
	Type      string `yaml:"type"`
	Path      string `yaml:"path"`
	ChunkSize int    `yaml:"chunk_size"`
	PoolSize  int    `yaml:"pool_size"`
}

// RetrievalConfig tunes the hybrid retriever.
type RetrievalConfig struct {
	Disabled     bool    `yaml:"disabled"`
	TopK         int     `yaml:"top_k"`
	VectorWeight float64 `yaml:"vector_weight"`
}

type PipelineConfig struct {
	// Domain names the field questions belong to; empty means general.
	Domain string `yaml:"domain"`
}

// RefusalConfig adjusts the refusal denylist. A non-empty Denylist replaces
// the built-in phrases; ExtraPhrases are added to whichever list is in use.
type RefusalConfig struct {
	Disabled     bool     `yaml:"disabled"`
	Denylist     []string `yaml:"denylist,omitempty"`
	ExtraPhrases []string `yaml:"extra_phrases,omitempty"`
}

// Config is the root application configuration.
type Config struct {
	AI        AIConfig        `yaml:"ai"`
	Store     StoreConfig     `yaml:"store"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Refusal   RefusalConfig   `yaml:"refusal"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./quorum.yaml, then ~/.config/quorum/config.yaml. If
// neither exists it writes the defaults to the user path and returns them.
func LoadDefault() (*Config, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}
	userPath, err := UserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// UserConfigPath returns ~/.config/quorum/config.yaml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "quorum", "config.yaml"), nil
}

// LoadEnv loads .env style files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// APIKey returns the bearer key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.AI.APIKeyEnv)
}

// ProviderConfig converts the AI section into an ai.Config.
func (c *Config) ProviderConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithGenerationTimeout(c.AI.GenerationTimeout),
		ai.WithMaxTokens(c.AI.MaxTokens),
		ai.WithEmbeddingURL(c.AI.EmbeddingURL),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingProtocol(c.AI.EmbeddingProtocol),
		ai.WithEmbeddingTimeout(c.AI.EmbeddingTimeout),
		ai.WithAPIKey(c.APIKey()),
	)
}

// Validate checks value ranges. It does not contact any service.
func (c *Config) Validate() error {
	if c.Store.Type != StoreFile && c.Store.Type != StoreBadger {
		return fmt.Errorf("%w: store.type must be %q or %q, got %q", ErrInvalidConfig, StoreFile, StoreBadger, c.Store.Type)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required", ErrInvalidConfig)
	}
	if c.Store.ChunkSize <= 0 {
		return fmt.Errorf("%w: store.chunk_size must be positive", ErrInvalidConfig)
	}
	if c.Store.PoolSize <= 0 {
		return fmt.Errorf("%w: store.pool_size must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.VectorWeight < 0 || c.Retrieval.VectorWeight > 1 {
		return fmt.Errorf("%w: retrieval.vector_weight must be within [0, 1]", ErrInvalidConfig)
	}
	if err := c.ProviderConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	aiDefaults := ai.DefaultConfig()
	if cfg.AI.GenerationHost == "" {
		cfg.AI.GenerationHost = aiDefaults.GenerationHost
	}
	if cfg.AI.GenerationModel == "" {
		cfg.AI.GenerationModel = aiDefaults.GenerationModel
	}
	if cfg.AI.GenerationTimeout == 0 {
		cfg.AI.GenerationTimeout = aiDefaults.GenerationTimeout
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = aiDefaults.MaxTokens
	}
	if cfg.AI.EmbeddingURL == "" {
		cfg.AI.EmbeddingURL = aiDefaults.EmbeddingURL
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = aiDefaults.EmbeddingModel
	}
	if cfg.AI.EmbeddingProtocol == "" {
		cfg.AI.EmbeddingProtocol = aiDefaults.EmbeddingProtocol
	}
	if cfg.AI.EmbeddingTimeout == 0 {
		cfg.AI.EmbeddingTimeout = aiDefaults.EmbeddingTimeout
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = DefaultAPIKeyEnv
	}

	if cfg.Store.Type == "" {
		cfg.Store.Type = StoreFile
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Type {
		case StoreBadger:
			cfg.Store.Path = "quorum.db"
		default:
			cfg.Store.Path = "quorum.store"
		}
	}
	if cfg.Store.ChunkSize == 0 {
		cfg.Store.ChunkSize = 100
	}
	if cfg.Store.PoolSize == 0 {
		cfg.Store.PoolSize = 1
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.VectorWeight == 0 {
		cfg.Retrieval.VectorWeight = 0.7
	}
}
