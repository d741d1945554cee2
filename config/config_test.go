package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/quorum/ai"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, StoreFile, cfg.Store.Type)
	assert.Equal(t, "quorum.store", cfg.Store.Path)
	assert.Equal(t, 100, cfg.Store.ChunkSize)
	assert.Equal(t, 1, cfg.Store.PoolSize)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 0.7, cfg.Retrieval.VectorWeight)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.AI.APIKeyEnv)
	assert.Equal(t, 120*time.Second, cfg.AI.GenerationTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quorum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  generation_model: gpt-4o-mini
  embedding_timeout: 5s
store:
  type: badger
retrieval:
  top_k: 5
pipeline:
  domain: data science
refusal:
  extra_phrases:
    - "beyond my scope"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.AI.GenerationModel)
	assert.Equal(t, 5*time.Second, cfg.AI.EmbeddingTimeout)
	assert.Equal(t, ai.DefaultConfig().GenerationHost, cfg.AI.GenerationHost)
	assert.Equal(t, StoreBadger, cfg.Store.Type)
	assert.Equal(t, "quorum.db", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "data science", cfg.Pipeline.Domain)
	assert.Equal(t, []string{"beyond my scope"}, cfg.Refusal.ExtraPhrases)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Pipeline.Domain = "statistics"
	cfg.Store.ChunkSize = 250

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "quorum", "config.yaml"), path)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)

	require.NoError(t, os.WriteFile(FileName, []byte("store:\n  chunk_size: 42\n"), 0o644))
	cfg, path, err = LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, FileName, path)
	assert.Equal(t, 42, cfg.Store.ChunkSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store type", func(c *Config) { c.Store.Type = "postgres" }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"negative chunk size", func(c *Config) { c.Store.ChunkSize = -1 }},
		{"zero pool size", func(c *Config) { c.Store.PoolSize = 0 }},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"weight above one", func(c *Config) { c.Retrieval.VectorWeight = 1.5 }},
		{"unknown protocol", func(c *Config) { c.AI.EmbeddingProtocol = "grpc" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestProviderConfig_ReadsAPIKeyFromEnv(t *testing.T) {
	cfg := Default()
	cfg.AI.APIKeyEnv = "QUORUM_TEST_PROVIDER_KEY"
	t.Setenv("QUORUM_TEST_PROVIDER_KEY", "sk-test")

	pc := cfg.ProviderConfig()
	assert.Equal(t, "sk-test", pc.APIKey)
	assert.Equal(t, cfg.AI.GenerationModel, pc.GenerationModel)
	assert.Equal(t, cfg.AI.EmbeddingURL, pc.EmbeddingURL)
	assert.Equal(t, cfg.AI.MaxTokens, pc.MaxTokens)
}

func TestLoadEnv(t *testing.T) {
	const key = "QUORUM_TEST_DOTENV_KEY"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0o600))

	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv(key))
}
