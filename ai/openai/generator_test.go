package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/quorum/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"test-chat",` +
		`"choices":[{"index":0,"message":{"role":"assistant","content":` + quote(content) + `},"finish_reason":"stop"}],` +
		`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc, opts ...ai.ConfigOption) *Generator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]ai.ConfigOption{
		ai.WithGenerationHost(server.URL),
		ai.WithGenerationModel("test-chat"),
	}, opts...)
	generator, err := newGenerator(ai.NewConfig(opts...))
	require.NoError(t, err)
	return generator
}

func TestGenerator_Generate(t *testing.T) {
	var body []byte
	generator := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("  EDA stands for Electronic Design Automation.  ")))
	})

	text, err := generator.Generate(context.Background(), "You are an expert.", "What is EDA?")
	require.NoError(t, err)
	assert.Equal(t, "EDA stands for Electronic Design Automation.", text)

	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, "test-chat", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Contains(t, string(body), "You are an expert.")
	assert.Contains(t, string(body), "What is EDA?")
}

func TestGenerator_EmptyCompletion(t *testing.T) {
	generator := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("   ")))
	})

	_, err := generator.Generate(context.Background(), "role", "prompt")
	assert.ErrorIs(t, err, ai.ErrEmptyCompletion)
	assert.ErrorIs(t, err, ai.ErrGeneration)
}

func TestGenerator_ServerError(t *testing.T) {
	generator := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	_, err := generator.Generate(context.Background(), "role", "prompt")
	assert.ErrorIs(t, err, ai.ErrGeneration)
}

func TestGenerator_Timeout(t *testing.T) {
	release := make(chan struct{})
	generator := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, ai.WithGenerationTimeout(50*time.Millisecond))
	defer close(release)

	start := time.Now()
	_, err := generator.Generate(context.Background(), "role", "prompt")
	assert.ErrorIs(t, err, ai.ErrGeneration)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewProvider(t *testing.T) {
	t.Run("native embedder by default", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig())
		require.NoError(t, err)
		defer provider.Close()

		assert.IsType(t, &EmbeddingClient{}, provider.Embedder())
		assert.IsType(t, &Generator{}, provider.Generator())
	})

	t.Run("openai protocol selects compat embedder", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(ai.WithEmbeddingProtocol(ai.ProtocolOpenAI)))
		require.NoError(t, err)
		defer provider.Close()

		assert.IsType(t, &CompatEmbedder{}, provider.Embedder())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithGenerationModel("")))
		assert.ErrorIs(t, err, ai.ErrInvalidConfig)
	})
}

func TestCompatEmbedder_EmbedTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[` +
			`{"object":"embedding","index":0,"embedding":[0.1,0.2]},` +
			`{"object":"embedding","index":1,"embedding":[0.3,0.4]}],` +
			`"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer server.Close()

	embedder, err := newCompatEmbedder(ai.NewConfig(
		ai.WithEmbeddingURL(server.URL+"/v1/embeddings"),
		ai.WithEmbeddingProtocol(ai.ProtocolOpenAI),
	))
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vectors)
}
