package vectorstore

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/ai/mock"
	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/storage"
	"github.com/poiesic/quorum/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, embedder ai.Embedder, opts ...Option) (*Store, storage.ChunkRepository) {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	store, err := Open(context.Background(), repo, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store, repo
}

func chunkTexts(chunks []*core.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// failingOn returns an embedder that fails every batch containing marker.
func failingOn(marker string, err error) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	return m.WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.Contains(text, marker) {
				return nil, err
			}
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 8)
		}
		return out, nil
	})
}

func TestOpen_Validation(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	_, err = Open(context.Background(), nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = Open(context.Background(), repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestIngest_AddsChunks(t *testing.T) {
	store, _ := setupStore(t, mock.NewMockEmbedder())

	result, err := store.Ingest(context.Background(), []string{
		"EDA stands for Electronic Design Automation.",
		"Place and route comes after synthesis.",
	}, 100)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, store.Len())
}

func TestIngest_InvalidChunkSize(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, _ := setupStore(t, embedder)

	_, err := store.Ingest(context.Background(), []string{"text"}, 0)
	assert.ErrorIs(t, err, core.ErrInvalidChunkSize)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Zero(t, embedder.CallCount(), "validation happens before any embedding call")
}

func TestIngest_PartialFailure(t *testing.T) {
	store, repo := setupStore(t, failingOn("FAIL", ai.ErrConnectionFailure))

	result, err := store.Ingest(context.Background(), []string{
		"alpha beta gamma delta",
		"this item will FAIL",
		"epsilon zeta eta theta",
	}, 12)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.ErrorIs(t, result.Errors[0], ai.ErrConnectionFailure)
	assert.Equal(t, []string{"item 1: " + result.Errors[0].Err.Error()}, result.Messages())

	assert.Equal(t, []string{"alpha beta", "gamma delta", "epsilon", "zeta eta", "theta"}, chunkTexts(store.Chunks()))
	assert.Equal(t, 5, result.Added)

	persisted, err := repo.LoadChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chunkTexts(store.Chunks()), chunkTexts(persisted))
}

func TestIngest_BlankItems(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, _ := setupStore(t, embedder)

	result, err := store.Ingest(context.Background(), []string{"", "real text", "   \n"}, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 0, result.Errors[0].Index)
	assert.Equal(t, 2, result.Errors[1].Index)
	assert.ErrorIs(t, result.Errors[0], core.ErrEmptyText)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestIngest_MalformedVectorCount(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	store, _ := setupStore(t, embedder)

	result, err := store.Ingest(context.Background(), []string{"one two three four"}, 5)
	require.NoError(t, err)

	assert.Zero(t, result.Added)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], ErrVectorCountMismatch)
	assert.Zero(t, store.Len())
}

func TestIngest_OrderPreservedWithConcurrentWorkers(t *testing.T) {
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		// Earlier items finish later.
		n := calls.Add(1)
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 4)
		}
		return out, nil
	})
	store, _ := setupStore(t, embedder, WithPoolSize(4))

	items := []string{"a1 a2 a3", "b1 b2 b3", "c1 c2 c3", "d1 d2 d3", "e1 e2 e3"}
	result, err := store.Ingest(context.Background(), items, 5)
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	assert.Equal(t, []string{
		"a1", "a2 a3",
		"b1", "b2 b3",
		"c1", "c2 c3",
		"d1", "d2 d3",
		"e1", "e2 e3",
	}, chunkTexts(store.Chunks()))
}

func TestIngest_PersistenceFailure(t *testing.T) {
	store, repo := setupStore(t, mock.NewMockEmbedder())
	require.NoError(t, repo.Close())

	result, err := store.Ingest(context.Background(), []string{"text"}, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.Zero(t, result.Added)
	assert.Zero(t, store.Len())
}

func TestReset(t *testing.T) {
	store, repo := setupStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	require.NoError(t, store.Reset(ctx), "reset of empty store")
	_, err := store.Ingest(ctx, []string{"some text", "more text"}, 100)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	require.NoError(t, store.Reset(ctx))
	require.NoError(t, store.Reset(ctx))
	assert.Zero(t, store.Len())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_ReloadsPersistedChunks(t *testing.T) {
	ctx := context.Background()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	first, err := Open(ctx, repo, mock.NewMockEmbedder())
	require.NoError(t, err)
	_, err = first.Ingest(ctx, []string{"persisted text"}, 100)
	require.NoError(t, err)
	first.Close()

	second, err := Open(ctx, repo, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, []string{"persisted text"}, chunkTexts(second.Chunks()))
}

func TestReplace(t *testing.T) {
	store, _ := setupStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := store.Ingest(ctx, []string{"old"}, 100)
	require.NoError(t, err)

	replacement := []*core.Chunk{core.NewChunk("new", []float32{1, 2})}
	require.NoError(t, store.Replace(ctx, replacement))
	assert.Equal(t, []string{"new"}, chunkTexts(store.Chunks()))

	err = store.Replace(ctx, []*core.Chunk{core.NewChunk("bad", nil)})
	assert.True(t, errors.Is(err, storage.ErrInvalidChunk))
	assert.Equal(t, []string{"new"}, chunkTexts(store.Chunks()), "failed replace leaves the store untouched")
}

func TestChunks_ReturnsCopy(t *testing.T) {
	store, _ := setupStore(t, mock.NewMockEmbedder())
	_, err := store.Ingest(context.Background(), []string{"x"}, 100)
	require.NoError(t, err)

	chunks := store.Chunks()
	chunks[0] = nil
	assert.NotNil(t, store.Chunks()[0])
}
