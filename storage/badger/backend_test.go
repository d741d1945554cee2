package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestMakeChunkKey_Ordering(t *testing.T) {
	assert.Less(t, string(makeChunkKey(9)), string(makeChunkKey(10)))
	assert.Less(t, string(makeChunkKey(255)), string(makeChunkKey(256)))
	assert.NotContains(t, chunkSeqKey, chunkPrefix)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, repo.AppendChunks(ctx, core.NewChunk("first", []float32{1})))
	require.NoError(t, repo.Close())

	repo, err = Open(dir)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.AppendChunks(ctx, core.NewChunk("second", []float32{2})))

	chunks, err := repo.LoadChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Text)
	assert.Equal(t, "second", chunks[1].Text)
}

func TestChunkRepository_ClosedBackend(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = repo.LoadChunks(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	err = repo.AppendChunks(context.Background(), core.NewChunk("x", []float32{1}))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
