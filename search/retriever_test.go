package search

import (
	"context"
	"testing"

	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/ai/mock"
	"github.com/poiesic/quorum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource []*core.Chunk

func (s sliceSource) Chunks() []*core.Chunk { return s }

// queryEmbedder answers every query with the same vector.
func queryEmbedder(vector []float32) *mock.MockEmbedder {
	return mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	})
}

func newRetriever(t *testing.T, source ChunkSource, embedder ai.Embedder, opts ...Option) *Retriever {
	t.Helper()
	r, err := NewRetriever(source, embedder, opts...)
	require.NoError(t, err)
	return r
}

func TestNewRetriever_Validation(t *testing.T) {
	_, err := NewRetriever(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrChunkSourceRequired)

	_, err = NewRetriever(sliceSource{}, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewRetriever(sliceSource{}, mock.NewMockEmbedder(), WithVectorWeight(1.5))
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestRetrieve_EmptyStore(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r := newRetriever(t, sliceSource{}, embedder)

	results := r.Retrieve(context.Background(), "What is EDA?", 3)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, embedder.CallCount(), "no embedding call for an empty store")
}

func TestRetrieve_EmbeddingFailureFailsClosed(t *testing.T) {
	source := sliceSource{core.NewChunk("EDA tools", []float32{1, 0})}
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, ai.ErrConnectionFailure
	})
	r := newRetriever(t, source, embedder)

	assert.Empty(t, r.Retrieve(context.Background(), "EDA", 3))
}

func TestRetrieve_RanksByHybridScore(t *testing.T) {
	source := sliceSource{
		core.NewChunk("unrelated gardening notes", []float32{0, 1}),
		core.NewChunk("synthesis and placement", []float32{1, 0}),
		core.NewChunk("EDA synthesis flow", []float32{1, 0}),
	}
	r := newRetriever(t, source, queryEmbedder([]float32{1, 0}))

	scored := r.RetrieveScored(context.Background(), "EDA synthesis", 3)
	require.Len(t, scored, 3)

	assert.Equal(t, "EDA synthesis flow", scored[0].Chunk.Text)
	assert.InDelta(t, 1.0, scored[0].Score, 1e-9)
	assert.Equal(t, "synthesis and placement", scored[1].Chunk.Text)
	assert.InDelta(t, 0.7+0.3*0.5, scored[1].Score, 1e-9)
	assert.Equal(t, "unrelated gardening notes", scored[2].Chunk.Text)
	assert.InDelta(t, 0.0, scored[2].Score, 1e-9)
	assert.Equal(t, 0, scored[2].Position)
}

func TestRetrieve_TiesKeepInsertionOrder(t *testing.T) {
	source := sliceSource{
		core.NewChunk("first", []float32{1, 0}),
		core.NewChunk("second", []float32{1, 0}),
		core.NewChunk("third", []float32{1, 0}),
	}
	r := newRetriever(t, source, queryEmbedder([]float32{1, 0}))

	assert.Equal(t, []string{"first", "second"}, r.Retrieve(context.Background(), "query", 2))
}

func TestRetrieve_TopKBounds(t *testing.T) {
	source := sliceSource{
		core.NewChunk("a", []float32{1, 0}),
		core.NewChunk("b", []float32{0, 1}),
		core.NewChunk("c", []float32{1, 1}),
		core.NewChunk("d", []float32{-1, 0}),
	}
	r := newRetriever(t, source, queryEmbedder([]float32{1, 0}))
	ctx := context.Background()

	assert.Len(t, r.Retrieve(ctx, "q", 10), 4, "topK above store size returns everything")
	assert.Len(t, r.Retrieve(ctx, "q", 0), DefaultTopK)
	assert.Len(t, r.Retrieve(ctx, "q", 1), 1)

	scored := r.RetrieveScored(ctx, "q", 10)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
}

func TestRetrieve_VectorWeight(t *testing.T) {
	source := sliceSource{
		core.NewChunk("vector match only", []float32{1, 0}),
		core.NewChunk("keyword chip", []float32{0, 1}),
	}
	ctx := context.Background()

	lexicalOnly := newRetriever(t, source, queryEmbedder([]float32{1, 0}), WithVectorWeight(0))
	assert.Equal(t, []string{"keyword chip"}, lexicalOnly.Retrieve(ctx, "chip", 1))

	vectorOnly := newRetriever(t, source, queryEmbedder([]float32{1, 0}), WithVectorWeight(1))
	assert.Equal(t, []string{"vector match only"}, vectorOnly.Retrieve(ctx, "chip", 1))
}

func TestRetrieve_BlankQuery(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r := newRetriever(t, sliceSource{core.NewChunk("a", []float32{1})}, embedder)

	assert.Empty(t, r.Retrieve(context.Background(), "   ", 3))
	assert.Zero(t, embedder.CallCount())
}

type recordingMonitor struct {
	started   int
	dimension int
	failed    error
	finished  []ScoredChunk
}

func (m *recordingMonitor) Start(_ string, candidates int)  { m.started = candidates }
func (m *recordingMonitor) AfterQueryEmbedding(dim int)     { m.dimension = dim }
func (m *recordingMonitor) EmbeddingFailed(err error)       { m.failed = err }
func (m *recordingMonitor) Finish(results []ScoredChunk)    { m.finished = results }

func TestRetrieveWithMonitor(t *testing.T) {
	source := sliceSource{core.NewChunk("a", []float32{1, 0}), core.NewChunk("b", []float32{0, 1})}
	r := newRetriever(t, source, queryEmbedder([]float32{1, 0}))

	monitor := &recordingMonitor{}
	r.RetrieveWithMonitor(context.Background(), "a", 1, monitor)

	assert.Equal(t, 2, monitor.started)
	assert.Equal(t, 2, monitor.dimension)
	assert.NoError(t, monitor.failed)
	require.Len(t, monitor.finished, 1)
	assert.Equal(t, "a", monitor.finished[0].Chunk.Text)
}
