package search

// RetrievalMonitor observes the steps of a single retrieval.
type RetrievalMonitor interface {
	Start(query string, candidates int)
	AfterQueryEmbedding(dimension int)
	EmbeddingFailed(err error)
	Finish(results []ScoredChunk)
}

type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)     {}
func (n *noopMonitor) AfterQueryEmbedding(_ int) {}
func (n *noopMonitor) EmbeddingFailed(_ error)   {}
func (n *noopMonitor) Finish(_ []ScoredChunk)    {}
