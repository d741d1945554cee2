package badger

import "github.com/poiesic/quorum/storage"

const (
	chunkPrefix = "chunk:"
	chunkSeqKey = "chunkseq"
)

// makeChunkKey builds a key whose byte order follows insertion order.
func makeChunkKey(seq uint64) []byte {
	key := make([]byte, 0, len(chunkPrefix)+8)
	key = append(key, chunkPrefix...)
	return append(key, storage.MarshalSequence(seq)...)
}
