package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/veridoc/core"
)

// Key prefixes for different data types
const (
	chunkPrefix    = "chunk"
	docChunkPrefix = "docchu"
	manifestPrefix = "docman"
)

// docID derives a stable identifier for a (filename, doc type) pair.
// The NUL separator keeps distinct pairs from colliding.
func docID(filename, docType string) core.ID {
	return core.IDFromContent(filename + "\x00" + docType)
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeDocChunkKey generates a composite key for the document index.
// Format: prefix:docID:chunkID
func makeDocChunkKey(doc, chunk core.ID) []byte {
	return binary.BigEndian.AppendUint64(makePartialDocChunkKey(doc), uint64(chunk))
}

// makePartialDocChunkKey generates the per-document key prefix that
// bounds an iterator scan to a single document's chunks.
func makePartialDocChunkKey(doc core.ID) []byte {
	// BigEndian keeps a document's keys lexicographically contiguous.
	return binary.BigEndian.AppendUint64([]byte(docChunkPrefix+":"), uint64(doc))
}

// makeManifestKey generates a key for a document manifest.
func makeManifestKey(doc core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", manifestPrefix, doc))
}
