package index

import (
	"context"

	"github.com/poiesic/veridoc/core"
)

// Filter restricts search and count operations to a single document.
// Both fields must be set; backends match them exactly.
type Filter struct {
	Filename string
	DocType  string
}

// Hit is one scored passage returned by hybrid search.
type Hit struct {
	Text       string
	Filename   string
	DocType    string
	PageNumber int
	Score      float64
}

// Searcher provides read access to the chunk index.
// Implementations must be thread-safe and support concurrent access.
type Searcher interface {
	// HybridSearch runs sparse and dense retrieval against the chunks
	// matching filter and returns the fused results, ordered by fused
	// score (highest first), up to limit results.
	// The sparse vector must not be empty; callers substitute a
	// placeholder when query encoding yields no terms.
	HybridSearch(ctx context.Context, sparse core.SparseVector, dense []float32, filter Filter, limit int) ([]Hit, error)

	// CountChunks returns the number of indexed chunks matching filter.
	// Returns 0 (no error) when the document has not been indexed.
	CountChunks(ctx context.Context, filter Filter) (int, error)
}

// Writer provides write access to the chunk index.
type Writer interface {
	// InsertChunks adds fully embedded chunks to the index. Chunks with
	// Id=0 get content-based IDs. Re-inserting a chunk with the same ID
	// overwrites the previous version.
	InsertChunks(ctx context.Context, chunks []*core.Chunk) error
}

// Index combines read and write access with lifecycle management.
type Index interface {
	Searcher
	Writer

	// Close releases backend resources.
	Close() error
}
