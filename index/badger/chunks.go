package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/index"
)

// rrfK is the reciprocal rank fusion constant. It matches the default
// used by Milvus's RRFRanker so both backends rank alike.
const rrfK = 60

// Index implements index.Index on an embedded BadgerDB store. Sparse and
// dense retrieval run as full scans over a single document's chunks, which
// is adequate for per-document audit workloads.
type Index struct {
	store  *store
	logger *slog.Logger
}

var _ index.Index = (*Index)(nil)

// NewIndex opens an embedded chunk index at path.
func NewIndex(path string) (index.Index, error) {
	st, err := openStore(path)
	if err != nil {
		return nil, err
	}
	return newIndex(st), nil
}

func newIndex(st *store) *Index {
	return &Index{
		store:  st,
		logger: slog.Default().With("component", "badger-index"),
	}
}

// Close closes the underlying database.
func (i *Index) Close() error {
	return i.store.close()
}

// InsertChunks adds fully embedded chunks to the index. Chunks with Id=0
// get content-based IDs covering document identity and chunk position.
// Document manifests are updated in the same transaction.
func (i *Index) InsertChunks(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if i.store.closed() {
		return index.ErrIndexClosed
	}

	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	return i.store.update(func(tx *badger.Txn) error {
		added := make(map[core.ID]int)
		docs := make(map[core.ID]*core.Chunk)

		for _, chunk := range chunks {
			if chunk.Id == 0 {
				chunk.Id = index.ContentID(chunk)
			}
			doc := docID(chunk.Filename, chunk.DocType)
			docs[doc] = chunk

			key := makeChunkKey(chunk.Id)
			_, err := tx.Get(key)
			switch err {
			case nil:
				// Overwrite, count unchanged
			case badger.ErrKeyNotFound:
				added[doc]++
			default:
				return err
			}

			if err := tx.Set(key, index.MarshalChunk(chunk)); err != nil {
				return err
			}
			if err := tx.Set(makeDocChunkKey(doc, chunk.Id), index.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}

		for doc, chunk := range docs {
			manifest, err := readManifest(tx, doc)
			if err != nil {
				return err
			}
			if manifest == nil {
				manifest = &core.DocumentManifest{
					Filename: chunk.Filename,
					DocType:  chunk.DocType,
				}
			}
			manifest.ChunkCount += added[doc]
			manifest.IndexedAt = now
			if err := tx.Set(makeManifestKey(doc), index.MarshalManifest(manifest)); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
}

// HybridSearch scans the document's chunks, scores them against the sparse
// and dense query vectors, and fuses the two rankings with reciprocal rank
// fusion. Results are ordered by fused score descending.
func (i *Index) HybridSearch(ctx context.Context, sparse core.SparseVector, dense []float32, filter index.Filter, limit int) ([]index.Hit, error) {
	if i.store.closed() {
		return nil, index.ErrIndexClosed
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", index.ErrInvalidQuery)
	}
	if filter.Filename == "" || filter.DocType == "" {
		return nil, fmt.Errorf("%w: filter requires filename and doc type", index.ErrInvalidQuery)
	}

	candidates, err := i.readDocumentChunks(filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	type scored struct {
		chunk  *core.Chunk
		sparse float64
		dense  float64
		fused  float64
	}

	all := make([]*scored, 0, len(candidates))
	sparseRank := make([]*scored, 0, len(candidates))
	denseRank := make([]*scored, 0, len(candidates))
	for _, chunk := range candidates {
		s := &scored{
			chunk:  chunk,
			sparse: sparseDot(sparse, chunk.Sparse),
			dense:  cosineSimilarity(dense, chunk.Dense),
		}
		all = append(all, s)
		if s.sparse > 0 {
			sparseRank = append(sparseRank, s)
		}
		if len(chunk.Dense) > 0 && len(dense) > 0 {
			denseRank = append(denseRank, s)
		}
	}

	slices.SortFunc(sparseRank, func(a, b *scored) int {
		return compareDesc(a.sparse, b.sparse)
	})
	slices.SortFunc(denseRank, func(a, b *scored) int {
		return compareDesc(a.dense, b.dense)
	})

	for rank, s := range sparseRank {
		s.fused += 1.0 / float64(rrfK+rank+1)
	}
	for rank, s := range denseRank {
		s.fused += 1.0 / float64(rrfK+rank+1)
	}

	results := all[:0]
	for _, s := range all {
		if s.fused > 0 {
			results = append(results, s)
		}
	}
	slices.SortFunc(results, func(a, b *scored) int {
		if c := compareDesc(a.fused, b.fused); c != 0 {
			return c
		}
		if c := compareDesc(a.dense, b.dense); c != 0 {
			return c
		}
		// Stable order for exact ties
		if a.chunk.Id < b.chunk.Id {
			return -1
		}
		if a.chunk.Id > b.chunk.Id {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	hits := make([]index.Hit, len(results))
	for n, s := range results {
		hits[n] = index.Hit{
			Text:       s.chunk.Text,
			Filename:   s.chunk.Filename,
			DocType:    s.chunk.DocType,
			PageNumber: s.chunk.PageNumber,
			Score:      s.fused,
		}
	}

	i.logger.Debug("hybrid search complete",
		"filename", filter.Filename,
		"candidates", len(candidates),
		"hits", len(hits))

	return hits, nil
}

// CountChunks returns the number of indexed chunks for the document. The
// manifest answers without a scan; pre-manifest data falls back to
// counting document index keys.
func (i *Index) CountChunks(ctx context.Context, filter index.Filter) (int, error) {
	if i.store.closed() {
		return 0, index.ErrIndexClosed
	}
	if filter.Filename == "" || filter.DocType == "" {
		return 0, fmt.Errorf("%w: filter requires filename and doc type", index.ErrInvalidQuery)
	}

	doc := docID(filter.Filename, filter.DocType)
	var count int
	err := i.store.view(func(tx *badger.Txn) error {
		manifest, err := readManifest(tx, doc)
		if err != nil {
			return err
		}
		if manifest != nil {
			count = manifest.ChunkCount
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocChunkKey(doc)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// readDocumentChunks loads all chunks of one document via the document
// index.
func (i *Index) readDocumentChunks(filter index.Filter) ([]*core.Chunk, error) {
	doc := docID(filter.Filename, filter.DocType)

	var chunks []*core.Chunk
	err := i.store.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocChunkKey(doc)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = index.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	})

	return chunks, err
}

// readChunk reads a chunk from the transaction.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = index.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}

// readManifest reads a document manifest from the transaction.
func readManifest(tx *badger.Txn, doc core.ID) (*core.DocumentManifest, error) {
	item, err := tx.Get(makeManifestKey(doc))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var manifest *core.DocumentManifest
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		manifest, unmarshalErr = index.UnmarshalManifest(val)
		return unmarshalErr
	})
	return manifest, err
}

// sparseDot computes the dot product of two sparse vectors.
func sparseDot(a, b core.SparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			sum += float64(wa) * float64(wb)
		}
	}
	return sum
}

// cosineSimilarity computes the cosine similarity of two dense vectors.
func cosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var dot, normA, normB float64
	for n := 0; n < minLen; n++ {
		dot += float64(a[n]) * float64(b[n])
		normA += float64(a[n]) * float64(a[n])
		normB += float64(b[n]) * float64(b[n])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func compareDesc(a, b float64) int {
	if a > b {
		return -1
	}
	if a < b {
		return 1
	}
	return 0
}
