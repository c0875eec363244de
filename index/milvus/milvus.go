// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package milvus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/index"
)

// Defaults for a local Milvus standalone deployment.
const (
	DefaultURI        = "http://127.0.0.1:19530"
	DefaultCollection = "audit_docs_v3"
	DefaultDenseDim   = 1024
	DefaultTimeout    = 30 * time.Second
)

// Config holds connection settings for a Milvus chunk index.
type Config struct {
	URI        string
	Collection string
	DenseDim   int
	Timeout    time.Duration
}

// DefaultConfig returns settings for a local standalone Milvus.
func DefaultConfig() Config {
	return Config{
		URI:        DefaultURI,
		Collection: DefaultCollection,
		DenseDim:   DefaultDenseDim,
		Timeout:    DefaultTimeout,
	}
}

func (c *Config) normalize() {
	if c.URI == "" {
		c.URI = DefaultURI
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.DenseDim <= 0 {
		c.DenseDim = DefaultDenseDim
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Index implements index.Index against a Milvus v2 REST endpoint. Hybrid
// search runs server-side: one sparse and one dense request fused with
// reciprocal rank fusion by the server.
type Index struct {
	config Config
	client *restClient
	logger *slog.Logger

	mu    sync.Mutex
	ready bool
}

var _ index.Index = (*Index)(nil)

// NewIndex creates a Milvus-backed chunk index. The collection is created
// lazily on first insert; searches against a missing collection surface
// the server's error.
func NewIndex(config Config) (index.Index, error) {
	config.normalize()
	return &Index{
		config: config,
		client: newRESTClient(config.URI, &http.Client{Timeout: config.Timeout}),
		logger: slog.Default().With("component", "milvus-index"),
	}, nil
}

// Close releases idle connections. The Milvus REST API is stateless, so
// there is no session to tear down.
func (i *Index) Close() error {
	i.client.http.CloseIdleConnections()
	return nil
}

// EnsureCollection creates the chunk collection when it does not exist.
// Safe to call repeatedly.
func (i *Index) EnsureCollection(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ready {
		return nil
	}

	var has hasCollectionResponse
	err := i.client.post(ctx, hasCollectionPath,
		hasCollectionRequest{CollectionName: i.config.Collection}, &has)
	if err != nil {
		return err
	}

	if !has.Has {
		i.logger.Info("creating collection",
			"collection", i.config.Collection,
			"dense_dim", i.config.DenseDim)
		err = i.client.post(ctx, createCollectionPath, createCollectionRequest{
			CollectionName: i.config.Collection,
			Schema:         chunkSchema(i.config.DenseDim),
			IndexParams:    chunkIndexParams(),
		}, nil)
		if err != nil {
			return err
		}
	}

	i.ready = true
	return nil
}

// InsertChunks writes fully embedded chunks. Chunks with Id=0 get
// content-based IDs so re-ingestion upserts instead of duplicating.
func (i *Index) InsertChunks(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}
	if err := i.EnsureCollection(ctx); err != nil {
		return err
	}

	rows := make([]map[string]any, len(chunks))
	for n, chunk := range chunks {
		if chunk.Id == 0 {
			chunk.Id = index.ContentID(chunk)
		}
		sparse := chunk.Sparse
		if len(sparse) == 0 {
			// Milvus rejects empty sparse vectors
			sparse = core.SparseVector{0: 0.0001}
		}
		rows[n] = map[string]any{
			fieldID:          int64(chunk.Id),
			fieldText:        chunk.Text,
			fieldFilename:    chunk.Filename,
			fieldDocType:     chunk.DocType,
			fieldPageNumber:  chunk.PageNumber,
			fieldChunkIndex:  chunk.ChunkIndex,
			fieldTotalChunks: chunk.TotalChunks,
			fieldDense:       chunk.Dense,
			fieldSparse:      sparse,
		}
	}

	return i.client.post(ctx, insertPath, insertRequest{
		CollectionName: i.config.Collection,
		Data:           rows,
	}, nil)
}

// HybridSearch issues a two-vector fused search restricted to one
// document. Newer servers answer on advanced_search; older ones only know
// hybrid_search, so a missing route falls back once.
func (i *Index) HybridSearch(ctx context.Context, sparse core.SparseVector, dense []float32, filter index.Filter, limit int) ([]index.Hit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", index.ErrInvalidQuery)
	}
	if filter.Filename == "" || filter.DocType == "" {
		return nil, fmt.Errorf("%w: filter requires filename and doc type", index.ErrInvalidQuery)
	}
	if len(sparse) == 0 {
		sparse = core.SparseVector{0: 0.0001}
	}

	expr := documentFilter(filter.Filename, filter.DocType)
	request := searchRequest{
		CollectionName: i.config.Collection,
		Search: []subSearch{
			{Data: []any{sparse}, AnnsField: fieldSparse, Limit: limit, Filter: expr},
			{Data: []any{dense}, AnnsField: fieldDense, Limit: limit, Filter: expr},
		},
		Rerank: rerank{
			Strategy: "rrf",
			Params:   map[string]any{"k": 60},
		},
		Limit:        limit,
		OutputFields: []string{fieldText, fieldFilename, fieldDocType, fieldPageNumber},
	}

	var rows []searchRow
	err := i.client.post(ctx, advancedSearchPath, request, &rows)
	if errors.Is(err, errEndpointUnsupported) {
		i.logger.Debug("advanced_search unsupported, falling back", "path", hybridSearchPath)
		rows = nil
		err = i.client.post(ctx, hybridSearchPath, request, &rows)
	}
	if err != nil {
		return nil, err
	}

	hits := make([]index.Hit, len(rows))
	for n, row := range rows {
		hits[n] = index.Hit{
			Text:       row.Text,
			Filename:   row.Filename,
			DocType:    row.DocType,
			PageNumber: row.PageNumber,
			Score:      row.Distance,
		}
	}
	return hits, nil
}

// CountChunks asks the server for count(*) under the document filter.
// A missing collection counts as zero.
func (i *Index) CountChunks(ctx context.Context, filter index.Filter) (int, error) {
	if filter.Filename == "" || filter.DocType == "" {
		return 0, fmt.Errorf("%w: filter requires filename and doc type", index.ErrInvalidQuery)
	}

	var has hasCollectionResponse
	err := i.client.post(ctx, hasCollectionPath,
		hasCollectionRequest{CollectionName: i.config.Collection}, &has)
	if err != nil {
		return 0, err
	}
	if !has.Has {
		return 0, nil
	}

	var rows []countRow
	err = i.client.post(ctx, queryPath, queryRequest{
		CollectionName: i.config.Collection,
		Filter:         documentFilter(filter.Filename, filter.DocType),
		OutputFields:   []string{"count(*)"},
	}, &rows)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return int(rows[0].Count), nil
}
