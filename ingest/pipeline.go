package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/bm25"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/document"
	"github.com/poiesic/veridoc/index"
	"github.com/poiesic/veridoc/retry"
)

// DefaultBatchSize is the number of chunks embedded per request and
// inserted per index write.
const DefaultBatchSize = 10

// Pipeline turns source documents into fully embedded, indexed chunks.
// It extracts page-tagged text, splits it, encodes sparse vectors with
// the shared BM25 model, embeds dense vectors in concurrent batches, and
// writes the result to the chunk index.
type Pipeline struct {
	index     index.Index
	embedder  ai.Embedder
	encoder   *bm25.Encoder
	extractor document.Extractor
	chunker   *document.Chunker

	chunkSize    int
	chunkOverlap int
	modelPath    string
	batchSize    int
	retry        retry.Policy
	progress     io.Writer
	pool         *ants.Pool
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per request and
// inserted per index write. Values below 1 fall back to 1.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithChunking overrides the chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithExtractor sets the raw document extractor. A nil extractor
// restores the plain-text default.
func WithExtractor(extractor document.Extractor) Option {
	return func(p *Pipeline) error {
		if extractor == nil {
			extractor = document.NewTextExtractor()
		}
		p.extractor = extractor
		return nil
	}
}

// WithModelPath sets where the fitted BM25 model is persisted. An empty
// path disables persistence.
func WithModelPath(path string) Option {
	return func(p *Pipeline) error {
		p.modelPath = path
		return nil
	}
}

// WithRetryPolicy sets the backoff schedule for embedding requests.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(p *Pipeline) error {
		p.retry = policy
		return nil
	}
}

// WithProgress directs progress output to w, typically os.Stderr.
// Default is no progress output.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// NewPipeline creates an indexing pipeline over the given chunk index,
// AI provider, and sparse encoder.
func NewPipeline(idx index.Index, provider ai.AIProvider, encoder *bm25.Encoder, opts ...Option) (*Pipeline, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if encoder == nil {
		return nil, ErrEncoderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:        idx,
		embedder:     provider.Embedder(),
		encoder:      encoder,
		extractor:    document.NewTextExtractor(),
		chunkSize:    document.DefaultChunkSize,
		chunkOverlap: document.DefaultChunkOverlap,
		modelPath:    bm25.DefaultModelPath,
		batchSize:    DefaultBatchSize,
		retry:        retry.DefaultPolicy(),
		pool:         pool,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// The chunker is built after options so overrides take effect.
	chunker, err := document.NewChunker(
		document.WithChunkSize(p.chunkSize),
		document.WithChunkOverlap(p.chunkOverlap),
	)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.chunker = chunker

	return p, nil
}

// IndexOptions holds optional parameters for one indexing run.
type IndexOptions struct {
	// Force reindexes the document even when the index already holds
	// chunks for it.
	Force bool
}

// Result summarizes one indexing run.
type Result struct {
	Filename      string
	DocType       string
	TotalPages    int
	TotalChunks   int
	IndexedChunks int
}

// Index extracts, chunks, embeds, and indexes the document at path.
// Unless forced, a document that already has indexed chunks is left
// alone and ErrAlreadyIndexed is returned.
func (p *Pipeline) Index(ctx context.Context, path, docType string, opts *IndexOptions) (*Result, error) {
	if opts == nil {
		opts = &IndexOptions{}
	}

	filename := filepath.Base(path)
	filter := index.Filter{Filename: filename, DocType: docType}

	if !opts.Force {
		count, err := p.index.CountChunks(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to check for existing chunks: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: %s (%d chunks)", ErrAlreadyIndexed, filename, count)
		}
	}

	raw, err := p.extractor.ExtractFullText(path)
	if err != nil {
		return nil, err
	}

	chunks, err := p.chunker.ChunkDocument(raw, docType)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, filename)
	}
	p.logger.Info("document chunked",
		"file", filename, "doc_type", docType,
		"pages", raw.TotalPages, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for n, chunk := range chunks {
		texts[n] = chunk.Text
	}

	if err := p.ensureEncoder(texts); err != nil {
		return nil, err
	}
	sparse, err := p.encoder.EncodeDocuments(texts)
	if err != nil {
		return nil, err
	}
	for n, vector := range sparse {
		if len(vector) == 0 {
			// Sparse rows must not be empty at insert time.
			vector = core.SparseVector{0: 0.0001}
		}
		chunks[n].Sparse = vector
	}

	if err := p.embedChunks(ctx, chunks, texts); err != nil {
		return nil, err
	}

	if err := p.insertChunks(ctx, chunks); err != nil {
		return nil, err
	}

	p.logger.Info("document indexed", "file", filename, "chunks", len(chunks))
	return &Result{
		Filename:      filename,
		DocType:       docType,
		TotalPages:    raw.TotalPages,
		TotalChunks:   len(chunks),
		IndexedChunks: len(chunks),
	}, nil
}

// ensureEncoder makes the sparse encoder usable: an already fitted
// encoder is reused, then a persisted model is loaded, and only then is
// a fresh model fitted on this document's chunks and persisted. One
// shared model keeps term ids stable across every document in the
// index.
func (p *Pipeline) ensureEncoder(texts []string) error {
	if p.encoder.Fitted() {
		return nil
	}

	if p.modelPath != "" {
		err := p.encoder.Load(p.modelPath)
		if err == nil {
			p.logger.Info("loaded sparse model", "path", p.modelPath)
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("failed to load sparse model, refitting", "path", p.modelPath, "err", err)
		}
	}

	if err := p.encoder.Fit(texts); err != nil {
		return fmt.Errorf("failed to fit sparse encoder: %w", err)
	}
	p.logger.Info("fitted sparse model", "corpus_chunks", len(texts))

	if p.modelPath == "" {
		return nil
	}
	if err := p.encoder.Save(p.modelPath); err != nil {
		return fmt.Errorf("failed to save sparse model: %w", err)
	}
	return nil
}

// embedChunks fills chunk dense vectors, one batch per pool task.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.Chunk, texts []string) error {
	tracker := NewTracker(p.progress, len(chunks), p.batchSize)
	tracker.Start()

	batches := (len(chunks) + p.batchSize - 1) / p.batchSize
	errs := make([]error, batches)

	var wg sync.WaitGroup
	for start := 0; start < len(chunks); start += p.batchSize {
		start := start
		end := min(start+p.batchSize, len(chunks))
		slot := start / p.batchSize

		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			errs[slot] = p.embedBatch(ctx, chunks[start:end], texts[start:end])
			if errs[slot] == nil {
				tracker.Increment(end - start)
			}
		}); err != nil {
			wg.Done()
			errs[slot] = err
		}
	}
	wg.Wait()
	tracker.Finish()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("embedding failed: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) embedBatch(ctx context.Context, chunks []*core.Chunk, texts []string) error {
	var embeddings [][]float32
	err := p.retry.Do(ctx, func() error {
		var embedErr error
		embeddings, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	})
	if err != nil {
		return err
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for n := range chunks {
		chunks[n].Dense = embeddings[n]
	}
	return nil
}

// insertChunks writes the embedded chunks in small batches to keep
// individual index transactions bounded.
func (p *Pipeline) insertChunks(ctx context.Context, chunks []*core.Chunk) error {
	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		if err := p.index.InsertChunks(ctx, chunks[start:end]); err != nil {
			return fmt.Errorf("failed to insert chunks: %w", err)
		}
	}
	return nil
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
