package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/ai/mock"
	"github.com/poiesic/veridoc/bm25"
	"github.com/poiesic/veridoc/document"
	"github.com/poiesic/veridoc/index"
	"github.com/poiesic/veridoc/index/badger"
	"github.com/poiesic/veridoc/retry"
)

const contractText = "This agreement binds the brokerage and the client. " +
	"The brokerage holds CNPJ 12.345.678/0001-90.\f" +
	"The parties shall maintain strict confidentiality of all materials " +
	"exchanged during the engagement.\f" +
	"Settlement occurs within two business days of the trade date. " +
	"Annual fees are payable in advance each January."

type pipelineFixture struct {
	index    index.Index
	encoder  *bm25.Encoder
	embedder *mock.MockEmbedder
	provider ai.AIProvider
	docPath  string
	modelDir string
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	idx, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	docPath := filepath.Join(t.TempDir(), "agreement.txt")
	require.NoError(t, os.WriteFile(docPath, []byte(contractText), 0o644))

	embedder := mock.NewMockEmbedder()
	return &pipelineFixture{
		index:    idx,
		encoder:  bm25.NewEncoder(),
		embedder: embedder,
		provider: mock.NewMockProviderWithServices(embedder, mock.NewMockLanguageModel()),
		docPath:  docPath,
		modelDir: t.TempDir(),
	}
}

func (f *pipelineFixture) modelPath() string {
	return filepath.Join(f.modelDir, "bm25_model.json")
}

func (f *pipelineFixture) newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()

	base := []Option{
		WithPoolSize(1),
		WithModelPath(f.modelPath()),
		WithBatchSize(2),
		WithChunking(80, 10),
	}
	pipeline, err := NewPipeline(f.index, f.provider, f.encoder, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline
}

func TestNewPipeline(t *testing.T) {
	f := newPipelineFixture(t)

	t.Run("valid dependencies", func(t *testing.T) {
		pipeline, err := NewPipeline(f.index, f.provider, f.encoder)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewPipeline(nil, f.provider, f.encoder)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(f.index, nil, f.encoder)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("nil encoder", func(t *testing.T) {
		_, err := NewPipeline(f.index, f.provider, nil)
		assert.ErrorIs(t, err, ErrEncoderRequired)
	})

	t.Run("invalid chunking", func(t *testing.T) {
		_, err := NewPipeline(f.index, f.provider, f.encoder, WithChunking(100, 100))
		assert.ErrorIs(t, err, document.ErrInvalidChunking)
	})
}

func TestIndex(t *testing.T) {
	f := newPipelineFixture(t)
	pipeline := f.newPipeline(t)

	result, err := pipeline.Index(context.Background(), f.docPath, "contract", nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "agreement.txt", result.Filename)
	assert.Equal(t, "contract", result.DocType)
	assert.Equal(t, 3, result.TotalPages)
	assert.Greater(t, result.TotalChunks, 3, "short chunk size must split pages")
	assert.Equal(t, result.TotalChunks, result.IndexedChunks)

	count, err := f.index.CountChunks(context.Background(),
		index.Filter{Filename: "agreement.txt", DocType: "contract"})
	require.NoError(t, err)
	assert.Equal(t, result.IndexedChunks, count)

	assert.True(t, f.encoder.Fitted())
	_, err = os.Stat(f.modelPath())
	assert.NoError(t, err, "fitted model must be persisted")

	// Indexed chunks must be retrievable through the hybrid search path.
	sparse, err := f.encoder.EncodeQuery("settlement business days")
	require.NoError(t, err)
	require.NotEmpty(t, sparse)
	dense, err := f.embedder.EmbedText(context.Background(), "settlement business days")
	require.NoError(t, err)

	hits, err := f.index.HybridSearch(context.Background(), sparse, dense,
		index.Filter{Filename: "agreement.txt", DocType: "contract"}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "agreement.txt", hits[0].Filename)
}

func TestIndex_SkipsAlreadyIndexed(t *testing.T) {
	f := newPipelineFixture(t)
	pipeline := f.newPipeline(t)

	first, err := pipeline.Index(context.Background(), f.docPath, "contract", nil)
	require.NoError(t, err)

	_, err = pipeline.Index(context.Background(), f.docPath, "contract", nil)
	assert.ErrorIs(t, err, ErrAlreadyIndexed)

	count, err := f.index.CountChunks(context.Background(),
		index.Filter{Filename: "agreement.txt", DocType: "contract"})
	require.NoError(t, err)
	assert.Equal(t, first.IndexedChunks, count, "skipped run must not change the index")
}

func TestIndex_ForceReindexes(t *testing.T) {
	f := newPipelineFixture(t)
	pipeline := f.newPipeline(t)

	first, err := pipeline.Index(context.Background(), f.docPath, "contract", nil)
	require.NoError(t, err)

	second, err := pipeline.Index(context.Background(), f.docPath, "contract", &IndexOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, first.IndexedChunks, second.IndexedChunks)

	// Content-based chunk ids make a forced rerun overwrite in place.
	count, err := f.index.CountChunks(context.Background(),
		index.Filter{Filename: "agreement.txt", DocType: "contract"})
	require.NoError(t, err)
	assert.Equal(t, first.IndexedChunks, count)
}

func TestIndex_MissingDocument(t *testing.T) {
	f := newPipelineFixture(t)
	pipeline := f.newPipeline(t)

	_, err := pipeline.Index(context.Background(), filepath.Join(t.TempDir(), "ghost.txt"), "contract", nil)
	assert.ErrorIs(t, err, document.ErrDocumentNotFound)
}

func TestIndex_BlankDocument(t *testing.T) {
	f := newPipelineFixture(t)
	pipeline := f.newPipeline(t)

	blank := filepath.Join(t.TempDir(), "blank.txt")
	require.NoError(t, os.WriteFile(blank, []byte("   \f\n\f  "), 0o644))

	_, err := pipeline.Index(context.Background(), blank, "contract", nil)
	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestIndex_EmbeddingFailureLeavesIndexEmpty(t *testing.T) {
	f := newPipelineFixture(t)
	f.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service unavailable")
	}
	pipeline := f.newPipeline(t, WithRetryPolicy(retry.Policy{MaxAttempts: 1}))

	_, err := pipeline.Index(context.Background(), f.docPath, "contract", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service unavailable")

	count, err := f.index.CountChunks(context.Background(),
		index.Filter{Filename: "agreement.txt", DocType: "contract"})
	require.NoError(t, err)
	assert.Zero(t, count, "failed embedding must not leave partial documents")
}

func TestIndex_RetriesEmbedding(t *testing.T) {
	f := newPipelineFixture(t)

	failures := 1
	f.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("transient failure")
		}
		embeddings := make([][]float32, len(texts))
		for n := range texts {
			embeddings[n] = []float32{1, 0, 0}
		}
		return embeddings, nil
	}
	pipeline := f.newPipeline(t, WithRetryPolicy(retry.Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
	}))

	result, err := pipeline.Index(context.Background(), f.docPath, "contract", nil)
	require.NoError(t, err)
	assert.Zero(t, failures, "first embedding attempt must have failed")
	assert.Positive(t, result.IndexedChunks)
}

func TestIndex_ReusesPersistedModel(t *testing.T) {
	f := newPipelineFixture(t)
	pipeline := f.newPipeline(t)

	_, err := pipeline.Index(context.Background(), f.docPath, "contract", nil)
	require.NoError(t, err)

	// A second document indexed through a fresh encoder must reuse the
	// persisted model rather than refit, keeping term ids stable.
	otherPath := filepath.Join(t.TempDir(), "addendum.txt")
	require.NoError(t, os.WriteFile(otherPath,
		[]byte("Addendum extending the original engagement terms."), 0o644))

	freshEncoder := bm25.NewEncoder()
	second, err := NewPipeline(f.index, f.provider, freshEncoder,
		WithPoolSize(1), WithModelPath(f.modelPath()), WithChunking(80, 10))
	require.NoError(t, err)
	t.Cleanup(second.Release)

	_, err = second.Index(context.Background(), otherPath, "addendum", nil)
	require.NoError(t, err)

	require.True(t, freshEncoder.Fitted())
	sparse, err := freshEncoder.EncodeQuery("confidentiality")
	require.NoError(t, err)
	assert.NotEmpty(t, sparse, "vocabulary fitted on the first document must survive")

	sparse, err = freshEncoder.EncodeQuery("addendum")
	require.NoError(t, err)
	assert.Empty(t, sparse, "terms unseen at fit time stay out of the vocabulary")
}

func TestIndex_ProgressOutput(t *testing.T) {
	f := newPipelineFixture(t)

	var buf bytes.Buffer
	pipeline := f.newPipeline(t, WithProgress(&buf))

	result, err := pipeline.Index(context.Background(), f.docPath, "contract", nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Embedding:")
	assert.Contains(t, out, "(100.0%)")
	assert.Contains(t, out, "chunks/s")
	assert.Contains(t, out, "/"+strconv.Itoa(result.TotalChunks)+" chunks")
}

func TestTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker(&buf, 10, 1)

	tracker.Increment(5)
	tracker.Finish()
	assert.Empty(t, buf.String(), "tracker must stay silent before Start")
}

func TestTracker_NilWriter(t *testing.T) {
	tracker := NewTracker(nil, 4, 1)
	tracker.Start()
	tracker.Increment(4)
	tracker.Finish()
}
