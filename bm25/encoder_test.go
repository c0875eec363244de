package bm25

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCorpus = []string{
	"The contract establishes confidentiality obligations for both parties.",
	"Payment of fees is due within thirty days of the invoice date.",
	"The agreement may be terminated for breach of confidentiality.",
	"Penalties apply when settlement obligations are not met on time.",
}

func TestEncoder_Fit(t *testing.T) {
	t.Run("builds vocabulary and statistics", func(t *testing.T) {
		enc := NewEncoder()
		require.False(t, enc.Fitted())

		err := enc.Fit(testCorpus)
		require.NoError(t, err)
		assert.True(t, enc.Fitted())
		assert.Equal(t, len(testCorpus), enc.docCount)
		assert.Greater(t, enc.avgDocLen, 0.0)
		assert.NotEmpty(t, enc.vocab)
		assert.Len(t, enc.idf, len(enc.vocab))
	})

	t.Run("empty corpus", func(t *testing.T) {
		enc := NewEncoder()
		err := enc.Fit(nil)
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})

	t.Run("rare terms get higher idf than common terms", func(t *testing.T) {
		enc := NewEncoder()
		require.NoError(t, enc.Fit(testCorpus))

		// "confidentiality" appears in two documents, "penalties" in one.
		rare, ok := enc.vocab["penalties"]
		require.True(t, ok)
		common, ok := enc.vocab["confidentiality"]
		require.True(t, ok)
		assert.Greater(t, enc.idf[rare], enc.idf[common])
	})

	t.Run("stop words excluded from vocabulary", func(t *testing.T) {
		enc := NewEncoder()
		require.NoError(t, enc.Fit(testCorpus))

		_, hasThe := enc.vocab["the"]
		assert.False(t, hasThe)
		_, hasOf := enc.vocab["of"]
		assert.False(t, hasOf)
	})
}

func TestEncoder_EncodeDocuments(t *testing.T) {
	enc := NewEncoder()
	require.NoError(t, enc.Fit(testCorpus))

	t.Run("produces one vector per text", func(t *testing.T) {
		vectors, err := enc.EncodeDocuments(testCorpus)
		require.NoError(t, err)
		require.Len(t, vectors, len(testCorpus))
		for _, v := range vectors {
			assert.NotEmpty(t, v)
			for _, weight := range v {
				assert.Greater(t, weight, float32(0))
			}
		}
	})

	t.Run("repeated terms weigh more than single occurrences", func(t *testing.T) {
		vectors, err := enc.EncodeDocuments([]string{
			"settlement settlement settlement penalties",
		})
		require.NoError(t, err)
		require.Len(t, vectors, 1)

		settlement := enc.vocab["settlement"]
		penalties := enc.vocab["penalties"]
		assert.Greater(t, vectors[0][settlement], vectors[0][penalties])
	})

	t.Run("unknown terms are dropped", func(t *testing.T) {
		vectors, err := enc.EncodeDocuments([]string{"xylophone zeppelin"})
		require.NoError(t, err)
		require.Len(t, vectors, 1)
		assert.Empty(t, vectors[0])
	})

	t.Run("not fitted", func(t *testing.T) {
		_, err := NewEncoder().EncodeDocuments([]string{"anything"})
		assert.ErrorIs(t, err, ErrNotFitted)
	})
}

func TestEncoder_EncodeQuery(t *testing.T) {
	enc := NewEncoder()
	require.NoError(t, enc.Fit(testCorpus))

	t.Run("weights equal fitted idf", func(t *testing.T) {
		vector, err := enc.EncodeQuery("confidentiality penalties")
		require.NoError(t, err)

		conf := enc.vocab["confidentiality"]
		pen := enc.vocab["penalties"]
		require.Len(t, vector, 2)
		assert.Equal(t, float32(enc.idf[conf]), vector[conf])
		assert.Equal(t, float32(enc.idf[pen]), vector[pen])
	})

	t.Run("out-of-vocabulary query yields empty vector", func(t *testing.T) {
		vector, err := enc.EncodeQuery("xylophone")
		require.NoError(t, err)
		assert.Empty(t, vector)
	})

	t.Run("not fitted", func(t *testing.T) {
		_, err := NewEncoder().EncodeQuery("anything")
		assert.ErrorIs(t, err, ErrNotFitted)
	})
}

func TestEncoder_SaveLoad(t *testing.T) {
	t.Run("round trip preserves encodings", func(t *testing.T) {
		enc := NewEncoder()
		require.NoError(t, enc.Fit(testCorpus))

		path := filepath.Join(t.TempDir(), "model", "bm25_model.json")
		require.NoError(t, enc.Save(path))

		loaded := NewEncoder()
		require.NoError(t, loaded.Load(path))
		assert.True(t, loaded.Fitted())

		want, err := enc.EncodeQuery("settlement obligations")
		require.NoError(t, err)
		got, err := loaded.EncodeQuery("settlement obligations")
		require.NoError(t, err)
		assert.Equal(t, want, got)

		wantDocs, err := enc.EncodeDocuments(testCorpus[:1])
		require.NoError(t, err)
		gotDocs, err := loaded.EncodeDocuments(testCorpus[:1])
		require.NoError(t, err)
		assert.Equal(t, wantDocs, gotDocs)
	})

	t.Run("save unfitted", func(t *testing.T) {
		err := NewEncoder().Save(filepath.Join(t.TempDir(), "m.json"))
		assert.ErrorIs(t, err, ErrNotFitted)
	})

	t.Run("load missing file", func(t *testing.T) {
		err := NewEncoder().Load(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("load rejects malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		err := NewEncoder().Load(path)
		assert.Error(t, err)
	})

	t.Run("load rejects empty model", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"doc_count": 0}`), 0o644))
		err := NewEncoder().Load(path)
		assert.ErrorIs(t, err, ErrInvalidModel)
	})
}

func TestTokenizeAndFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases and trims punctuation", "Hello, World!", []string{"hello", "world"}},
		{"drops stop words", "the contract and the invoice", []string{"contract", "invoice"}},
		{"drops empty tokens", "--- ... (x)", []string{"x"}},
		{"empty input", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenizeAndFilter(tt.input))
		})
	}
}
