package index

import (
	"testing"
	"time"

	"github.com/poiesic/veridoc/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("chunk text")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "minimal chunk",
			chunk: &core.Chunk{
				Id:         core.ID(1),
				Text:       "Payment is due in thirty days.",
				Filename:   "contract.pdf",
				DocType:    "contract",
				PageNumber: 1,
			},
		},
		{
			name: "chunk with embeddings",
			chunk: &core.Chunk{
				Id:          core.IDFromContent("clause 4.2"),
				Text:        "Clause 4.2 covers settlement.",
				Filename:    "agreement.pdf",
				DocType:     "agreement",
				PageNumber:  7,
				ChunkIndex:  12,
				TotalChunks: 40,
				Dense:       []float32{0.1, -0.2, 0.3, 0.4},
				Sparse:      core.SparseVector{3: 1.5, 17: 0.25, 901: 2.75},
			},
		},
		{
			name: "unicode text",
			chunk: &core.Chunk{
				Id:         core.ID(9),
				Text:       "Cláusula 12ª de confidencialidade, São Paulo 企業",
				Filename:   "contrato.pdf",
				DocType:    "contract",
				PageNumber: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.Text, decoded.Text)
			assert.Equal(t, tt.chunk.Filename, decoded.Filename)
			assert.Equal(t, tt.chunk.DocType, decoded.DocType)
			assert.Equal(t, tt.chunk.PageNumber, decoded.PageNumber)
			assert.Equal(t, tt.chunk.ChunkIndex, decoded.ChunkIndex)
			assert.Equal(t, tt.chunk.TotalChunks, decoded.TotalChunks)

			if len(tt.chunk.Dense) == 0 {
				assert.Empty(t, decoded.Dense)
			} else {
				assert.Equal(t, tt.chunk.Dense, decoded.Dense)
			}
			if len(tt.chunk.Sparse) == 0 {
				assert.Empty(t, decoded.Sparse)
			} else {
				assert.Equal(t, tt.chunk.Sparse, decoded.Sparse)
			}
		})
	}
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated data", MarshalChunk(&core.Chunk{
			Id:       core.ID(5),
			Text:     "some chunk text that will be cut off",
			Filename: "f.pdf",
			DocType:  "report",
		})[:4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalChunk(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	indexed := time.Now().UTC().Truncate(time.Microsecond)

	manifest := &core.DocumentManifest{
		Filename:   "contract.pdf",
		DocType:    "contract",
		ChunkCount: 87,
		IndexedAt:  indexed,
	}

	data := MarshalManifest(manifest)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalManifest(data)
	require.NoError(t, err)
	assert.Equal(t, manifest.Filename, decoded.Filename)
	assert.Equal(t, manifest.DocType, decoded.DocType)
	assert.Equal(t, manifest.ChunkCount, decoded.ChunkCount)
	assert.True(t, manifest.IndexedAt.Equal(decoded.IndexedAt))
}
