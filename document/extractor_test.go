package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/veridoc/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestDocument(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTextExtractor_ExtractFullText(t *testing.T) {
	content := "First page text.\fSecond page text.\f\f   \fFifth page text."
	path := writeTestDocument(t, "contract.txt", content)

	doc, err := NewTextExtractor().ExtractFullText(path)
	require.NoError(t, err)

	assert.Equal(t, "contract.txt", doc.Filename)
	assert.Equal(t, 3, doc.TotalPages)
	require.Len(t, doc.Pages, 3)

	// Blank pages are skipped but numbering stays positional.
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, "First page text.", doc.Pages[0].Text)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, 5, doc.Pages[2].Number)
	assert.Equal(t, "Fifth page text.", doc.Pages[2].Text)

	wantChars := len("First page text.") + len("Second page text.") + len("Fifth page text.")
	assert.Equal(t, wantChars, doc.TotalChars)
}

func TestTextExtractor_SinglePage(t *testing.T) {
	path := writeTestDocument(t, "note.txt", "No form feeds here at all.")

	doc, err := NewTextExtractor().ExtractFullText(path)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.TotalPages)
	assert.Equal(t, 1, doc.Pages[0].Number)
}

func TestTextExtractor_MissingFile(t *testing.T) {
	_, err := NewTextExtractor().ExtractFullText(filepath.Join(t.TempDir(), "absent.txt"))
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestTextExtractor_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x01, 0x80}, 0o644))

	_, err := NewTextExtractor().ExtractFullText(path)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestLLMSegments(t *testing.T) {
	page := func(number int) core.Page {
		return core.Page{Number: number, Text: strings.Repeat("a", 100)}
	}
	doc := core.RawDocument{
		Filename:   "big.txt",
		Pages:      []core.Page{page(1), page(2), page(3)},
		TotalPages: 3,
		TotalChars: 300,
	}

	t.Run("fits in one segment", func(t *testing.T) {
		segments := LLMSegments(doc, 100)
		require.Len(t, segments, 1)

		assert.Equal(t, 1, segments[0].StartPage)
		assert.Equal(t, 3, segments[0].EndPage)
		assert.Equal(t, 75, segments[0].EstimatedTokens)
		assert.Contains(t, segments[0].Text, "[Page 1]\n")
		assert.Contains(t, segments[0].Text, "[Page 3]\n")
	})

	t.Run("splits on page boundaries", func(t *testing.T) {
		segments := LLMSegments(doc, 40)
		require.Len(t, segments, 3)

		for n, segment := range segments {
			assert.Equal(t, n+1, segment.StartPage)
			assert.Equal(t, n+1, segment.EndPage)
			assert.Contains(t, segment.Text, "[Page")
		}
	})

	t.Run("oversized single page kept whole", func(t *testing.T) {
		single := core.RawDocument{
			Pages:      []core.Page{{Number: 1, Text: strings.Repeat("b", 500)}},
			TotalPages: 1,
			TotalChars: 500,
		}
		segments := LLMSegments(single, 10)
		require.Len(t, segments, 1)
		assert.Equal(t, 1, segments[0].StartPage)
	})

	t.Run("empty document", func(t *testing.T) {
		assert.Empty(t, LLMSegments(core.RawDocument{}, 100))
	})
}
