package document

import (
	"fmt"
	"strings"

	"github.com/poiesic/veridoc/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the character overlap between adjacent chunks.
	DefaultChunkOverlap = 100
)

// defaultSeparators splits on structure first and only falls back to
// mid-sentence cuts for pathological runs of text.
var defaultSeparators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

// Chunker splits raw documents into indexable passages. Each page is split
// independently so every chunk carries an unambiguous page number.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	splitter     textsplitter.RecursiveCharacter
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) error {
		if size < 1 {
			return fmt.Errorf("%w: chunk size %d", ErrInvalidChunking, size)
		}
		c.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks.
func WithChunkOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return fmt.Errorf("%w: chunk overlap %d", ErrInvalidChunking, overlap)
		}
		c.chunkOverlap = overlap
		return nil
	}
}

// NewChunker creates a chunker with the default size, overlap, and
// separator ladder.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.chunkOverlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			ErrInvalidChunking, c.chunkOverlap, c.chunkSize)
	}

	c.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.chunkSize),
		textsplitter.WithChunkOverlap(c.chunkOverlap),
		textsplitter.WithSeparators(defaultSeparators),
	)

	return c, nil
}

// ChunkDocument splits every page of doc into passages tagged with the
// document's filename, the given type, and their source page. Chunk indexes
// and the total count are assigned across the whole document. Embeddings
// are left empty for the indexing pipeline to fill.
func (c *Chunker) ChunkDocument(doc core.RawDocument, docType string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk

	for _, page := range doc.Pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}

		pieces, err := c.splitter.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split page %d: %w", page.Number, err)
		}

		for _, piece := range pieces {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			chunks = append(chunks, &core.Chunk{
				Text:       piece,
				Filename:   doc.Filename,
				DocType:    docType,
				PageNumber: page.Number,
			})
		}
	}

	for n, chunk := range chunks {
		chunk.ChunkIndex = n
		chunk.TotalChunks = len(chunks)
	}

	return chunks, nil
}
