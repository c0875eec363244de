package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/veridoc/core"
)

// charsPerToken is a conservative character-per-token estimate used for
// prompt budgeting.
const charsPerToken = 4

// Extractor reads the full raw text of a document, page by page, for
// possible-answer generation.
type Extractor interface {
	// ExtractFullText extracts all text from the document at path,
	// preserving page structure. A missing file yields
	// ErrDocumentNotFound; unreadable content yields ErrExtractionFailed.
	ExtractFullText(path string) (core.RawDocument, error)
}

// TextExtractor reads plain-text documents. Pages are separated by form
// feed characters (\f), the convention used by text dumps of paginated
// documents; page numbers are positional and 1-based, and blank pages are
// skipped without renumbering the rest.
type TextExtractor struct{}

// NewTextExtractor creates a plain-text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractFullText implements Extractor.
func (e *TextExtractor) ExtractFullText(path string) (core.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.RawDocument{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return core.RawDocument{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	if !utf8.Valid(data) {
		return core.RawDocument{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrExtractionFailed, filepath.Base(path))
	}

	doc := core.RawDocument{Filename: filepath.Base(path)}
	for n, text := range strings.Split(string(data), "\f") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		doc.Pages = append(doc.Pages, core.Page{Number: n + 1, Text: text})
		doc.TotalChars += len(text)
	}
	doc.TotalPages = len(doc.Pages)

	return doc, nil
}

// Segment is a page-aligned slice of a raw document sized to fit a model's
// context budget.
type Segment struct {
	Text            string
	StartPage       int
	EndPage         int
	EstimatedTokens int
}

// LLMSegments splits a raw document into page-aligned segments of at most
// maxTokens (estimated at 4 characters per token). A document that fits the
// budget comes back as a single segment. A single page larger than the
// budget still becomes its own oversized segment; pages are never split.
func LLMSegments(doc core.RawDocument, maxTokens int) []Segment {
	if len(doc.Pages) == 0 {
		return nil
	}

	maxChars := maxTokens * charsPerToken

	if doc.TotalChars <= maxChars {
		return []Segment{{
			Text:            formatPages(doc.Pages),
			StartPage:       doc.Pages[0].Number,
			EndPage:         doc.Pages[len(doc.Pages)-1].Number,
			EstimatedTokens: doc.TotalChars / charsPerToken,
		}}
	}

	var segments []Segment
	var current []core.Page
	currentChars := 0

	for _, page := range doc.Pages {
		pageChars := len(page.Text) + len(fmt.Sprintf("[Page %d]\n", page.Number)) + 2

		if currentChars+pageChars > maxChars && len(current) > 0 {
			segments = append(segments, newSegment(current))
			current = nil
			currentChars = 0
		}

		current = append(current, page)
		currentChars += pageChars
	}

	if len(current) > 0 {
		segments = append(segments, newSegment(current))
	}

	return segments
}

func newSegment(pages []core.Page) Segment {
	text := formatPages(pages)
	return Segment{
		Text:            text,
		StartPage:       pages[0].Number,
		EndPage:         pages[len(pages)-1].Number,
		EstimatedTokens: len(text) / charsPerToken,
	}
}

func formatPages(pages []core.Page) string {
	parts := make([]string, len(pages))
	for n, page := range pages {
		parts[n] = fmt.Sprintf("[Page %d]\n%s", page.Number, page.Text)
	}
	return strings.Join(parts, "\n\n")
}
