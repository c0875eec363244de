package document

import "errors"

var (
	// ErrDocumentNotFound indicates the document path does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrExtractionFailed indicates the document exists but its content
	// could not be read as text.
	ErrExtractionFailed = errors.New("document extraction failed")

	// ErrInvalidChunking indicates a chunk size/overlap configuration that
	// cannot produce valid chunks.
	ErrInvalidChunking = errors.New("invalid chunking configuration")
)
