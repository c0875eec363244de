package bm25

import "errors"

var (
	// ErrNotFitted indicates the encoder was used before Fit or Load.
	ErrNotFitted = errors.New("bm25 encoder is not fitted")

	// ErrEmptyCorpus indicates Fit was called with no documents.
	ErrEmptyCorpus = errors.New("corpus must contain at least one document")

	// ErrInvalidModel indicates a persisted model file failed validation.
	ErrInvalidModel = errors.New("invalid bm25 model file")
)
