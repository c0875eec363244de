package config

import "errors"

var (
	// ErrUnknownBackend indicates an index backend name that is neither
	// badger nor milvus.
	ErrUnknownBackend = errors.New("unknown index backend")

	// ErrUnknownProvider indicates an AI provider name that is neither
	// openai nor gemini.
	ErrUnknownProvider = errors.New("unknown ai provider")

	// ErrConfidenceRange indicates a confidence outside [0, 1].
	ErrConfidenceRange = errors.New("confidence out of range")

	// ErrInvalidDocument indicates a documents entry missing required
	// fields.
	ErrInvalidDocument = errors.New("invalid document entry")
)
