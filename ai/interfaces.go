package ai

import "context"

// Embedder turns text into dense vectors for semantic search.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText embeds a single string. Search queries go through this
	// path, so providers that distinguish query and document embeddings
	// treat the input as a query.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch of strings, returning vectors in input
	// order. Document chunks are embedded through this path.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LanguageModel produces text completions for prompts.
// Implementations must be thread-safe for concurrent use; calls block until
// the model responds or the context is canceled.
type LanguageModel interface {
	// Generate sends a prompt to the model and returns its raw text response.
	// Callers own prompt construction and response parsing.
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIProvider bundles the embedding and generation services behind one
// constructor so they share configuration and shut down together.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// LanguageModel returns the text generation service.
	LanguageModel() LanguageModel

	// Close releases the provider and its services. Neither may be used
	// afterwards.
	Close() error
}
