package gemini

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// Embedder generates embeddings through the Gemini embedding API.
//
// Gemini embeddings are asymmetric: EmbedText is used for retrieval queries
// and tags requests with the retrieval-query task type, while EmbedTexts is
// used when indexing documents and tags them as retrieval documents. This
// matches how the rest of the system calls the two methods.
type Embedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func newEmbedder(client *genai.Client, model string, timeout time.Duration) *Embedder {
	return &Embedder{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  slog.Default().With("component", "gemini-embedder"),
	}
}

// EmbedText generates a retrieval-query embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentRequest{
			TaskType: genai.TaskTypeRetrievalQuery,
		},
	)
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(result.Embeddings) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}

	return result.Embeddings[0].Values, nil
}

// EmbedTexts generates retrieval-document embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentRequest{
			TaskType: genai.TaskTypeRetrievalDocument,
		},
	)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}

	return embeddings, nil
}
