package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// defaultDim matches the embedding width of the default local model.
const defaultDim = 384

// MockEmbedder implements ai.Embedder for tests. Behavior is injected
// through the function fields; when they are nil every text embeds to a
// deterministic unit vector derived from its content.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
	texts     []string
}

// NewMockEmbedder returns an embedder with the deterministic default
// behavior. The concrete type is returned so tests can reach the
// recorder methods.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText records the text and returns the injected or derived vector.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++
	m.texts = append(m.texts, text)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return deterministicVector(text), nil
}

// EmbedTexts records the batch and embeds each text individually.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++
	m.texts = append(m.texts, texts...)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = deterministicVector(text)
	}
	return embeddings, nil
}

// CallCount reports how many embedding calls were made, counting a batch
// as one call.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Texts returns every text passed for embedding, in call order. Batch
// calls contribute their texts individually.
func (m *MockEmbedder) Texts() []string {
	return m.texts
}

// Reset clears the recorders and injected functions.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.texts = nil
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// deterministicVector derives a unit vector from the text so that equal
// texts always embed identically and unequal texts almost never do.
func deterministicVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	vector := make([]float32, defaultDim)
	var sumSquares float64
	for i := range vector {
		// xorshift64 keeps successive components decorrelated
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		component := float64(state%2000)/1000.0 - 1.0
		vector[i] = float32(component)
		sumSquares += component * component
	}

	if sumSquares > 0 {
		norm := float32(math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector
}
