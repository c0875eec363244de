package mock

import (
	"context"
)

// defaultResponse is a parseable verdict so evaluator-shaped tests degrade
// predictably when no GenerateFunc is injected.
const defaultResponse = `{"status": "ABSENT", "evidence": "Could not determine", "confidence": 0.5, "relevant_pages": []}`

// MockLanguageModel implements ai.LanguageModel for tests. Responses are
// injected through GenerateFunc; when it is nil, Generate answers with a
// fixed parseable verdict.
type MockLanguageModel struct {
	// GenerateFunc overrides Generate when set.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	callCount int
	prompts   []string
}

// NewMockLanguageModel returns a model with the default canned response.
// The concrete type is returned so tests can reach the recorder methods.
func NewMockLanguageModel() *MockLanguageModel {
	return &MockLanguageModel{}
}

// Generate records the prompt and returns the injected or default response.
func (m *MockLanguageModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	return defaultResponse, nil
}

// CallCount reports how many Generate calls were made.
func (m *MockLanguageModel) CallCount() int {
	return m.callCount
}

// Prompts returns every prompt passed to Generate, in call order.
// Tests use this to assert on prompt construction.
func (m *MockLanguageModel) Prompts() []string {
	return m.prompts
}

// LastPrompt returns the most recent prompt, or empty when none were made.
func (m *MockLanguageModel) LastPrompt() string {
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears the recorders and injected function.
func (m *MockLanguageModel) Reset() {
	m.callCount = 0
	m.prompts = nil
	m.GenerateFunc = nil
}
