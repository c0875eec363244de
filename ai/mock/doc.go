// Package mock provides in-memory stand-ins for the ai package interfaces.
//
// MockEmbedder, MockLanguageModel, and MockProvider let tests exercise
// code that talks to AI services without a server. Defaults are
// deterministic; function fields inject failures or canned responses
// per test.
//
// # Usage in Tests
//
//	// Default behavior
//	provider := mock.NewMockProvider()
//	embedding, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Injected behavior
//	model := mock.NewMockLanguageModel()
//	model.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return `{"status": "PRESENT", "evidence": "Clause 7.1", "confidence": 0.9, "relevant_pages": [3]}`, nil
//	}
//
//	// Recorded calls
//	count := model.CallCount()
//	last := model.LastPrompt()
//
// # Default Behavior
//
//   - MockEmbedder derives a deterministic unit vector from each text.
//   - MockLanguageModel answers with a fixed parseable ABSENT verdict.
//   - MockProvider bundles fresh instances of both.
package mock
