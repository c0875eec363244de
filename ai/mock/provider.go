// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/veridoc/ai"

// MockProvider bundles MockEmbedder and MockLanguageModel behind the
// ai.AIProvider interface.
type MockProvider struct {
	embedder  *MockEmbedder
	generator *MockLanguageModel
}

// NewMockProvider returns a provider wired with fresh default mocks.
// Use GetMockEmbedder and GetMockLanguageModel to reach the concrete
// types when a test needs call counts or injected behavior.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		generator: NewMockLanguageModel(),
	}
}

// NewMockProviderWithServices returns a provider around mocks the test
// constructed itself.
func NewMockProviderWithServices(embedder *MockEmbedder, generator *MockLanguageModel) ai.AIProvider {
	return &MockProvider{
		embedder:  embedder,
		generator: generator,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// LanguageModel returns the mock language model.
func (p *MockProvider) LanguageModel() ai.LanguageModel {
	return p.generator
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder exposes the concrete embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockLanguageModel exposes the concrete language model for test
// assertions.
func (p *MockProvider) GetMockLanguageModel() *MockLanguageModel {
	return p.generator
}
