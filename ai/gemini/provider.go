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


package gemini

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/veridoc/ai"
	"google.golang.org/genai"
)

// Default model identifiers used when the config leaves them empty.
const (
	defaultEmbeddingModel = "gemini-embedding-001"
	defaultGeneratorModel = "gemini-2.5-flash"
)

// Provider implements ai.AIProvider using the Google Gemini API.
// A single genai client is shared by the embedder and the generator;
// the provider owns its lifecycle.
type Provider struct {
	client    *genai.Client
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider creates a new AI provider backed by the Gemini API.
// The config must carry an APIKey; empty model identifiers fall back to
// Gemini defaults. Hosts in the config are ignored.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		return nil, errors.New("ai config: config is nil")
	}
	if config.APIKey == "" {
		return nil, errors.New("ai config: APIKey is required for Gemini")
	}
	config.Normalize()

	embeddingModel := config.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	generatorModel := config.GeneratorModel
	if generatorModel == "" {
		generatorModel = defaultGeneratorModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{
		client:    client,
		embedder:  newEmbedder(client, embeddingModel, config.RequestTimeout),
		generator: newGenerator(client, generatorModel, config.RequestTimeout),
		logger:    slog.Default().With("component", "gemini-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// LanguageModel returns the text generation service.
func (p *Provider) LanguageModel() ai.LanguageModel {
	return p.generator
}

// Close releases the underlying Gemini client.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
