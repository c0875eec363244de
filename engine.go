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


package veridoc

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/ai/gemini"
	"github.com/poiesic/veridoc/ai/openai"
	"github.com/poiesic/veridoc/audit"
	"github.com/poiesic/veridoc/bm25"
	"github.com/poiesic/veridoc/config"
	"github.com/poiesic/veridoc/index"
	"github.com/poiesic/veridoc/index/badger"
	"github.com/poiesic/veridoc/index/milvus"
	"github.com/poiesic/veridoc/ingest"
	"github.com/poiesic/veridoc/retrieval"
)

// Engine wires the chunk index, AI provider and sparse encoder from a
// single configuration and hands out the pipelines that operate on them.
type Engine struct {
	config   *config.Config
	index    index.Index
	provider ai.AIProvider
	encoder  *bm25.Encoder
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
	index    index.Index
}

// WithProvider substitutes a pre-built AI provider for the one the
// configuration would construct. The engine takes ownership and closes
// it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithIndex substitutes a pre-built chunk index for the configured
// backend. The engine takes ownership and closes it on Close.
func WithIndex(idx index.Index) EngineOption {
	return func(o *engineOptions) {
		o.index = idx
	}
}

// New builds an Engine from cfg. A nil cfg uses the defaults. The sparse
// model is loaded from cfg.BM25.ModelPath when one has been persisted;
// otherwise the encoder stays unfitted until the first document is indexed.
func New(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default()

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = newProvider(cfg)
		if err != nil {
			return nil, err
		}
	}

	idx := options.index
	if idx == nil {
		var err error
		idx, err = newIndex(cfg)
		if err != nil {
			provider.Close()
			return nil, err
		}
	}

	encoder := bm25.NewEncoder()
	if path := cfg.BM25.ModelPath; path != "" {
		if err := encoder.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to load sparse model", "path", path, "err", err)
		}
	}

	return &Engine{
		config:   cfg,
		index:    idx,
		provider: provider,
		encoder:  encoder,
		logger:   logger,
	}, nil
}

func newProvider(cfg *config.Config) (ai.AIProvider, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.AI.BaseURL),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithGeneratorModel(cfg.AI.GenerationModel),
		ai.WithAPIKey(cfg.AI.APIKey),
		ai.WithRequestTimeout(cfg.AI.Timeout()),
	)

	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		return openai.NewProvider(aiConfig)
	case config.ProviderGemini:
		return gemini.NewProvider(aiConfig)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.AI.Provider)
	}
}

func newIndex(cfg *config.Config) (index.Index, error) {
	switch cfg.Index.Backend {
	case config.BackendBadger:
		return badger.NewIndex(cfg.Index.Path)
	case config.BackendMilvus:
		return milvus.NewIndex(milvus.Config{
			URI:        cfg.Index.URI,
			Collection: cfg.Index.Collection,
			DenseDim:   cfg.Index.DenseDim,
		})
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Index.Backend)
	}
}

func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.index.Close(); err != nil {
		e.logger.Error("error closing chunk index", "err", err)
		return err
	}
	return nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config {
	return e.config
}

// Searcher exposes read access to the chunk index.
func (e *Engine) Searcher() index.Searcher {
	return e.index
}

// Provider exposes the AI provider backing the engine.
func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

// Encoder exposes the shared sparse encoder. It is fitted once a model
// has been loaded or a first document indexed, and read-only afterwards.
func (e *Engine) Encoder() *bm25.Encoder {
	return e.encoder
}

// NewPipeline creates an ingestion pipeline over the engine's index,
// provider and encoder, preconfigured from the engine's configuration.
// Explicit opts take precedence.
func (e *Engine) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	base := []ingest.Option{
		ingest.WithChunking(e.config.Chunking.ChunkSize, e.config.Chunking.ChunkOverlap),
		ingest.WithModelPath(e.config.BM25.ModelPath),
	}
	return ingest.NewPipeline(e.index, e.provider, e.encoder, append(base, opts...)...)
}

// NewAuditor creates an auditor over the engine's index, provider and
// encoder, preconfigured from the engine's configuration. Explicit opts
// take precedence.
func (e *Engine) NewAuditor(opts ...audit.Option) (*audit.Auditor, error) {
	base := []audit.Option{
		audit.WithPossibleAnswers(e.config.PossibleAnswers.Enabled),
		audit.WithDeepSearch(e.config.DeepAgent.Enabled),
		audit.WithDocumentDir(e.config.DocumentsDir),
	}
	return audit.NewAuditor(e.index, e.provider, e.encoder, append(base, opts...)...)
}

// NewRetriever creates a hybrid retriever over the engine's index,
// provider and encoder for one-off searches.
func (e *Engine) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(e.index, e.provider, e.encoder, opts...)
}
