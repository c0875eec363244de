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


// Package config loads the audit configuration from a YAML file.
//
// A missing file is not an error: Load returns the defaults, which carry
// a local embedded index, a local OpenAI-compatible AI endpoint, and the
// stock brokerage criteria set. Criteria entries accept either a plain
// string or a {query, confidence} mapping.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/veridoc/core"
)

// Supported index backends.
const (
	BackendBadger = "badger"
	BackendMilvus = "milvus"
)

// Supported AI providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds every setting the engine, pipeline, and CLI consume.
type Config struct {
	Index           IndexConfig           `yaml:"index"`
	AI              AIConfig              `yaml:"ai"`
	Chunking        ChunkingConfig        `yaml:"chunking"`
	BM25            BM25Config            `yaml:"bm25"`
	Output          OutputConfig          `yaml:"output"`
	PossibleAnswers PossibleAnswersConfig `yaml:"possible_answers"`
	DeepAgent       DeepAgentConfig       `yaml:"deep_agent"`

	// DocumentsDir is where the auditor looks for raw source documents
	// when generating possible answers. Empty means paths resolve
	// relative to the working directory.
	DocumentsDir string `yaml:"documents_dir"`

	Documents []DocumentConfig  `yaml:"documents"`
	Criteria  []CriterionConfig `yaml:"criteria"`
}

// IndexConfig selects and configures the chunk index backend.
type IndexConfig struct {
	Backend    string `yaml:"backend"` // badger or milvus
	Path       string `yaml:"path"`    // badger data directory
	URI        string `yaml:"uri"`     // milvus server address
	Collection string `yaml:"collection"`
	DenseDim   int    `yaml:"dense_dim"`
}

// AIConfig configures the embedding and generation services.
type AIConfig struct {
	Provider        string `yaml:"provider"` // openai or gemini
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	EmbeddingModel  string `yaml:"embedding_model"`
	GenerationModel string `yaml:"generation_model"`
	RequestTimeout  string `yaml:"request_timeout"`
}

// Timeout parses RequestTimeout, falling back to two minutes.
func (c AIConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// BM25Config locates the persisted sparse encoder model.
type BM25Config struct {
	ModelPath string `yaml:"model_path"`
}

// OutputConfig controls report export.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	SaveJSON  bool   `yaml:"save_json"`
	SaveTXT   bool   `yaml:"save_txt"`
}

// PossibleAnswersConfig toggles the possible-answer pre-pass.
type PossibleAnswersConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DeepAgentConfig controls the iterative research agent.
type DeepAgentConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// DocumentConfig describes one source document known to the system.
type DocumentConfig struct {
	Path          string `yaml:"path"`
	DocType       string `yaml:"doc_type"`
	SkipIfIndexed bool   `yaml:"skip_if_indexed"`
}

// Filename returns the base name of the document path, which is the
// identity a document carries in the index.
func (d DocumentConfig) Filename() string {
	return filepath.Base(d.Path)
}

// UnmarshalYAML fills in the skip default before decoding, so that an
// entry omitting skip_if_indexed keeps the default true rather than the
// zero value.
func (d *DocumentConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw DocumentConfig
	r := raw{SkipIfIndexed: true}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*d = DocumentConfig(r)
	return nil
}

// CriterionConfig is one audit question. In YAML it may be written as a
// plain string (confidence inherited from deep_agent.min_confidence) or
// as a {query, confidence} mapping.
type CriterionConfig struct {
	Query      string  `yaml:"query"`
	Confidence float64 `yaml:"confidence"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (c *CriterionConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var query string
		if err := value.Decode(&query); err != nil {
			return err
		}
		*c = CriterionConfig{Query: query}
		return nil
	}
	type raw CriterionConfig
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	*c = CriterionConfig(r)
	return nil
}

// DefaultConfig returns the configuration used when no file is present:
// an embedded badger index under ./data/index, a local OpenAI-compatible
// endpoint, and the stock criteria set.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Backend:    BackendBadger,
			Path:       "./data/index",
			URI:        "http://127.0.0.1:19530",
			Collection: "audit_docs_v3",
			DenseDim:   1024,
		},
		AI: AIConfig{
			Provider:        ProviderOpenAI,
			BaseURL:         "http://localhost:11434/v1",
			EmbeddingModel:  "embeddinggemma",
			GenerationModel: "qwen2.5:3b",
			RequestTimeout:  "2m",
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 100,
		},
		BM25: BM25Config{
			ModelPath: "./output/bm25_model.json",
		},
		Output: OutputConfig{
			Directory: "./output",
			SaveJSON:  true,
			SaveTXT:   true,
		},
		PossibleAnswers: PossibleAnswersConfig{
			Enabled: false,
		},
		DeepAgent: DeepAgentConfig{
			Enabled:       true,
			MinConfidence: 0.7,
		},
		Criteria: []CriterionConfig{
			{Query: "Is there a registered CNPJ for the Brokerage?", Confidence: 0.8},
			{Query: "Is there a confidentiality or secrecy clause?", Confidence: 0.7},
			{Query: "Does the document mention values, fees, or compensation?", Confidence: 0.7},
			{Query: "Is there a definition of classical music process?", Confidence: 0.6},
			{Query: "Is there mention of the Settlement process?", Confidence: 0.7},
			{Query: "Does the contract mention obligations of the parties?", Confidence: 0.7},
			{Query: "Is there mention of penalties or fines?", Confidence: 0.7},
			{Query: "Does the document have any mention about A5X?", Confidence: 0.8},
		},
	}
}

// Load reads the configuration at path, layered over the defaults.
// A missing file returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the parts of the configuration that cannot be healed
// with defaults.
func (c *Config) Validate() error {
	switch c.Index.Backend {
	case BackendBadger, BackendMilvus:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Index.Backend)
	}

	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.AI.Provider)
	}

	if c.DeepAgent.MinConfidence < 0 || c.DeepAgent.MinConfidence > 1 {
		return fmt.Errorf("%w: deep_agent.min_confidence %v",
			ErrConfidenceRange, c.DeepAgent.MinConfidence)
	}

	for n, doc := range c.Documents {
		if doc.Path == "" {
			return fmt.Errorf("%w: documents[%d] missing path", ErrInvalidDocument, n)
		}
		if doc.DocType == "" {
			return fmt.Errorf("%w: documents[%d] missing doc_type", ErrInvalidDocument, n)
		}
	}

	for n, criterion := range resolveCriteria(c.Criteria, c.DeepAgent.MinConfidence) {
		if err := core.ValidateCriterion(&criterion); err != nil {
			return fmt.Errorf("criteria[%d]: %w", n, err)
		}
	}
	return nil
}

// AuditCriteria converts the configured criteria into domain values.
// Entries without an explicit confidence inherit
// deep_agent.min_confidence.
func (c *Config) AuditCriteria() []core.Criterion {
	return resolveCriteria(c.Criteria, c.DeepAgent.MinConfidence)
}

func resolveCriteria(entries []CriterionConfig, fallback float64) []core.Criterion {
	criteria := make([]core.Criterion, 0, len(entries))
	for _, entry := range entries {
		confidence := entry.Confidence
		if confidence == 0 {
			confidence = fallback
		}
		criteria = append(criteria, core.Criterion{
			Query:         entry.Query,
			MinConfidence: confidence,
		})
	}
	return criteria
}

// DocumentType looks up the configured doc type for an indexed document
// name. The lookup matches on the path base name.
func (c *Config) DocumentType(name string) (string, bool) {
	for _, doc := range c.Documents {
		if doc.Filename() == name {
			return doc.DocType, true
		}
	}
	return "", false
}

// DocumentPath returns the configured source path for a document name.
func (c *Config) DocumentPath(name string) (string, bool) {
	for _, doc := range c.Documents {
		if doc.Filename() == name {
			return doc.Path, true
		}
	}
	return "", false
}
