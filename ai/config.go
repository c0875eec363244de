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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds the connection settings shared by the AI service providers.
type Config struct {
	// EmbeddingHost is the base URL of the embedding service, for example
	// "http://localhost:11434/v1" for a local OpenAI-compatible server.
	EmbeddingHost string

	// GeneratorHost is the base URL of the text generation service. It
	// usually matches EmbeddingHost but may point at a separate server.
	GeneratorHost string

	// EmbeddingModel identifies the embedding model, such as
	// "embeddinggemma" or "text-embedding-3-small".
	EmbeddingModel string

	// GeneratorModel identifies the generation model, such as
	// "qwen2.5:3b" or "gemini-2.5-flash".
	GeneratorModel string

	// APIKey authenticates against hosted services. Local OpenAI-compatible
	// servers ignore it; the Gemini provider requires it.
	APIKey string

	// RequestTimeout bounds each embedding or generation call. Normalize
	// heals a missing value to two minutes.
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generation service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGeneratorModel sets the generation model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithAPIKey sets the service API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRequestTimeout sets the per-call timeout.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// DefaultConfig targets a local Ollama server for both services, the
// setup the stock configuration assumes.
func DefaultConfig() *Config {
	localOllama := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  localOllama,
		GeneratorHost:  localOllama,
		EmbeddingModel: "embeddinggemma",
		GeneratorModel: "qwen2.5:3b",
		RequestTimeout: 2 * time.Minute,
	}
}

// NewConfig builds a Config from the defaults with opts applied on top.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration into canonical form: hosts gain the
// /v1 suffix that OpenAI-compatible servers (Ollama, LocalAI, vLLM)
// expect, and a missing timeout falls back to two minutes.
func (c *Config) Normalize() {
	c.EmbeddingHost = canonicalHost(c.EmbeddingHost)
	c.GeneratorHost = canonicalHost(c.GeneratorHost)
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 2 * time.Minute
	}
}

func canonicalHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate normalizes the configuration and checks it is complete for
// host-addressed providers. Providers with their own transport
// requirements (such as the Gemini API key) check those themselves.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	return nil
}
