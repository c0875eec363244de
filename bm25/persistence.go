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


package bm25

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultModelPath is where the fitted model is persisted unless the
// configuration overrides it.
const DefaultModelPath = "./output/bm25_model.json"

// modelFile is the JSON representation of a fitted model. Integer-keyed
// maps round-trip through encoding/json with string keys.
type modelFile struct {
	K1        float64            `json:"k1"`
	B         float64            `json:"b"`
	AvgDocLen float64            `json:"avg_doc_len"`
	DocCount  int                `json:"doc_count"`
	Vocab     map[string]uint32  `json:"vocab"`
	IDF       map[uint32]float64 `json:"idf"`
}

// Save writes the fitted model to path as JSON, creating parent
// directories as needed.
func (e *Encoder) Save(path string) error {
	if !e.Fitted() {
		return ErrNotFitted
	}

	data, err := json.MarshalIndent(modelFile{
		K1:        e.k1,
		B:         e.b,
		AvgDocLen: e.avgDocLen,
		DocCount:  e.docCount,
		Vocab:     e.vocab,
		IDF:       e.idf,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Load replaces the encoder state with a previously saved model.
func (e *Encoder) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}

	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse model file: %w", err)
	}
	if m.DocCount <= 0 || m.AvgDocLen <= 0 || len(m.Vocab) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidModel, path)
	}
	if m.K1 <= 0 {
		m.K1 = DefaultK1
	}
	if m.B < 0 || m.B > 1 {
		m.B = DefaultB
	}
	if m.IDF == nil {
		m.IDF = make(map[uint32]float64)
	}

	e.k1 = m.K1
	e.b = m.B
	e.avgDocLen = m.AvgDocLen
	e.docCount = m.DocCount
	e.vocab = m.Vocab
	e.idf = m.IDF
	return nil
}
