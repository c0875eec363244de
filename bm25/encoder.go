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
	"math"

	"github.com/poiesic/veridoc/core"
)

// Default Okapi BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Encoder is a corpus-fitted BM25 sparse encoder. Fitting assigns each
// vocabulary term a stable id and an inverse document frequency; encoding
// turns text into term-id weighted sparse vectors compatible with the
// index's sparse inner-product search.
//
// Fit and Load are not safe to call concurrently with encoding. Once
// fitted, the encoder is read-only and safe for concurrent use.
type Encoder struct {
	k1 float64
	b  float64

	vocab     map[string]uint32
	idf       map[uint32]float64
	avgDocLen float64
	docCount  int
}

// NewEncoder creates an unfitted encoder with default BM25 parameters.
// Call Fit or Load before encoding.
func NewEncoder() *Encoder {
	return &Encoder{
		k1:    DefaultK1,
		b:     DefaultB,
		vocab: make(map[string]uint32),
		idf:   make(map[uint32]float64),
	}
}

// Fitted reports whether the encoder carries a usable model.
func (e *Encoder) Fitted() bool {
	return e.docCount > 0
}

// Fit builds the vocabulary and term statistics from a corpus of documents.
// Any previously fitted or loaded model is replaced.
func (e *Encoder) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}

	vocab := make(map[string]uint32)
	docFreq := make(map[uint32]int)
	totalLen := 0

	for _, doc := range corpus {
		terms := tokenizeAndFilter(doc)
		totalLen += len(terms)

		seen := make(map[uint32]struct{}, len(terms))
		for _, term := range terms {
			id, ok := vocab[term]
			if !ok {
				id = uint32(len(vocab))
				vocab[term] = id
			}
			if _, counted := seen[id]; !counted {
				seen[id] = struct{}{}
				docFreq[id]++
			}
		}
	}

	n := float64(len(corpus))
	idf := make(map[uint32]float64, len(docFreq))
	for id, df := range docFreq {
		// Smoothed Okapi IDF, always positive
		idf[id] = math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
	}

	e.vocab = vocab
	e.idf = idf
	e.docCount = len(corpus)
	e.avgDocLen = float64(totalLen) / n
	return nil
}

// EncodeDocuments encodes a batch of document texts as BM25-weighted sparse
// vectors. Terms outside the fitted vocabulary are dropped.
func (e *Encoder) EncodeDocuments(texts []string) ([]core.SparseVector, error) {
	if !e.Fitted() {
		return nil, ErrNotFitted
	}

	vectors := make([]core.SparseVector, len(texts))
	for i, text := range texts {
		vectors[i] = e.encodeDocument(text)
	}
	return vectors, nil
}

// EncodeQuery encodes a query as a sparse vector whose weights are the
// fitted IDF values. Query-side BM25 does not apply term-frequency scaling.
// The result may be empty when no query term is in the vocabulary; callers
// handle placeholder substitution.
func (e *Encoder) EncodeQuery(text string) (core.SparseVector, error) {
	if !e.Fitted() {
		return nil, ErrNotFitted
	}

	vector := make(core.SparseVector)
	for _, term := range tokenizeAndFilter(text) {
		id, ok := e.vocab[term]
		if !ok {
			continue
		}
		vector[id] = float32(e.idf[id])
	}
	return vector, nil
}

func (e *Encoder) encodeDocument(text string) core.SparseVector {
	terms := tokenizeAndFilter(text)

	tf := make(map[uint32]int, len(terms))
	for _, term := range terms {
		if id, ok := e.vocab[term]; ok {
			tf[id]++
		}
	}

	docLen := float64(len(terms))
	norm := e.k1 * (1 - e.b + e.b*docLen/e.avgDocLen)

	vector := make(core.SparseVector, len(tf))
	for id, freq := range tf {
		f := float64(freq)
		weight := e.idf[id] * f * (e.k1 + 1) / (f + norm)
		vector[id] = float32(weight)
	}
	return vector
}
