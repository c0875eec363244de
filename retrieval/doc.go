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


// Package retrieval provides hybrid lexical and semantic retrieval over
// an indexed document.
//
// The Retriever type implements the fusion-and-merge algorithm behind
// every audit round:
//   - Sparse lexical encoding via a corpus-fitted BM25 model
//   - Dense semantic encoding via the configured embedder
//   - One fused nearest-neighbor search per query, restricted to the
//     audited document
//   - An optional second search driven by a model-generated answer hint,
//     merged by exact passage text keeping the higher score
//
// Surviving passages are rendered as a provenance-tagged context bundle
// for the evaluator; an empty round yields the NoContextFound sentinel.
package retrieval
