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


// Package index provides the chunk index abstraction for veridoc.
//
// This package defines the interfaces that decouple retrieval and
// ingestion from the vector store implementation. Two backends are
// provided as subpackages: an embedded BadgerDB store for single-node
// use, and a Milvus client for a shared vector database.
//
// # Constructor Return Type Pattern
//
// Backend packages follow a strict "return interface" pattern for all
// public constructors to enforce abstraction:
//
//	idx, err := badger.NewIndex(path)  // returns index.Index interface
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to backend specifics
//   - Swappability: BadgerDB and Milvus are interchangeable at wiring time
//   - Testing: Consumers can use in-memory or mock implementations
//
// Internal package constructors may return concrete types since they're
// only used within the implementation package.
//
// # Architecture
//
//   - Searcher: hybrid (sparse + dense) search and chunk counting
//   - Writer: chunk insertion
//   - Index: Searcher + Writer + lifecycle
//
// Serialization of chunks and manifests uses the MUS binary format; the
// serializers in codec.go are handwritten and the field order is part of
// the storage format.
//
// # Usage
//
// Create an embedded index:
//
//	idx, err := badger.NewIndex("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//
// Use in tests with in-memory storage:
//
//	idx, err := badger.NewMemoryIndex()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//
// # Thread Safety
//
// All backend implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout
// support.
package index
