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


// Package milvus implements the chunk index on a Milvus vector database
// via its v2 REST API.
//
// The package speaks plain JSON over HTTP rather than a driver: every
// operation is a POST under /v2/vectordb returning a {code, message,
// data} envelope, and a non-zero code is an API failure even on HTTP 200.
// Hybrid search prefers the advanced_search route and falls back to
// hybrid_search when the server predates it.
//
// Collections are created lazily on first insert with a fixed schema:
// scalar chunk metadata plus one dense (COSINE) and one sparse
// (SPARSE_INVERTED_INDEX, IP) vector field. Fusion of the two rankings
// happens server-side with reciprocal rank fusion.
package milvus
