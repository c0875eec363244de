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


// Package ingest provides the document indexing pipeline.
//
// The Pipeline type manages the full indexing workflow for a document:
//   - Extracting page-tagged text from the source file
//   - Splitting pages into overlapping chunks
//   - Encoding sparse vectors with the shared BM25 model
//   - Embedding dense vectors in concurrent batches
//   - Writing embedded chunks to the index in bounded batches
//
// Dense embedding runs on a worker pool with retry; a document is only
// written once every batch has embedded successfully, so a failed run
// never leaves a partially indexed document behind.
package ingest
