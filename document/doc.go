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


// Package document turns source documents into the two shapes the rest of
// the system consumes: a page-structured raw text (for whole-document
// prompts) and a list of passage chunks (for indexing).
//
// The TextExtractor reads plain-text files with form-feed page separators.
// Other formats plug in behind the Extractor interface.
//
// Chunking splits each page independently with a recursive character
// splitter, so a chunk never straddles a page boundary and always carries
// an exact page number for evidence citations.
package document
