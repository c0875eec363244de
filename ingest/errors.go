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


package ingest

import "errors"

var (
	// ErrIndexRequired is returned when a chunk index is not provided.
	ErrIndexRequired = errors.New("chunk index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEncoderRequired is returned when a sparse encoder is not provided.
	ErrEncoderRequired = errors.New("sparse encoder required")

	// ErrAlreadyIndexed indicates the document already has indexed chunks
	// and the run was not forced.
	ErrAlreadyIndexed = errors.New("document already indexed")

	// ErrNoChunks indicates extraction produced no indexable text.
	ErrNoChunks = errors.New("no chunks produced")
)
