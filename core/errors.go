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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidCriterion indicates a Criterion failed validation.
	ErrInvalidCriterion = errors.New("invalid criterion")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyQuery indicates the criterion Query field is empty.
	ErrEmptyQuery = errors.New("criterion query cannot be empty")

	// ErrConfidenceOutOfRange indicates a confidence value outside [0, 1].
	ErrConfidenceOutOfRange = errors.New("confidence must be between 0 and 1")

	// ErrEmptyChunkText indicates the chunk Text field is empty.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")

	// ErrEmptyFilename indicates the chunk Filename field is empty.
	ErrEmptyFilename = errors.New("chunk filename cannot be empty")

	// ErrInvalidPageNumber indicates a page number below 1.
	ErrInvalidPageNumber = errors.New("page number must be at least 1")
)
