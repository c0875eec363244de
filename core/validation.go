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

import (
	"fmt"
	"sort"
)

// ValidateCriterion validates a Criterion according to domain rules.
//
// Validation rules:
//   - Query must not be empty
//   - MinConfidence must be within [0, 1]
func ValidateCriterion(criterion *Criterion) error {
	if criterion == nil {
		return fmt.Errorf("%w: criterion is nil", ErrInvalidCriterion)
	}

	if criterion.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCriterion, ErrEmptyQuery)
	}

	if criterion.MinConfidence < 0 || criterion.MinConfidence > 1 {
		return fmt.Errorf("%w: %w: value %v", ErrInvalidCriterion, ErrConfidenceOutOfRange, criterion.MinConfidence)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Filename must not be empty
//   - PageNumber must be at least 1
//
// NOT validated (populated by the indexing pipeline):
//   - Dense (can be empty until embedded)
//   - Sparse (can be empty until encoded)
//   - ID (derived from content at insert time)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	if chunk.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyFilename)
	}

	if chunk.PageNumber < 1 {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidChunk, ErrInvalidPageNumber, chunk.PageNumber)
	}

	return nil
}

// ClampConfidence bounds a confidence value to [0, 1].
func ClampConfidence(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// NormalizeStatus maps a raw status string onto a CriterionStatus.
// Anything other than the three known statuses normalizes to ABSENT.
func NormalizeStatus(raw string) CriterionStatus {
	switch CriterionStatus(raw) {
	case StatusPresent, StatusAbsent, StatusError:
		return CriterionStatus(raw)
	default:
		return StatusAbsent
	}
}

// SortedUniquePages returns a sorted copy of pages with duplicates removed.
func SortedUniquePages(pages []int) []int {
	if len(pages) == 0 {
		return []int{}
	}

	seen := make(map[int]struct{}, len(pages))
	unique := make([]int, 0, len(pages))
	for _, p := range pages {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	sort.Ints(unique)
	return unique
}
