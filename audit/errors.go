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


package audit

import "errors"

var (
	// ErrSearcherRequired is returned when an index searcher is not provided.
	ErrSearcherRequired = errors.New("index searcher required")

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrEvaluatorRequired is returned when an evaluator is not provided.
	ErrEvaluatorRequired = errors.New("evaluator required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNoCriteria is returned when an audit run is requested with no criteria.
	ErrNoCriteria = errors.New("no criteria to audit")
)
