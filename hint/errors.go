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


package hint

import "errors"

var (
	// ErrAIProviderRequired indicates the AI provider was nil.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrMalformedResponse indicates the model reply could not be decoded.
	// Generate retries on it and degrades to not-found after exhaustion.
	ErrMalformedResponse = errors.New("malformed possible answer response")
)
