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


package index

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidQuery indicates invalid search parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrIndexClosed indicates that the index backend is closed.
	ErrIndexClosed = errors.New("index is closed")

	// ErrBackendUnavailable indicates the index backend could not be reached.
	ErrBackendUnavailable = errors.New("index backend unavailable")
)
