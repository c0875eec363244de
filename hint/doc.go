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


// Package hint generates best-guess answers for audit criteria by asking a
// language model to read the full raw document before any retrieval happens.
// Documents larger than the prompt budget are split into page-aligned
// segments and queried segment by segment; the first found answer wins.
//
// A hint serves two purposes downstream: the retrieval layer issues a second
// fused search using the hint answer as an alternative query phrasing, and
// the evaluator receives it as an advisory cross-check that must never be
// copied into evidence.
//
// The generator is deliberately failure-tolerant. Model invocations retry
// under a bounded backoff policy, and any criterion whose generation still
// fails degrades to a not-found answer instead of surfacing an error. Audits
// must run identically with or without hints; a broken hint path only costs
// retrieval quality, never correctness.
//
// Batch generation fans one task per criterion out over a bounded worker
// pool and guarantees exactly one answer per distinct input criterion.
package hint
