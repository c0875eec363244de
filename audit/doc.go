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


// Package audit implements the deep-research audit of a document against
// natural-language compliance criteria.
//
// The Agent drives the per-criterion loop: retrieve evidence, accumulate it
// in a SearchState, judge the whole accumulation with the Evaluator, and
// stop once the verdict clears the criterion's confidence threshold. Later
// rounds search with model-generated alternative phrasings; a regenerated
// query that repeats an earlier one ends the loop early, and the attempt
// budget bounds it at three rounds.
//
// The Evaluator owns the judgment contract with the language model: prompt
// construction, JSON verdict decoding, and the degradation of malformed
// replies into explicit ERROR verdicts that never satisfy the confidence
// gate.
//
// The Auditor orchestrates a whole run: an optional possible-answer
// pre-pass over the raw document, one concurrent agent task per criterion,
// and assembly of the final report. One criterion's failure never aborts
// the others.
package audit
