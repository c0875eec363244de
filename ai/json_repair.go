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


package ai

import "strings"

// StripCodeFences removes markdown code-fence wrapping from a model response.
// Models frequently wrap JSON output in ```json ... ``` despite instructions
// not to; every verdict parser runs responses through this first.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// RepairJSON fixes the key-quoting damage small models most often inflict
// on JSON output: an object key that lost its opening quote, as in
// `{status": "PRESENT"}`. Properly quoted keys and everything between
// them pass through untouched.
func RepairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+8)

	i := 0
	for i < len(in) {
		r := in[i]
		out = append(out, r)
		i++
		if r != '{' && r != ',' {
			continue
		}

		// Keys follow an object opener or a member separator, possibly
		// after whitespace.
		for i < len(in) && isSpaceRune(in[i]) {
			out = append(out, in[i])
			i++
		}
		if i >= len(in) || !isLetter(in[i]) {
			continue
		}

		// A bare identifier closed by ": is a key missing its opening
		// quote. Any other run is copied back as found.
		j := i
		for j < len(in) && isKeyRune(in[j]) {
			j++
		}
		if j+1 < len(in) && in[j] == '"' && in[j+1] == ':' {
			key := strings.TrimSuffix(string(in[i:j]), " ")
			out = append(out, '"')
			out = append(out, []rune(key)...)
		} else {
			out = append(out, in[i:j]...)
		}
		i = j
	}

	return string(out)
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isKeyRune(r rune) bool {
	return isLetter(r) || r == '_' || r == ' '
}
