package bm25

import "strings"

// stopWords is a set of common English stop words excluded from the
// vocabulary. Keeping them out shrinks the model and stops high-frequency
// glue words from dominating sparse scores.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"that": {}, "the": {}, "to": {}, "was": {}, "were": {}, "will": {},
	"with": {},
}

// tokenizeAndFilter splits text into lowercase tokens, trimming surrounding
// punctuation and dropping stop words and empty strings.
func tokenizeAndFilter(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.Trim(field, ".,!?;:'\"-()[]{}")
		if token == "" {
			continue
		}
		if _, isStop := stopWords[token]; isStop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
