package audit

import (
	"fmt"
	"strings"

	"github.com/poiesic/veridoc/core"
)

// snippetLength bounds the per-round context excerpts shown to the model
// when it generates an alternative query.
const snippetLength = 200

// alternativeQueryPrompt asks the model for one new search phrasing given
// everything tried so far.
func alternativeQueryPrompt(state *SearchState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are searching for information in a document to verify this criterion:\n%q\n\n", state.Criterion)

	b.WriteString("Queries already tried (do not repeat):\n")
	for _, query := range state.ExecutedQueries {
		fmt.Fprintf(&b, "- %s\n", query)
	}

	b.WriteString("\nContexts found so far:\n")
	for _, round := range state.Rounds {
		fmt.Fprintf(&b, "%s...\n", clip(round.Context, snippetLength))
	}

	if state.Hint != nil && state.Hint.Found {
		fmt.Fprintf(&b, "\nA preliminary analysis of the full document suggested this answer (suggested pages %v):\n%s\n",
			state.Hint.Pages, state.Hint.Answer)
	}

	b.WriteString(`
Generate ONE alternative search query to find this information.
Use synonyms, related terms, or different approaches.

Respond ONLY with the query, without explanations.`)

	return b.String()
}

// evaluatePrompt builds the single-context judgment prompt.
func evaluatePrompt(criterion, contextText string) string {
	return fmt.Sprintf(`You are a rigorous compliance auditor analyzing a document.
Respond only in valid JSON, without markdown and without additional text.

CRITERION TO EVALUATE:
%s

DOCUMENT CONTEXT (relevant retrieved excerpts):
%s

CRITICAL RULES:
1. Carefully analyze if the criterion is PRESENT or ABSENT in the context
2. The "evidence" field MUST contain the EXACT excerpt copied from the document
3. DO NOT paraphrase, DO NOT translate, DO NOT summarize - copy the text EXACTLY as it appears
4. Keep the original language of the document in the evidence field
5. If the criterion is ABSENT, briefly explain why in English
6. Evaluate your confidence in the response (0.0 = none, 1.0 = total)
7. Indicate which pages contain the evidence (use page numbers from context)

Respond EXACTLY in the JSON format below:

{
    "status": "PRESENT" or "ABSENT",
    "evidence": "EXACT QUOTE from the document in its original language, or brief explanation if absent",
    "confidence": 0.0 to 1.0,
    "relevant_pages": [list of page numbers where evidence was found]
}`, criterion, contextText)
}

// evaluateWithHintPrompt builds the judgment prompt when a found hint
// exists. The document context stays the only admissible evidence source;
// the hint section is explicitly advisory.
func evaluateWithHintPrompt(criterion, contextText string, hint *core.PossibleAnswer) string {
	answer := hint.Answer
	if answer == "" {
		answer = "Not available"
	}

	return fmt.Sprintf(`You are a rigorous compliance auditor analyzing a document.
Respond only in valid JSON, without markdown and without additional text.

CRITERION TO EVALUATE:
%s

DOCUMENT CONTEXT (actual excerpts from the document):
%s

LLM POSSIBLE ANSWER (hint from initial analysis - verify against document):
%s
Suggested pages: %v

CRITICAL RULES:
1. The DOCUMENT CONTEXT contains the actual evidence - use this as your primary source
2. The LLM POSSIBLE ANSWER is just a hint - it may be incorrect or incomplete
3. ALWAYS verify any claim from the possible answer against the actual document excerpts
4. The "evidence" field MUST contain the EXACT excerpt copied from DOCUMENT CONTEXT
5. DO NOT use text from the possible answer as evidence - only use actual document text
6. Keep the original language of the document in the evidence field
7. If the criterion is ABSENT, briefly explain why in English
8. Evaluate your confidence in the response (0.0 = none, 1.0 = total)
9. Indicate which pages contain the evidence (use page numbers from context)

Respond EXACTLY in the JSON format below:
{
    "status": "PRESENT" or "ABSENT",
    "evidence": "EXACT QUOTE from DOCUMENT CONTEXT only",
    "confidence": 0.0 to 1.0,
    "relevant_pages": [list of page numbers]
}`, criterion, contextText, answer, hint.Pages)
}

// accumulatedPrompt builds the judgment prompt over every round's combined
// context, reporting the search count and the page union alongside.
func accumulatedPrompt(state *SearchState) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a rigorous compliance auditor analyzing a document.
Respond only in valid JSON, without markdown and without additional text.

CRITERION TO EVALUATE:
%s

FULL CONTEXT (from %d searches):
%s

PAGES FOUND: %s
`, state.Criterion, state.SearchCount(), state.AccumulatedContext(), pagesOrNone(state.Pages()))

	hinted := state.Hint != nil && state.Hint.Found
	if hinted {
		answer := state.Hint.Answer
		if answer == "" {
			answer = "Not available"
		}
		fmt.Fprintf(&b, `
LLM POSSIBLE ANSWER (hint from initial analysis - verify against document):
%s
Suggested pages: %v
`, answer, state.Hint.Pages)
	}

	b.WriteString(`
CRITICAL RULES:
1. Evaluate if the criterion is PRESENT or ABSENT in the document
2. The "evidence" field MUST contain the EXACT excerpt copied from the document
3. DO NOT paraphrase, DO NOT translate, DO NOT summarize - copy the text EXACTLY as it appears
4. Keep the original language of the document in the evidence field
5. If the criterion is ABSENT, briefly explain why in English
6. Be precise about which pages contain the evidence
`)
	if hinted {
		b.WriteString("7. The LLM POSSIBLE ANSWER is just a hint - verify it against the context and NEVER copy it into the evidence field\n")
	}

	b.WriteString(`
Respond in valid JSON:
{
    "status": "PRESENT" or "ABSENT",
    "evidence": "EXACT QUOTE from the document in its original language, or brief explanation if absent",
    "confidence": 0.0 to 1.0,
    "relevant_pages": [list of pages]
}`)

	return b.String()
}

func pagesOrNone(pages []int) string {
	if len(pages) == 0 {
		return "None"
	}
	return fmt.Sprint(pages)
}

// clip truncates s to at most max runes.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
