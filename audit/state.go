package audit

import (
	"sort"
	"strings"

	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/retrieval"
)

// NoAccumulatedContext replaces the combined context when every round came
// back empty.
const NoAccumulatedContext = "No relevant context found after multiple searches."

// Round is one retrieve-then-evaluate iteration recorded in search state.
type Round struct {
	Query   string
	Context string
	Pages   []int
}

// SearchState tracks one agent invocation across its rounds. It is owned
// exclusively by a single Search call and never shared between concurrent
// criterion tasks.
//
// The round history is an append-only log; the accumulated page set is a
// projection derived from it. Accessors return copies, never aliases into
// the log.
type SearchState struct {
	// Criterion is the original criterion text, used verbatim as the
	// round-1 query.
	Criterion string

	// MinConfidence is the acceptance threshold for this search.
	MinConfidence float64

	// MaxAttempts caps the number of retrieval rounds.
	MaxAttempts int

	// Attempts counts retrieval rounds actually consumed.
	Attempts int

	// ExecutedQueries holds every query issued so far, in order, with no
	// duplicates. A regenerated duplicate is the agent's stop signal and is
	// never recorded.
	ExecutedQueries []string

	// Rounds is the append-only history of {query, context, pages} records.
	Rounds []Round

	// Hint is an optional read-only possible answer for the criterion.
	Hint *core.PossibleAnswer

	foundPages map[int]struct{}
}

// NewSearchState creates the state for a single criterion search.
func NewSearchState(criterion string, minConfidence float64, hint *core.PossibleAnswer) *SearchState {
	return &SearchState{
		Criterion:     criterion,
		MinConfidence: core.ClampConfidence(minConfidence),
		MaxAttempts:   DefaultMaxAttempts,
		Hint:          hint,
		foundPages:    make(map[int]struct{}),
	}
}

// HasExecuted reports whether query was already issued in a previous round.
// Matching is exact string equality.
func (s *SearchState) HasExecuted(query string) bool {
	for _, executed := range s.ExecutedQueries {
		if executed == query {
			return true
		}
	}
	return false
}

// AddRound appends a completed retrieval round and unions its pages into
// the accumulated page set.
func (s *SearchState) AddRound(query, contextText string, pages []int) {
	s.ExecutedQueries = append(s.ExecutedQueries, query)

	recorded := make([]int, len(pages))
	copy(recorded, pages)
	s.Rounds = append(s.Rounds, Round{
		Query:   query,
		Context: contextText,
		Pages:   recorded,
	})

	for _, page := range pages {
		s.foundPages[page] = struct{}{}
	}
}

// Pages returns the sorted accumulated page set across all rounds.
func (s *SearchState) Pages() []int {
	pages := make([]int, 0, len(s.foundPages))
	for page := range s.foundPages {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// SearchCount returns the number of queries executed so far.
func (s *SearchState) SearchCount() int {
	return len(s.ExecutedQueries)
}

// AccumulatedContext combines the context of every round that found
// something, separated the same way single-round contexts separate their
// hits. Rounds that returned the no-context sentinel are excluded; when all
// rounds are excluded the combined text is NoAccumulatedContext.
func (s *SearchState) AccumulatedContext() string {
	parts := make([]string, 0, len(s.Rounds))
	for _, round := range s.Rounds {
		if round.Context == retrieval.NoContextFound || round.Context == "" {
			continue
		}
		parts = append(parts, round.Context)
	}

	if len(parts) == 0 {
		return NoAccumulatedContext
	}
	return strings.Join(parts, "\n\n---\n\n")
}
