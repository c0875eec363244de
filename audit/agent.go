package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/index"
	"github.com/poiesic/veridoc/retrieval"
)

const (
	// DefaultMaxAttempts is the retrieval round budget per criterion.
	DefaultMaxAttempts = 3

	// DefaultMinConfidence is the acceptance threshold applied when a
	// criterion carries none.
	DefaultMinConfidence = 0.7

	// fallbackChunkCount estimates document size when the index cannot
	// report it.
	fallbackChunkCount = 100

	minRetrievalLimit = 3
	maxRetrievalLimit = 10
)

// Agent performs iterative deep research for audit criteria against a
// single document. Each Search runs retrieve-then-evaluate rounds until the
// verdict clears the criterion's confidence threshold, a regenerated query
// repeats an earlier one, or the attempt budget runs out.
//
// An agent is built once per document and shared by concurrent criterion
// tasks; all per-search state lives in a SearchState owned by one call.
type Agent struct {
	retriever *retrieval.Retriever
	evaluator *Evaluator
	generator ai.LanguageModel
	filter    index.Filter
	hints     map[string]core.PossibleAnswer
	limit     int
	logger    *slog.Logger
}

// NewAgent creates an agent for the document selected by filter.
//
// The retrieval breadth is computed here, once, from the document's indexed
// chunk count: limit = chunks/100 clamped to [3, 10]. A failed count falls
// back to an estimate of 100 chunks. hints may be nil.
func NewAgent(ctx context.Context, searcher index.Searcher, retriever *retrieval.Retriever,
	evaluator *Evaluator, provider ai.AIProvider, filter index.Filter,
	hints map[string]core.PossibleAnswer) (*Agent, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if evaluator == nil {
		return nil, ErrEvaluatorRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	logger := slog.Default().With("component", "deep-agent")

	chunks, err := searcher.CountChunks(ctx, filter)
	if err != nil {
		logger.Warn("failed to count document chunks, using fallback estimate",
			"filename", filter.Filename, "error", err)
		chunks = fallbackChunkCount
	}

	return &Agent{
		retriever: retriever,
		evaluator: evaluator,
		generator: provider.LanguageModel(),
		filter:    filter,
		hints:     hints,
		limit:     retrievalLimit(chunks),
		logger:    logger,
	}, nil
}

// Limit returns the per-round retrieval breadth computed for the document.
func (a *Agent) Limit() int {
	return a.limit
}

// Search runs the deep research loop for one criterion.
//
// Round 1 queries the criterion text verbatim; later rounds query an
// alternative phrasing generated from the search history. Every round
// re-evaluates the entire accumulated context. The first verdict that is
// not an ERROR and meets the criterion's confidence threshold is returned
// immediately; otherwise the final round's verdict is returned once the
// budget is spent. A regenerated query that exactly matches an executed one
// ends the search without consuming a round.
//
// Retrieval and model-transport failures propagate as errors; they are
// fatal to this criterion only. Malformed judgment output is not an error:
// it yields an ERROR-status verdict, which never satisfies the gate.
func (a *Agent) Search(ctx context.Context, criterion core.Criterion) (core.CriterionResult, error) {
	if err := core.ValidateCriterion(&criterion); err != nil {
		return core.CriterionResult{}, err
	}

	minConfidence := criterion.MinConfidence
	if minConfidence == 0 {
		minConfidence = DefaultMinConfidence
	}

	hint := a.hintFor(criterion.Query)
	state := NewSearchState(criterion.Query, minConfidence, hint)

	var last core.CriterionResult
	for state.Attempts < state.MaxAttempts {
		query := state.Criterion
		if state.Attempts > 0 {
			generated, err := a.alternativeQuery(ctx, state)
			if err != nil {
				return core.CriterionResult{}, fmt.Errorf("failed to generate alternative query: %w", err)
			}
			if generated == "" || state.HasExecuted(generated) {
				a.logger.Debug("no new query to try, returning best available result",
					"criterion", clip(state.Criterion, 50), "attempts", state.Attempts)
				return last, nil
			}
			query = generated
		}
		state.Attempts++

		retrieved, err := a.retriever.Retrieve(ctx, query, a.filter, hint, a.limit)
		if err != nil {
			return core.CriterionResult{}, fmt.Errorf("retrieval failed on attempt %d: %w", state.Attempts, err)
		}
		state.AddRound(query, retrieved.Context, retrieved.Pages())

		result, err := a.evaluator.EvaluateAccumulated(ctx, state)
		if err != nil {
			return core.CriterionResult{}, err
		}
		last = result

		if result.Status != core.StatusError && result.Confidence >= state.MinConfidence {
			a.logger.Debug("criterion satisfied",
				"criterion", clip(state.Criterion, 50),
				"attempt", state.Attempts, "confidence", result.Confidence)
			return result, nil
		}

		a.logger.Debug("confidence below threshold, searching more",
			"criterion", clip(state.Criterion, 50),
			"attempt", state.Attempts, "confidence", result.Confidence,
			"status", result.Status)
	}

	return last, nil
}

// alternativeQuery asks the model for one new search phrasing.
func (a *Agent) alternativeQuery(ctx context.Context, state *SearchState) (string, error) {
	response, err := a.generator.Generate(ctx, alternativeQueryPrompt(state))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// hintFor returns a copy of the criterion's possible answer, or nil when
// none was generated.
func (a *Agent) hintFor(criterion string) *core.PossibleAnswer {
	if a.hints == nil {
		return nil
	}
	answer, ok := a.hints[criterion]
	if !ok {
		return nil
	}
	return &answer
}

// retrievalLimit scales retrieval breadth with document size.
func retrievalLimit(totalChunks int) int {
	limit := totalChunks / 100
	if limit < minRetrievalLimit {
		return minRetrievalLimit
	}
	if limit > maxRetrievalLimit {
		return maxRetrievalLimit
	}
	return limit
}
