package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/bm25"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/index"
)

const (
	// NoContextFound is the sentinel context produced when a retrieval
	// round returns no passages.
	NoContextFound = "No context found."

	// DefaultLimit bounds the number of passages returned per retrieval.
	DefaultLimit = 10

	// contextSeparator joins formatted context blocks.
	contextSeparator = "\n\n---\n\n"
)

// Retriever runs hybrid retrieval rounds over a document's chunk index.
// Each round issues a fused sparse+dense search for the query and, when a
// usable answer hint exists, a second fused search for the hint text, then
// merges both result sets.
type Retriever struct {
	searcher index.Searcher
	embedder ai.Embedder
	encoder  *bm25.Encoder
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	searcher index.Searcher,
	provider ai.AIProvider,
	encoder *bm25.Encoder,
	opts ...Option,
) (*Retriever, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if encoder == nil {
		return nil, ErrEncoderRequired
	}

	r := &Retriever{
		searcher: searcher,
		embedder: provider.Embedder(),
		encoder:  encoder,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// RetrievedContext is the outcome of one retrieval round.
type RetrievedContext struct {
	Query   string
	Hits    []index.Hit
	Context string
	Found   bool
}

// Pages returns the sorted distinct page numbers across all hits.
func (rc *RetrievedContext) Pages() []int {
	pages := make([]int, 0, len(rc.Hits))
	for _, hit := range rc.Hits {
		pages = append(pages, hit.PageNumber)
	}
	return core.SortedUniquePages(pages)
}

// Retrieve runs one retrieval round for the query.
// Returns up to limit passages, ranked by fused score.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter index.Filter, hint *core.PossibleAnswer, limit int) (*RetrievedContext, error) {
	return r.RetrieveWithMonitor(ctx, query, filter, hint, limit, nil)
}

// RetrieveWithMonitor runs one retrieval round with monitoring.
// The monitor receives callbacks at each stage of the retrieval process.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, filter index.Filter, hint *core.PossibleAnswer, limit int, monitor SearchMonitor) (*RetrievedContext, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	monitor.Start(query)

	merged, err := r.fusedSearch(ctx, query, filter, limit)
	if err != nil {
		r.logger.Error("criterion search failed", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterCriterionSearch(merged)

	if HintUsable(hint) {
		hintHits, err := r.fusedSearch(ctx, hint.Answer, filter, limit)
		if err != nil {
			r.logger.Error("hint search failed", "err", err)
			return nil, err
		}
		monitor.AfterHintSearch(hintHits)
		merged = mergeHits(merged, hintHits, limit)
	}

	result := &RetrievedContext{
		Query:   query,
		Hits:    merged,
		Context: FormatContext(merged),
		Found:   len(merged) > 0,
	}
	monitor.Finish(result.Hits)

	return result, nil
}

// fusedSearch encodes the query in both embedding spaces and issues one
// fused search against the index.
func (r *Retriever) fusedSearch(ctx context.Context, query string, filter index.Filter, limit int) ([]index.Hit, error) {
	sparse, err := r.encoder.EncodeQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sparse query: %w", err)
	}
	if len(sparse) == 0 {
		// The index rejects empty sparse vectors
		sparse = core.SparseVector{0: 0.0001}
	}

	dense, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return r.searcher.HybridSearch(ctx, sparse, dense, filter, limit)
}

// HintUsable reports whether a possible answer should influence retrieval
// and evaluation.
func HintUsable(hint *core.PossibleAnswer) bool {
	return hint != nil && hint.Found && strings.TrimSpace(hint.Answer) != ""
}

// mergeHits deduplicates two hit lists by exact passage text, keeping the
// higher score for texts appearing in both, then re-ranks by score and
// truncates to limit. Criterion hits are processed first so exact ties
// favor them.
func mergeHits(criterion, hint []index.Hit, limit int) []index.Hit {
	best := make(map[string]index.Hit, len(criterion)+len(hint))
	order := make([]string, 0, len(criterion)+len(hint))

	absorb := func(hits []index.Hit) {
		for _, hit := range hits {
			existing, seen := best[hit.Text]
			if !seen {
				best[hit.Text] = hit
				order = append(order, hit.Text)
				continue
			}
			if hit.Score > existing.Score {
				best[hit.Text] = hit
			}
		}
	}
	absorb(criterion)
	absorb(hint)

	merged := make([]index.Hit, 0, len(order))
	for _, text := range order {
		merged = append(merged, best[text])
	}

	slices.SortStableFunc(merged, func(a, b index.Hit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// FormatContext renders hits as the textual context bundle consumed by
// evaluation prompts. Each passage carries its provenance header.
func FormatContext(hits []index.Hit) string {
	if len(hits) == 0 {
		return NoContextFound
	}

	blocks := make([]string, len(hits))
	for n, hit := range hits {
		blocks[n] = fmt.Sprintf("[File: %s | Type: %s | Page: %d. | Score: %.3f]\n%s",
			hit.Filename, hit.DocType, hit.PageNumber, hit.Score, hit.Text)
	}
	return strings.Join(blocks, contextSeparator)
}
