package hint

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/document"
	"github.com/poiesic/veridoc/retry"
)

// noContent stands in for the document body when extraction produced no pages.
const noContent = "[No content available]"

// DefaultDocumentBudget is the per-prompt document budget in estimated
// tokens. Documents above it are queried segment by segment.
const DefaultDocumentBudget = 100000

// Generator produces best-guess answers for audit criteria from the raw,
// unchunked document text. Answers bias retrieval toward promising phrasings
// and give the evaluator an advisory cross-check; they are never authoritative.
type Generator struct {
	generator ai.LanguageModel
	policy    retry.Policy
	docBudget int
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for batch generation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(g *Generator) error {
		if size < 1 {
			size = 1
		}

		if g.pool != nil {
			g.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		g.pool = pool
		return nil
	}
}

// WithRetryPolicy overrides the backoff schedule used for model invocations.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(g *Generator) error {
		if policy.MaxAttempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		g.policy = policy
		return nil
	}
}

// WithDocumentBudget sets the per-prompt document budget in estimated
// tokens. Values below 1 fall back to 1.
func WithDocumentBudget(maxTokens int) Option {
	return func(g *Generator) error {
		if maxTokens < 1 {
			maxTokens = 1
		}
		g.docBudget = maxTokens
		return nil
	}
}

// NewGenerator creates a possible-answer generator backed by the provider's
// language model.
func NewGenerator(provider ai.AIProvider, opts ...Option) (*Generator, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		generator: provider.LanguageModel(),
		policy:    retry.DefaultPolicy(),
		docBudget: DefaultDocumentBudget,
		pool:      pool,
		logger:    slog.Default().With("component", "hint-generator"),
	}

	for _, opt := range opts {
		if optErr := opt(g); optErr != nil {
			g.Release()
			return nil, optErr
		}
	}

	return g, nil
}

// Generate produces a possible answer for a single criterion from the raw
// document. Documents within the budget go to the model whole; larger ones
// are queried one page-aligned segment at a time and the first found answer
// wins. Invocation and parse failures are retried under the backoff policy;
// once attempts are exhausted the answer degrades to not-found. Generate
// never returns an error.
func (g *Generator) Generate(ctx context.Context, criterion string, doc core.RawDocument) core.PossibleAnswer {
	segments := document.LLMSegments(doc, g.docBudget)
	if len(segments) == 0 {
		segments = []document.Segment{{Text: noContent}}
	}
	if len(segments) > 1 {
		g.logger.Debug("document exceeds prompt budget, querying per segment",
			"criterion", clip(criterion, 50), "segments", len(segments))
	}

	for _, segment := range segments {
		answer, err := g.generateFromContent(ctx, criterion, segment.Text)
		if err != nil {
			g.logger.Warn("possible answer generation failed, continuing without hint",
				"criterion", clip(criterion, 50), "error", err)
			return core.PossibleAnswer{Criterion: criterion}
		}
		if answer.Found {
			return answer
		}
	}

	return core.PossibleAnswer{Criterion: criterion}
}

// generateFromContent runs one prompt-and-parse pass under the retry policy.
func (g *Generator) generateFromContent(ctx context.Context, criterion, content string) (core.PossibleAnswer, error) {
	prompt := buildPrompt(criterion, content)

	var answer core.PossibleAnswer
	operation := func() error {
		response, err := g.generator.Generate(ctx, prompt)
		if err != nil {
			return err
		}

		parsed, err := parseResponse(criterion, response)
		if err != nil {
			return err
		}

		answer = parsed
		return nil
	}

	if err := g.policy.Do(ctx, operation); err != nil {
		return core.PossibleAnswer{}, err
	}
	return answer, nil
}

// GenerateBatch produces one possible answer per criterion, running the
// generations concurrently on the worker pool. A failed generation degrades
// to a not-found answer for that criterion only; the map always contains
// exactly one entry per distinct input criterion.
func (g *Generator) GenerateBatch(ctx context.Context, criteria []string, doc core.RawDocument) map[string]core.PossibleAnswer {
	answers := make(map[string]core.PossibleAnswer, len(criteria))
	if len(criteria) == 0 {
		return answers
	}

	results := make([]core.PossibleAnswer, len(criteria))

	var wg sync.WaitGroup
	for n := range criteria {
		wg.Add(1)
		criterion := criteria[n]
		slot := n
		if err := g.pool.Submit(func() {
			defer wg.Done()
			results[slot] = g.Generate(ctx, criterion, doc)
		}); err != nil {
			wg.Done()
			g.logger.Error("failed to schedule possible answer generation",
				"criterion", clip(criterion, 50), "error", err)
			results[slot] = core.PossibleAnswer{Criterion: criterion}
		}
	}
	wg.Wait()

	for n := range criteria {
		answers[criteria[n]] = results[n]
	}
	return answers
}

// Release releases the worker pool.
// The generator should not be used after calling Release.
func (g *Generator) Release() {
	if g.pool != nil {
		g.pool.Release()
	}
}

func buildPrompt(criterion, content string) string {
	return fmt.Sprintf(`You are an expert document analyst. Your task is to find information in a document that answers a specific audit criterion.

AUDIT CRITERION TO FIND:
%s

DOCUMENT CONTENT:
%s

INSTRUCTIONS:
1. Carefully read the entire document content
2. Find any information that directly or indirectly answers the criterion
3. If you find relevant information, extract the key points and note which pages contain the evidence
4. If no relevant information is found, indicate that clearly

Respond ONLY in valid JSON format (no markdown, no additional text):

{
    "found": true or false,
    "answer": "A concise summary of the relevant information found, or empty string if not found",
    "relevant_pages": [list of page numbers where the information was found, or empty list]
}

CRITICAL RULES:
- Set "found" to true ONLY if you find information that actually addresses the criterion
- The "answer" should summarize what you found, not quote the entire text
- Include ALL page numbers where relevant information appears
- If nothing relevant is found, set "found" to false and "answer" to empty string
`, criterion, content)
}

// hintResponse is the wire shape of a possible-answer reply. Pages arrive as
// numbers; some models emit them as floats.
type hintResponse struct {
	Found         bool      `json:"found"`
	Answer        string    `json:"answer"`
	RelevantPages []float64 `json:"relevant_pages"`
}

// parseResponse decodes a model reply into a PossibleAnswer. A not-found
// reply clears the answer text and pages regardless of what else the model
// returned.
func parseResponse(criterion, response string) (core.PossibleAnswer, error) {
	clean := ai.StripCodeFences(response)

	var raw hintResponse
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return core.PossibleAnswer{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !raw.Found {
		return core.PossibleAnswer{Criterion: criterion}, nil
	}

	pages := make([]int, len(raw.RelevantPages))
	for n, page := range raw.RelevantPages {
		pages[n] = int(page)
	}

	return core.PossibleAnswer{
		Criterion: criterion,
		Found:     true,
		Answer:    raw.Answer,
		Pages:     core.SortedUniquePages(pages),
	}, nil
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
