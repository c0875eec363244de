package audit

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/bm25"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/document"
	"github.com/poiesic/veridoc/hint"
	"github.com/poiesic/veridoc/index"
	"github.com/poiesic/veridoc/retrieval"
)

// Auditor runs complete compliance audits of indexed documents. One Run
// covers one document: an optional possible-answer pre-pass over the raw
// text, then one evaluation task per criterion, then report assembly.
//
// A single criterion's failure degrades that criterion's result to ERROR;
// it never aborts the rest of the audit.
type Auditor struct {
	searcher    index.Searcher
	provider    ai.AIProvider
	retriever   *retrieval.Retriever
	evaluator   *Evaluator
	hints       *hint.Generator
	extractor   document.Extractor
	documentDir string
	useHints    bool
	deepSearch  bool
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures an Auditor.
type Option func(*Auditor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent criterion tasks.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(a *Auditor) error {
		if size < 1 {
			size = 1
		}

		if a.pool != nil {
			a.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		a.pool = pool
		return nil
	}
}

// WithPossibleAnswers toggles the possible-answer pre-pass. When enabled,
// the raw document is read from disk and a hint is generated per criterion
// before evaluation begins. Disabled by default.
func WithPossibleAnswers(enabled bool) Option {
	return func(a *Auditor) error {
		a.useHints = enabled
		return nil
	}
}

// WithDeepSearch toggles the iterative deep-research loop. When disabled,
// each criterion is judged from a single retrieval round. Enabled by
// default.
func WithDeepSearch(enabled bool) Option {
	return func(a *Auditor) error {
		a.deepSearch = enabled
		return nil
	}
}

// WithExtractor sets the raw-document extractor used by the
// possible-answer pre-pass. Default is document.NewTextExtractor().
func WithExtractor(extractor document.Extractor) Option {
	return func(a *Auditor) error {
		if extractor == nil {
			extractor = document.NewTextExtractor()
		}
		a.extractor = extractor
		return nil
	}
}

// WithDocumentDir sets the directory searched first when resolving the raw
// document file for the possible-answer pre-pass. The bare document name is
// always tried as a fallback.
func WithDocumentDir(dir string) Option {
	return func(a *Auditor) error {
		a.documentDir = dir
		return nil
	}
}

// NewAuditor creates an auditor over an indexed document store.
func NewAuditor(searcher index.Searcher, provider ai.AIProvider, encoder *bm25.Encoder, opts ...Option) (*Auditor, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	retriever, err := retrieval.NewRetriever(searcher, provider, encoder)
	if err != nil {
		return nil, err
	}

	evaluator, err := NewEvaluator(provider)
	if err != nil {
		return nil, err
	}

	generator, err := hint.NewGenerator(provider)
	if err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		generator.Release()
		return nil, err
	}

	a := &Auditor{
		searcher:   searcher,
		provider:   provider,
		retriever:  retriever,
		evaluator:  evaluator,
		hints:      generator,
		extractor:  document.NewTextExtractor(),
		deepSearch: true,
		pool:       pool,
		logger:     slog.Default().With("component", "auditor"),
	}

	for _, opt := range opts {
		if optErr := opt(a); optErr != nil {
			a.Release()
			return nil, optErr
		}
	}

	return a, nil
}

// Run audits one document against the criteria and returns the aggregate
// report. Criteria are evaluated concurrently; results keep input order.
func (a *Auditor) Run(ctx context.Context, documentName, docType string, criteria []core.Criterion) (core.AuditReport, error) {
	if len(criteria) == 0 {
		return core.AuditReport{}, ErrNoCriteria
	}

	metrics := NewMetrics()
	metrics.StartAudit()

	filter := index.Filter{Filename: documentName, DocType: docType}

	var answers map[string]core.PossibleAnswer
	if a.useHints {
		answers = a.generateHints(ctx, documentName, criteria)
	}

	results := make([]core.CriterionResult, len(criteria))

	if a.deepSearch {
		if err := a.runDeep(ctx, filter, criteria, answers, results, metrics); err != nil {
			return core.AuditReport{}, err
		}
	} else {
		a.runSinglePass(ctx, filter, criteria, answers, results, metrics)
	}

	metrics.FinishAudit()
	report := buildReport(documentName, results)

	snapshot := metrics.Snapshot()
	a.logger.Info("audit complete",
		"document", documentName,
		"run_id", report.RunId,
		"present", report.CriteriaPresent,
		"absent", report.CriteriaAbsent,
		"compliance_rate", report.ComplianceRate,
		"elapsed", snapshot.TotalElapsed,
		"avg_confidence", snapshot.AvgConfidence)

	return report, nil
}

// Release releases the worker pools.
// The auditor should not be used after calling Release.
func (a *Auditor) Release() {
	if a.hints != nil {
		a.hints.Release()
	}
	if a.pool != nil {
		a.pool.Release()
	}
}

// runDeep evaluates every criterion through the deep-research agent, one
// pool task per criterion.
func (a *Auditor) runDeep(ctx context.Context, filter index.Filter, criteria []core.Criterion,
	answers map[string]core.PossibleAnswer, results []core.CriterionResult, metrics *Metrics) error {
	agent, err := NewAgent(ctx, a.searcher, a.retriever, a.evaluator, a.provider, filter, answers)
	if err != nil {
		return err
	}

	a.logger.Info("starting deep audit",
		"document", filter.Filename, "criteria", len(criteria), "limit", agent.Limit())

	var wg sync.WaitGroup
	for n := range criteria {
		wg.Add(1)
		criterion := criteria[n]
		slot := n
		if submitErr := a.pool.Submit(func() {
			defer wg.Done()
			started := time.Now()
			result, searchErr := agent.Search(ctx, criterion)
			if searchErr != nil {
				a.logger.Error("criterion audit failed",
					"criterion", clip(criterion.Query, 50), "error", searchErr)
				result = errorResult(criterion.Query, searchErr)
			}
			results[slot] = result
			metrics.FinishCriterion(criterion.Query, time.Since(started), result.Confidence)
		}); submitErr != nil {
			wg.Done()
			a.logger.Error("failed to schedule criterion audit",
				"criterion", clip(criterion.Query, 50), "error", submitErr)
			results[slot] = errorResult(criterion.Query, submitErr)
		}
	}
	wg.Wait()

	return nil
}

// runSinglePass evaluates every criterion from one retrieval round, without
// the agent loop. Criteria run sequentially.
func (a *Auditor) runSinglePass(ctx context.Context, filter index.Filter, criteria []core.Criterion,
	answers map[string]core.PossibleAnswer, results []core.CriterionResult, metrics *Metrics) {
	a.logger.Info("starting single-pass audit",
		"document", filter.Filename, "criteria", len(criteria))

	for n, criterion := range criteria {
		started := time.Now()
		result, err := a.evaluateOnce(ctx, criterion, filter, answers)
		if err != nil {
			a.logger.Error("criterion audit failed",
				"criterion", clip(criterion.Query, 50), "error", err)
			result = errorResult(criterion.Query, err)
		}
		results[n] = result
		metrics.FinishCriterion(criterion.Query, time.Since(started), result.Confidence)
	}
}

// evaluateOnce retrieves once for the criterion text and judges that single
// context, using the hint-aware paths when a possible answer exists.
func (a *Auditor) evaluateOnce(ctx context.Context, criterion core.Criterion, filter index.Filter,
	answers map[string]core.PossibleAnswer) (core.CriterionResult, error) {
	var answer *core.PossibleAnswer
	if found, ok := answers[criterion.Query]; ok {
		answer = &found
	}

	retrieved, err := a.retriever.Retrieve(ctx, criterion.Query, filter, answer, 0)
	if err != nil {
		return core.CriterionResult{}, err
	}

	return a.evaluator.Evaluate(ctx, criterion.Query, retrieved.Context, retrieved.Pages(), answer)
}

// generateHints runs the possible-answer pre-pass. Any failure disables
// hints for the run rather than aborting the audit.
func (a *Auditor) generateHints(ctx context.Context, documentName string, criteria []core.Criterion) map[string]core.PossibleAnswer {
	path, ok := a.resolveDocument(documentName)
	if !ok {
		a.logger.Warn("raw document not found, continuing without possible answers",
			"document", documentName)
		return nil
	}

	doc, err := a.extractor.ExtractFullText(path)
	if err != nil {
		a.logger.Warn("raw document extraction failed, continuing without possible answers",
			"document", documentName, "error", err)
		return nil
	}

	queries := make([]string, len(criteria))
	for n, criterion := range criteria {
		queries[n] = criterion.Query
	}

	answers := a.hints.GenerateBatch(ctx, queries, doc)

	found := 0
	for _, answer := range answers {
		if answer.Found {
			found++
		}
	}
	a.logger.Info("possible answers generated",
		"document", documentName, "pages", doc.TotalPages,
		"found", found, "criteria", len(queries))

	return answers
}

// resolveDocument locates the raw document file for the pre-pass.
func (a *Auditor) resolveDocument(documentName string) (string, bool) {
	candidates := []string{documentName}
	if a.documentDir != "" {
		candidates = []string{filepath.Join(a.documentDir, documentName), documentName}
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// errorResult degrades a failed criterion task to an ERROR verdict.
func errorResult(criterion string, err error) core.CriterionResult {
	return core.CriterionResult{
		Criterion:  criterion,
		Status:     core.StatusError,
		Evidence:   "Error: " + clip(err.Error(), 100),
		Confidence: 0.0,
		Pages:      []int{},
	}
}

// buildReport aggregates per-criterion results into the final report.
// The compliance rate counts only valid (non-ERROR) verdicts.
func buildReport(documentName string, results []core.CriterionResult) core.AuditReport {
	present := 0
	absent := 0
	for _, result := range results {
		switch result.Status {
		case core.StatusPresent:
			present++
		case core.StatusAbsent:
			absent++
		}
	}

	rate := 0.0
	if present+absent > 0 {
		rate = math.Round(float64(present)/float64(present+absent)*100*100) / 100
	}

	return core.AuditReport{
		RunId:           uuid.NewString(),
		Document:        documentName,
		TotalCriteria:   len(results),
		CriteriaPresent: present,
		CriteriaAbsent:  absent,
		ComplianceRate:  rate,
		Results:         results,
	}
}
