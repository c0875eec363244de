package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/veridoc/ai"
	"github.com/poiesic/veridoc/core"
)

// parseErrorPrefix starts the evidence text of an ERROR verdict.
const parseErrorPrefix = "Error processing LLM response: "

// Evaluator turns retrieved evidence into a typed compliance verdict by
// prompting the language model and decoding its JSON reply.
//
// Malformed model output is a local condition: it degrades the verdict to
// an ERROR status instead of returning a Go error. Only transport failures
// of the model invocation itself surface as errors.
type Evaluator struct {
	generator ai.LanguageModel
	logger    *slog.Logger
}

// NewEvaluator creates an evaluator backed by the provider's language model.
func NewEvaluator(provider ai.AIProvider) (*Evaluator, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	return &Evaluator{
		generator: provider.LanguageModel(),
		logger:    slog.Default().With("component", "evaluator"),
	}, nil
}

// Evaluate judges a criterion against a single retrieval context. When a
// found hint is supplied the prompt separates the authoritative document
// context from the advisory possible answer; evidence may only come from
// the former.
func (e *Evaluator) Evaluate(ctx context.Context, criterion, contextText string, pages []int, hint *core.PossibleAnswer) (core.CriterionResult, error) {
	var prompt string
	if hint != nil && hint.Found {
		prompt = evaluateWithHintPrompt(criterion, contextText, hint)
	} else {
		prompt = evaluatePrompt(criterion, contextText)
	}

	response, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return core.CriterionResult{}, fmt.Errorf("judgment invocation failed: %w", err)
	}

	return e.parseVerdict(criterion, response, pages, "Could not determine"), nil
}

// EvaluateAccumulated judges a criterion over every round of evidence the
// search state has gathered so far.
func (e *Evaluator) EvaluateAccumulated(ctx context.Context, state *SearchState) (core.CriterionResult, error) {
	response, err := e.generator.Generate(ctx, accumulatedPrompt(state))
	if err != nil {
		return core.CriterionResult{}, fmt.Errorf("judgment invocation failed: %w", err)
	}

	return e.parseVerdict(state.Criterion, response, state.Pages(), ""), nil
}

// verdict is the wire shape of a judgment reply. Pointer fields distinguish
// absent keys from explicit zero values; pages arrive as numbers and some
// models emit them as floats.
type verdict struct {
	Status        string     `json:"status"`
	Evidence      *string    `json:"evidence"`
	Confidence    *float64   `json:"confidence"`
	RelevantPages *[]float64 `json:"relevant_pages"`
}

// parseVerdict decodes a judgment reply, applying the documented defaults
// for missing fields. Any decode failure degrades to an ERROR verdict with
// zero confidence and no pages.
func (e *Evaluator) parseVerdict(criterion, response string, fallbackPages []int, defaultEvidence string) core.CriterionResult {
	clean := ai.StripCodeFences(response)

	var v verdict
	if err := json.Unmarshal([]byte(clean), &v); err != nil {
		// One repair pass for the usual LLM quoting damage before giving up.
		if repairErr := json.Unmarshal([]byte(ai.RepairJSON(clean)), &v); repairErr != nil {
			e.logger.Warn("failed to parse judgment response",
				"criterion", clip(criterion, 50), "error", err)
			return core.CriterionResult{
				Criterion:  criterion,
				Status:     core.StatusError,
				Evidence:   parseErrorPrefix + clip(err.Error(), 100),
				Confidence: 0.0,
				Pages:      []int{},
			}
		}
	}

	evidence := defaultEvidence
	if v.Evidence != nil {
		evidence = *v.Evidence
	}

	confidence := 0.5
	if v.Confidence != nil {
		confidence = core.ClampConfidence(*v.Confidence)
	}

	pages := fallbackPages
	if v.RelevantPages != nil {
		pages = make([]int, len(*v.RelevantPages))
		for n, page := range *v.RelevantPages {
			pages[n] = int(page)
		}
	}

	return core.CriterionResult{
		Criterion:  criterion,
		Status:     core.NormalizeStatus(v.Status),
		Evidence:   evidence,
		Confidence: confidence,
		Pages:      core.SortedUniquePages(pages),
	}
}
