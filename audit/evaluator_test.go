package audit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/veridoc/ai/mock"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *mock.MockLanguageModel) {
	t.Helper()

	generator := mock.NewMockLanguageModel()
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), generator)

	evaluator, err := NewEvaluator(provider)
	require.NoError(t, err)
	return evaluator, generator
}

func TestNewEvaluator(t *testing.T) {
	t.Run("valid provider", func(t *testing.T) {
		evaluator, err := NewEvaluator(mock.NewMockProvider())
		require.NoError(t, err)
		assert.NotNil(t, evaluator)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewEvaluator(nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestEvaluate(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)
	generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return `{"status": "PRESENT", "evidence": "As partes manterão sigilo absoluto.", "confidence": 0.92, "relevant_pages": [3, 1, 3]}`, nil
	}

	result, err := evaluator.Evaluate(context.Background(),
		"Is there a confidentiality or secrecy clause?", "some document context", []int{9}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Is there a confidentiality or secrecy clause?", result.Criterion)
	assert.Equal(t, core.StatusPresent, result.Status)
	assert.Equal(t, "As partes manterão sigilo absoluto.", result.Evidence)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
	assert.Equal(t, []int{1, 3}, result.Pages)

	prompt := generator.LastPrompt()
	assert.Contains(t, prompt, "Is there a confidentiality or secrecy clause?")
	assert.Contains(t, prompt, "some document context")
	assert.NotContains(t, prompt, "LLM POSSIBLE ANSWER")
}

func TestEvaluate_HintPromptSeparatesSources(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)

	hint := &core.PossibleAnswer{
		Criterion: "Is there mention of the Settlement process?",
		Found:     true,
		Answer:    "Settlement completes within two business days.",
		Pages:     []int{4, 6},
	}
	_, err := evaluator.Evaluate(context.Background(),
		"Is there mention of the Settlement process?", "document context here", []int{4}, hint)
	require.NoError(t, err)

	prompt := generator.LastPrompt()
	assert.Contains(t, prompt, "DOCUMENT CONTEXT (actual excerpts from the document)")
	assert.Contains(t, prompt, "LLM POSSIBLE ANSWER")
	assert.Contains(t, prompt, "Settlement completes within two business days.")
	assert.Contains(t, prompt, "Suggested pages: [4 6]")
	assert.Contains(t, prompt, "EXACT QUOTE from DOCUMENT CONTEXT only")
}

func TestEvaluate_NotFoundHintUsesPlainPrompt(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)

	hint := &core.PossibleAnswer{Criterion: "c", Found: false}
	_, err := evaluator.Evaluate(context.Background(), "c", "context", nil, hint)
	require.NoError(t, err)

	assert.NotContains(t, generator.LastPrompt(), "LLM POSSIBLE ANSWER")
}

func TestEvaluate_FoundHintWithEmptyAnswer(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)

	hint := &core.PossibleAnswer{Criterion: "c", Found: true, Answer: ""}
	_, err := evaluator.Evaluate(context.Background(), "c", "context", nil, hint)
	require.NoError(t, err)

	assert.Contains(t, generator.LastPrompt(), "Not available")
}

func TestEvaluate_Defaults(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantStatus     core.CriterionStatus
		wantEvidence   string
		wantConfidence float64
		wantPages      []int
	}{
		{
			name:           "missing status defaults to absent",
			response:       `{"evidence": "e", "confidence": 0.9, "relevant_pages": [2]}`,
			wantStatus:     core.StatusAbsent,
			wantEvidence:   "e",
			wantConfidence: 0.9,
			wantPages:      []int{2},
		},
		{
			name:           "unknown status normalizes to absent",
			response:       `{"status": "MAYBE", "evidence": "e", "confidence": 0.9, "relevant_pages": [2]}`,
			wantStatus:     core.StatusAbsent,
			wantEvidence:   "e",
			wantConfidence: 0.9,
			wantPages:      []int{2},
		},
		{
			name:           "missing evidence defaults",
			response:       `{"status": "ABSENT", "confidence": 0.4, "relevant_pages": []}`,
			wantStatus:     core.StatusAbsent,
			wantEvidence:   "Could not determine",
			wantConfidence: 0.4,
			wantPages:      []int{},
		},
		{
			name:           "explicit empty evidence is kept",
			response:       `{"status": "ABSENT", "evidence": "", "confidence": 0.4, "relevant_pages": []}`,
			wantStatus:     core.StatusAbsent,
			wantEvidence:   "",
			wantConfidence: 0.4,
			wantPages:      []int{},
		},
		{
			name:           "missing confidence defaults to half",
			response:       `{"status": "PRESENT", "evidence": "e", "relevant_pages": [5]}`,
			wantStatus:     core.StatusPresent,
			wantEvidence:   "e",
			wantConfidence: 0.5,
			wantPages:      []int{5},
		},
		{
			name:           "missing pages fall back to retrieved pages",
			response:       `{"status": "PRESENT", "evidence": "e", "confidence": 0.8}`,
			wantStatus:     core.StatusPresent,
			wantEvidence:   "e",
			wantConfidence: 0.8,
			wantPages:      []int{7, 9},
		},
		{
			name:           "confidence is clamped",
			response:       `{"status": "PRESENT", "evidence": "e", "confidence": 1.5, "relevant_pages": [1]}`,
			wantStatus:     core.StatusPresent,
			wantEvidence:   "e",
			wantConfidence: 1.0,
			wantPages:      []int{1},
		},
		{
			name:           "float pages are coerced",
			response:       `{"status": "PRESENT", "evidence": "e", "confidence": 0.8, "relevant_pages": [3.0, 1.0]}`,
			wantStatus:     core.StatusPresent,
			wantEvidence:   "e",
			wantConfidence: 0.8,
			wantPages:      []int{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluator, generator := newTestEvaluator(t)
			generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
				return tt.response, nil
			}

			result, err := evaluator.Evaluate(context.Background(), "criterion", "context", []int{7, 9}, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantEvidence, result.Evidence)
			assert.InDelta(t, tt.wantConfidence, result.Confidence, 1e-9)
			assert.Equal(t, tt.wantPages, result.Pages)
		})
	}
}

func TestEvaluate_StripsCodeFences(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)
	generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return "```json\n{\"status\": \"PRESENT\", \"evidence\": \"e\", \"confidence\": 0.9, \"relevant_pages\": [2]}\n```", nil
	}

	result, err := evaluator.Evaluate(context.Background(), "criterion", "context", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPresent, result.Status)
}

func TestEvaluate_RepairsUnquotedKey(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)
	generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return `{status": "PRESENT", "evidence": "e", "confidence": 0.9, "relevant_pages": [2]}`, nil
	}

	result, err := evaluator.Evaluate(context.Background(), "criterion", "context", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPresent, result.Status)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
}

func TestEvaluate_MalformedResponse(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)
	generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return "The document clearly establishes confidentiality on page 3.", nil
	}

	result, err := evaluator.Evaluate(context.Background(), "criterion", "context", []int{3}, nil)
	require.NoError(t, err)

	assert.Equal(t, core.StatusError, result.Status)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, []int{}, result.Pages)
	assert.True(t, strings.HasPrefix(result.Evidence, parseErrorPrefix))
	assert.LessOrEqual(t, len(result.Evidence), len(parseErrorPrefix)+100)
}

func TestEvaluate_TransportError(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)
	generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("connection reset")
	}

	_, err := evaluator.Evaluate(context.Background(), "criterion", "context", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "judgment invocation failed")
}

func TestEvaluateAccumulated(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)
	generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return `{"status": "PRESENT", "evidence": "e", "confidence": 0.85}`, nil
	}

	state := NewSearchState("Is there mention of penalties or fines?", 0.7, nil)
	state.AddRound("penalties", "block one", []int{2, 5})
	state.AddRound("fines and sanctions", retrieval.NoContextFound, nil)

	result, err := evaluator.EvaluateAccumulated(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, core.StatusPresent, result.Status)
	// Pages missing from the reply fall back to the accumulated set.
	assert.Equal(t, []int{2, 5}, result.Pages)

	prompt := generator.LastPrompt()
	assert.Contains(t, prompt, "FULL CONTEXT (from 2 searches):")
	assert.Contains(t, prompt, "block one")
	assert.Contains(t, prompt, "PAGES FOUND: [2 5]")
	assert.NotContains(t, prompt, retrieval.NoContextFound)
	assert.NotContains(t, prompt, "LLM POSSIBLE ANSWER")
}

func TestEvaluateAccumulated_HintSection(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)

	hint := &core.PossibleAnswer{
		Criterion: "c",
		Found:     true,
		Answer:    "Fees are 2% annually.",
		Pages:     []int{8},
	}
	state := NewSearchState("c", 0.7, hint)
	state.AddRound("fees", "block", []int{8})

	_, err := evaluator.EvaluateAccumulated(context.Background(), state)
	require.NoError(t, err)

	prompt := generator.LastPrompt()
	assert.Contains(t, prompt, "LLM POSSIBLE ANSWER")
	assert.Contains(t, prompt, "Fees are 2% annually.")
	assert.Contains(t, prompt, "NEVER copy it into the evidence field")
}

func TestEvaluateAccumulated_NoRoundsFoundContext(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)

	state := NewSearchState("c", 0.7, nil)
	state.AddRound("q", retrieval.NoContextFound, nil)

	_, err := evaluator.EvaluateAccumulated(context.Background(), state)
	require.NoError(t, err)

	prompt := generator.LastPrompt()
	assert.Contains(t, prompt, NoAccumulatedContext)
	assert.Contains(t, prompt, "PAGES FOUND: None")
}

func TestEvaluateAccumulated_MissingEvidenceStaysEmpty(t *testing.T) {
	evaluator, generator := newTestEvaluator(t)
	generator.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return `{"status": "ABSENT", "confidence": 0.3}`, nil
	}

	state := NewSearchState("c", 0.7, nil)
	state.AddRound("q", "block", nil)

	result, err := evaluator.EvaluateAccumulated(context.Background(), state)
	require.NoError(t, err)
	assert.Empty(t, result.Evidence)
}
