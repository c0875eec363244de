package hint

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/veridoc/ai/mock"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDoc = core.RawDocument{
	Filename: "contract.pdf",
	Pages: []core.Page{
		{Number: 1, Text: "The parties and their registration numbers."},
		{Number: 2, Text: "Settlement occurs within two business days."},
	},
	TotalPages: 2,
	TotalChars: 87,
}

// fastPolicy keeps retry-path tests from sleeping for real.
var fastPolicy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}

func newTestGenerator(t *testing.T, model *mock.MockLanguageModel) *Generator {
	t.Helper()

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), model)
	generator, err := NewGenerator(provider, WithRetryPolicy(fastPolicy), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(generator.Release)
	return generator
}

func TestNewGenerator(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		generator, err := NewGenerator(mock.NewMockProvider())
		require.NoError(t, err)
		defer generator.Release()
		assert.NotNil(t, generator)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewGenerator(nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("invalid retry policy", func(t *testing.T) {
		_, err := NewGenerator(mock.NewMockProvider(), WithRetryPolicy(retry.Policy{}))
		assert.Equal(t, retry.ErrInvalidMaxAttempts, err)
	})

	t.Run("pool size clamped to one", func(t *testing.T) {
		generator, err := NewGenerator(mock.NewMockProvider(), WithPoolSize(0))
		require.NoError(t, err)
		defer generator.Release()
		assert.NotNil(t, generator)
	})
}

func TestGenerate(t *testing.T) {
	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return `{"found": true, "answer": "Settlement happens in two days.", "relevant_pages": [2, 1, 2]}`, nil
	}
	generator := newTestGenerator(t, model)

	answer := generator.Generate(context.Background(), "Does the document define settlement timing?", testDoc)

	assert.Equal(t, "Does the document define settlement timing?", answer.Criterion)
	assert.True(t, answer.Found)
	assert.Equal(t, "Settlement happens in two days.", answer.Answer)
	assert.Equal(t, []int{1, 2}, answer.Pages)

	prompt := model.LastPrompt()
	assert.Contains(t, prompt, "Does the document define settlement timing?")
	assert.Contains(t, prompt, "[Page 1]\nThe parties and their registration numbers.")
	assert.Contains(t, prompt, "[Page 2]\nSettlement occurs within two business days.")
}

func TestGenerate_NotFound(t *testing.T) {
	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return `{"found": false, "answer": "should be dropped", "relevant_pages": [4]}`, nil
	}
	generator := newTestGenerator(t, model)

	answer := generator.Generate(context.Background(), "criterion", testDoc)

	assert.False(t, answer.Found)
	assert.Empty(t, answer.Answer)
	assert.Empty(t, answer.Pages)
}

func TestGenerate_RetriesTransportFailure(t *testing.T) {
	calls := 0
	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return `{"found": true, "answer": "recovered", "relevant_pages": [1]}`, nil
	}
	generator := newTestGenerator(t, model)

	answer := generator.Generate(context.Background(), "criterion", testDoc)

	assert.Equal(t, 3, calls)
	assert.True(t, answer.Found)
	assert.Equal(t, "recovered", answer.Answer)
}

func TestGenerate_ExhaustedRetriesDegrade(t *testing.T) {
	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("model unavailable")
	}
	generator := newTestGenerator(t, model)

	answer := generator.Generate(context.Background(), "criterion", testDoc)

	assert.Equal(t, fastPolicy.MaxAttempts, model.CallCount())
	assert.Equal(t, "criterion", answer.Criterion)
	assert.False(t, answer.Found)
	assert.Empty(t, answer.Answer)
	assert.Empty(t, answer.Pages)
}

func TestGenerate_MalformedResponseRetriesThenDegrades(t *testing.T) {
	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return "I could not find anything relevant.", nil
	}
	generator := newTestGenerator(t, model)

	answer := generator.Generate(context.Background(), "criterion", testDoc)

	assert.Equal(t, fastPolicy.MaxAttempts, model.CallCount())
	assert.False(t, answer.Found)
}

func TestGenerate_EmptyDocument(t *testing.T) {
	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return `{"found": false, "answer": "", "relevant_pages": []}`, nil
	}
	generator := newTestGenerator(t, model)

	generator.Generate(context.Background(), "criterion", core.RawDocument{Filename: "empty.pdf"})

	assert.Contains(t, model.LastPrompt(), "[No content available]")
}

func TestGenerate_SegmentsOversizedDocument(t *testing.T) {
	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Settlement occurs") {
			return `{"found": true, "answer": "Two business days.", "relevant_pages": [2]}`, nil
		}
		return `{"found": false, "answer": "", "relevant_pages": []}`, nil
	}

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), model)
	// A 10-token budget holds roughly one page of the test document.
	generator, err := NewGenerator(provider,
		WithRetryPolicy(fastPolicy), WithPoolSize(1), WithDocumentBudget(10))
	require.NoError(t, err)
	defer generator.Release()

	answer := generator.Generate(context.Background(), "settlement timing", testDoc)

	assert.True(t, answer.Found)
	assert.Equal(t, "Two business days.", answer.Answer)
	assert.Equal(t, []int{2}, answer.Pages)

	// One call per segment until the answer was found.
	assert.Equal(t, 2, model.CallCount())
	assert.NotContains(t, model.Prompts()[0], "Settlement occurs")
	assert.Contains(t, model.Prompts()[1], "[Page 2]")
}

func TestGenerateBatch(t *testing.T) {
	criteria := []string{
		"Does the document identify the parties?",
		"Does the document define settlement timing?",
		"Does the document list penalties?",
	}

	model := mock.NewMockLanguageModel()
	model.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "identify the parties"):
			return `{"found": true, "answer": "Parties are listed on page 1.", "relevant_pages": [1]}`, nil
		case strings.Contains(prompt, "settlement timing"):
			return `{"found": false, "answer": "", "relevant_pages": []}`, nil
		default:
			return "", errors.New("model unavailable")
		}
	}
	generator := newTestGenerator(t, model)

	answers := generator.GenerateBatch(context.Background(), criteria, testDoc)

	require.Len(t, answers, len(criteria))
	for _, criterion := range criteria {
		answer, ok := answers[criterion]
		require.True(t, ok, "missing answer for %q", criterion)
		assert.Equal(t, criterion, answer.Criterion)
	}

	assert.True(t, answers[criteria[0]].Found)
	assert.Equal(t, []int{1}, answers[criteria[0]].Pages)
	assert.False(t, answers[criteria[1]].Found)
	assert.False(t, answers[criteria[2]].Found)
}

func TestGenerateBatch_Empty(t *testing.T) {
	model := mock.NewMockLanguageModel()
	generator := newTestGenerator(t, model)

	answers := generator.GenerateBatch(context.Background(), nil, testDoc)

	assert.Empty(t, answers)
	assert.Zero(t, model.CallCount())
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     core.PossibleAnswer
		wantErr  bool
	}{
		{
			name:     "plain json",
			response: `{"found": true, "answer": "yes", "relevant_pages": [3, 1]}`,
			want:     core.PossibleAnswer{Criterion: "c", Found: true, Answer: "yes", Pages: []int{1, 3}},
		},
		{
			name:     "code fenced",
			response: "```json\n{\"found\": true, \"answer\": \"yes\", \"relevant_pages\": [2]}\n```",
			want:     core.PossibleAnswer{Criterion: "c", Found: true, Answer: "yes", Pages: []int{2}},
		},
		{
			name:     "float page numbers",
			response: `{"found": true, "answer": "yes", "relevant_pages": [2.0, 5.0]}`,
			want:     core.PossibleAnswer{Criterion: "c", Found: true, Answer: "yes", Pages: []int{2, 5}},
		},
		{
			name:     "not found discards answer and pages",
			response: `{"found": false, "answer": "stray", "relevant_pages": [9]}`,
			want:     core.PossibleAnswer{Criterion: "c"},
		},
		{
			name:     "not json",
			response: "no relevant information",
			wantErr:  true,
		},
		{
			name:     "empty response",
			response: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse("c", tt.response)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
