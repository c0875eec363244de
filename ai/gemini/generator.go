package gemini

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// Generator implements ai.LanguageModel using the Gemini API.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func newGenerator(client *genai.Client, model string, timeout time.Duration) *Generator {
	return &Generator{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  slog.Default().With("component", "gemini-generator"),
	}
}

// Generate sends a prompt to the model and returns its raw text response.
// Temperature is pinned to zero so repeated judgments over the same evidence
// stay stable.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating completion", "prompt_length", len(prompt))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		contents,
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0),
		},
	)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	return result.Text(), nil
}
