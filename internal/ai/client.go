// Package ai holds the generative-text collaborators: Gemini-backed
// transaction categorization, quick-add parsing and monthly summaries.
// Every caller treats the model as best-effort; deterministic fallbacks
// keep the application working when it is unavailable or returns garbage.
package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator is the minimal surface the rest of the package needs from a
// text model, kept narrow so tests can substitute a canned implementation.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiClient implements Generator over the Google GenAI SDK. The API key
// is taken from the environment by the SDK itself.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// stripCodeFences removes the Markdown wrappers models add even when told
// not to, so the remainder can be JSON-parsed.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
