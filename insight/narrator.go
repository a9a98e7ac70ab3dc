package insight

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Narrator turns a list of insights into a short prose summary.
type Narrator interface {
	Narrate(ctx context.Context, insights []Insight) (string, error)
}

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = `You are a personal finance coach.
You receive a list of observations about the user's finances this month.
Write a short summary (at most 5 sentences) in plain markdown, most important first.
Be concrete, mention amounts, and end with one actionable suggestion.
Never invent figures that are not in the observations.`

// GeminiNarrator narrates insights with a Gemini model.
type GeminiNarrator struct {
	Client *genai.Client
	Model  string
}

// NewGeminiNarrator creates a narrator, the API key is read from the
// environment (GEMINI_API_KEY or GOOGLE_API_KEY).
func NewGeminiNarrator(ctx context.Context, model string) (*GeminiNarrator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiNarrator{Client: client, Model: model}, nil
}

// prompt lists the insights, one per line.
func prompt(insights []Insight) string {
	if len(insights) == 0 {
		return "Nothing notable happened this month."
	}
	var b strings.Builder
	for _, in := range insights {
		fmt.Fprintf(&b, "- [%s/%s] %s: %s\n", in.Severity, in.Kind, in.Title, in.Message)
	}
	return b.String()
}

func (g *GeminiNarrator) Narrate(ctx context.Context, insights []Insight) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	resp, err := g.Client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt(insights)), config)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from model %s", g.Model)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String()), nil
}
