package main

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const maxBlurbLen = 200

const blurbPrompt = `Tu rédiges le pied de page d'une démo visuelle web.

Démo : %s
Description : %s

Écris UNE seule phrase en anglais, de moins de 20 mots, qui décrit ce que
l'utilisateur voit à l'écran. Réponds UNIQUEMENT avec la phrase, sans
guillemets ni markdown.`

// WriteBlurb asks Gemini Flash for a one-sentence info text for a demo.
func (g *GeminiClient) WriteBlurb(ctx context.Context, d Demo) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(blurbPrompt, d.Name, d.Desc)},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.7)),
			TopP:             genai.Ptr(float32(0.95)),
			ResponseMIMEType: "text/plain",
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return cleanBlurb(resp.Text())
}

// cleanBlurb trims quotes and whitespace and rejects empty or oversized
// answers.
func cleanBlurb(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'`“”")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	if len(text) > maxBlurbLen {
		return "", fmt.Errorf("gemini response too long: %d bytes", len(text))
	}
	return text, nil
}
