// Package insights asks a hosted model about a user's dose history.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"google.golang.org/genai"
)

var ErrEmptyAnswer = errors.New("insights: model returned no text")

// Generator turns a prompt into prose.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}

// BuildPrompt serializes the logs one per line so the model sees them as text.
func BuildPrompt(userID, query string, logs []models.LogEntry) string {
	var b strings.Builder
	b.WriteString("You are a helpful medication adherence assistant for the MedTrack app.\n")
	fmt.Fprintf(&b, "User ID: %s\n", userID)
	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(query))

	if len(logs) == 0 {
		b.WriteString("The user has no medication log entries yet.\n")
	} else {
		b.WriteString("Medication log entries (most recent first):\n")
		for _, l := range logs {
			fmt.Fprintf(&b, "- %s at %s: %s", l.MedicationName, l.TakenAt.UTC().Format(time.RFC3339), l.Status)
			if l.Note != "" {
				fmt.Fprintf(&b, " (note: %s)", l.Note)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nAnswer in plain language. Point out adherence patterns, missed doses and practical tips. ")
	b.WriteString("Do not give a diagnosis; suggest consulting a healthcare professional for medical decisions.")
	return b.String()
}
