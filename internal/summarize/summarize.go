// Package summarize derives a short natural-language synopsis from
// extracted document text.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seonho/docvault/internal/llm"
)

const systemPrompt = "You are a document summarization assistant. " +
	"Please provide a concise summary of the following document content in 3-5 sentences."

const defaultModel = "gpt-4o-mini"

// Summarizer turns extracted text into a synopsis via a generation
// client. A nil client means the capability was never configured;
// summarization is then skipped, not failed.
type Summarizer struct {
	client llm.Client
	model  string
}

func New(client llm.Client, model string) *Summarizer {
	if model == "" {
		model = defaultModel
	}
	return &Summarizer{client: client, model: model}
}

// Summarize returns the generated summary, or "" with a nil error when no
// summary could be produced for a non-fatal reason (capability not
// configured, empty input, empty response). An error is returned only
// when the generation call itself fails.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.client == nil {
		slog.Warn("summarizer not configured, skipping summary generation")
		return "", nil
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	out, err := s.client.Generate(ctx, systemPrompt, text, llm.GenConfig{
		Model:       s.model,
		Temperature: 0.3,
		MaxTokens:   300,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	return strings.TrimSpace(out), nil
}
