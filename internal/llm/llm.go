// Package llm provides chat-completion clients for text generation.
package llm

import "context"

// GenConfig carries sampling settings for a single generation.
type GenConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Client is a text-in/text-out generation capability.
type Client interface {
	// Generate sends the system instruction and user text and returns
	// the generated text.
	Generate(ctx context.Context, system, user string, cfg GenConfig) (string, error)
}
