package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

const recognizePrompt = "Transcribe all text visible in this image. " +
	"Return only the transcribed text with no commentary. " +
	"If the image contains no text, return an empty response."

// GeminiEngine recognizes image text with the Gemini API via the
// google.golang.org/genai SDK.
type GeminiEngine struct {
	apiKey  string
	model   string
	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiEngine creates a Gemini-backed OCR engine. model may be empty
// to use the default.
func NewGeminiEngine(apiKey, model string) *GeminiEngine {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiEngine{apiKey: apiKey, model: model}
}

func (g *GeminiEngine) ensureClient(ctx context.Context) error {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.initErr
}

// Recognize sends the image inline to Gemini and returns the transcribed
// text. An image with no recognizable text yields an empty string, not an
// error.
func (g *GeminiEngine) Recognize(ctx context.Context, dataURI string) (string, error) {
	if err := g.ensureClient(ctx); err != nil {
		return "", fmt.Errorf("gemini: client init failed: %w", err)
	}

	mediaType, data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mediaType, Data: data}},
			genai.NewPartFromText(recognizePrompt),
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	return strings.TrimSpace(geminiText(resp)), nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
