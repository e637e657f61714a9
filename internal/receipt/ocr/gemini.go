package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

const transcribePrompt = "Transcribe all text printed on this receipt exactly as it appears, one line per printed line. " +
	"Return only the transcribed text with no commentary or formatting."

// GeminiEngine transcribes receipt images with a Gemini multimodal model.
type GeminiEngine struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiEngine(ctx context.Context, apiKey, model string) (*GeminiEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	return &GeminiEngine{client: client, model: m}, nil
}

func (e *GeminiEngine) ExtractText(ctx context.Context, image []byte, mime string) (string, error) {
	resp, err := e.model.GenerateContent(ctx,
		genai.Text(transcribePrompt),
		genai.Blob{MIMEType: mime, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}

func (e *GeminiEngine) Close() error {
	return e.client.Close()
}
