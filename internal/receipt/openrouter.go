package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "microsoft/mai-ds-r1:free"
	DefaultOpenRouterReferer = "http://localhost:5000"
	openRouterTitle          = "Receipt Processing Server"
)

const systemPrompt = "You are an expert receipt analyzer. Extract information from receipt text and return ONLY a valid JSON object with these exact fields: category, amount, date. \n\n" +
	"Categories must be one of: 'Food & Dining', 'Groceries', 'Gas & Fuel', 'Shopping', 'Healthcare', 'Transportation', 'Entertainment', 'Utilities', 'Other'. \n\n" +
	"For categorization: \n" +
	"- 'Food & Dining': restaurants, cafes, fast food, food delivery, bars, coffee shops, bakeries, OR any receipt containing food/drink items like: tea, coffee, beef, chicken, pizza, burger, sandwich, salad, rice, bread, milk, eggs, fruits, vegetables, meat, seafood, beverages, etc.\n" +
	"- 'Groceries': supermarkets, grocery stores, food markets, OR receipts with multiple food items for home consumption\n" +
	"- Look for food/drink item names in the receipt text, not just merchant names\n\n" +
	"Amount should be a number without currency symbols. Date should be in MM/DD/YYYY format if found, or empty string if not found. " +
	"If any field is unknown or cannot be determined, return empty string for that field."

const userPrompt = "Analyze this receipt text and extract the information. Pay special attention to individual food/drink items mentioned (like tea, beef, chicken, coffee, etc.) to determine if this should be categorized as 'Food & Dining' or 'Groceries'. Return empty string for any unknown fields:\n\n"

// OpenRouterConfig configures the OpenRouter analyzer.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Referer string
	Timeout time.Duration
}

// OpenRouterAnalyzer asks an OpenRouter chat model to interpret receipt text.
type OpenRouterAnalyzer struct {
	client *openai.Client
	model  string
}

// headerTransport adds the attribution headers OpenRouter expects.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	return t.base.RoundTrip(r)
}

// NewOpenRouterAnalyzer returns ErrNotConfigured when no API key is set.
func NewOpenRouterAnalyzer(cfg OpenRouterConfig) (*OpenRouterAnalyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenRouterModel
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultOpenRouterReferer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": cfg.Referer,
				"X-Title":      openRouterTitle,
			},
		},
	}
	return &OpenRouterAnalyzer{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}, nil
}

func (a *OpenRouterAnalyzer) Analyze(ctx context.Context, text string) (Result, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.1,
		MaxTokens:   200,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt + text},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openrouter completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errors.New("openrouter returned no choices")
	}
	return ParseModelReply(resp.Choices[0].Message.Content)
}

// ParseModelReply decodes a model reply, tolerating markdown code fences and
// numeric or string amounts.
func ParseModelReply(reply string) (Result, error) {
	reply = stripFences(reply)

	var raw struct {
		Category json.RawMessage `json:"category"`
		Amount   json.RawMessage `json:"amount"`
		Date     json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return Result{}, fmt.Errorf("decode model reply: %w", err)
	}
	return Result{
		Category: scalarText(raw.Category),
		Amount:   scalarText(raw.Amount),
		Date:     scalarText(raw.Date),
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func scalarText(m json.RawMessage) string {
	if len(m) == 0 || string(m) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(m, &n); err == nil {
		return n.String()
	}
	return ""
}
