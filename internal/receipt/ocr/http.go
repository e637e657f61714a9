// Package ocr holds OCR engine adapters for the receipt classifier.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes caps the sidecar reply.
const maxResponseBytes = 1 << 20

// HTTPEngine posts raw image bytes to an OCR sidecar that answers with
// {"text": "..."}.
type HTTPEngine struct {
	url    string
	client *http.Client
}

func NewHTTPEngine(url string, timeout time.Duration) *HTTPEngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEngine{url: url, client: &http.Client{Timeout: timeout}}
}

func (e *HTTPEngine) ExtractText(ctx context.Context, image []byte, mime string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mime)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ocr service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	return out.Text, nil
}
