package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/log"
)

// Classifier runs OCR followed by analysis, bounding concurrent OCR work.
type Classifier struct {
	ocr      OCR
	analyzer Analyzer
	ocrSem   chan struct{}
	logger   *log.Logger
}

// NewClassifier builds a classifier. analyzer may be nil, in which case only
// the deterministic rules run. concurrency below 1 is treated as 1.
func NewClassifier(ocr OCR, analyzer Analyzer, concurrency int) *Classifier {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Classifier{
		ocr:      ocr,
		analyzer: analyzer,
		ocrSem:   make(chan struct{}, concurrency),
		logger:   log.Default(log.ComponentReceipt),
	}
}

// Process extracts a Result from an image. Only OCR failures are errors;
// analysis problems fall back to the rules.
func (c *Classifier) Process(ctx context.Context, image []byte, mime string) (Result, error) {
	text, err := c.runOCR(ctx, image, mime)
	if err != nil {
		return Result{}, fmt.Errorf("OCR processing failed: %w", err)
	}
	text = strings.TrimSpace(text)

	if c.analyzer == nil {
		return Fallback(text), nil
	}
	res, err := c.analyzer.Analyze(ctx, text)
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			c.logger.WarnContext(ctx, "Analysis failed, using fallback rules",
				log.FieldOperation, log.OpClassify,
				log.FieldError, err)
		}
		return Fallback(text), nil
	}
	return res, nil
}

func (c *Classifier) runOCR(ctx context.Context, image []byte, mime string) (string, error) {
	select {
	case c.ocrSem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-c.ocrSem }()

	return c.ocr.ExtractText(ctx, image, mime)
}
