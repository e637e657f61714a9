// Package receipt extracts a category, amount and date from receipt images.
// Text is read by an OCR engine, interpreted by a language model when one is
// configured, and otherwise by deterministic keyword and pattern rules.
package receipt

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Categories the analyzer may return. "Other" is only produced by the model.
var Categories = []string{
	"Food & Dining",
	"Groceries",
	"Gas & Fuel",
	"Shopping",
	"Healthcare",
	"Transportation",
	"Entertainment",
	"Utilities",
	"Other",
}

var (
	ErrNotImage      = errors.New("only image files are allowed")
	ErrNotConfigured = errors.New("analyzer not configured")
)

// Result is always three strings; unknown fields are empty.
type Result struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

// OCR turns an image into text.
type OCR interface {
	ExtractText(ctx context.Context, image []byte, mime string) (string, error)
}

// Analyzer interprets receipt text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

var allowedImage = regexp.MustCompile(`jpeg|jpg|png|gif`)

// ValidateImage accepts a file only when both its extension and its declared
// MIME type name a supported image format.
func ValidateImage(filename, mime string) error {
	ext := strings.ToLower(filename)
	if i := strings.LastIndex(ext, "."); i >= 0 {
		ext = ext[i:]
	} else {
		ext = ""
	}
	if !allowedImage.MatchString(ext) || !allowedImage.MatchString(strings.ToLower(mime)) {
		return ErrNotImage
	}
	return nil
}
