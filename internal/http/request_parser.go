// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for reading JSON bodies and multipart
// uploads with size limits. Uploaded files are read into memory and never
// spill to disk.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

// maxJSONBody bounds single and bulk JSON bodies.
const maxJSONBody = 2 << 20

var (
	ErrInvalidBody  = errors.New("invalid request body")
	ErrBodyTooLarge = errors.New("request body too large")
	ErrNoFile       = errors.New("no file provided")
	ErrFileTooLarge = errors.New("file too large")
)

// Upload is a file read from a multipart form field.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// decodeJSON reads exactly one JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if dec.More() {
		return ErrInvalidBody
	}
	return nil
}

// decodeBatch reads a {"expenses": [...]} or {"incomes": [...]} body. A
// missing or null array yields no candidates and no error, leaving the empty
// batch to be reported by the service.
func decodeBatch(w http.ResponseWriter, r *http.Request, kind core.Kind) ([]core.Candidate, error) {
	var body map[string]json.RawMessage
	if err := decodeJSON(w, r, &body); err != nil {
		return nil, err
	}
	raw, ok := body[kind.Plural()]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var cs []core.Candidate
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return cs, nil
}

// readUpload streams the multipart body and returns the first part named
// field. Parts larger than maxBytes yield ErrFileTooLarge.
func readUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (Upload, error) {
	// Leave room for the other parts and the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	mr, err := r.MultipartReader()
	if err != nil {
		return Upload{}, ErrNoFile
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return Upload{}, ErrNoFile
		}
		if err != nil {
			return Upload{}, uploadError(err)
		}
		if part.FormName() != field || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		return readPart(part, maxBytes)
	}
}

func readPart(part *multipart.Part, maxBytes int64) (Upload, error) {
	defer part.Close()
	data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
	if err != nil {
		return Upload{}, uploadError(err)
	}
	if int64(len(data)) > maxBytes {
		return Upload{}, ErrFileTooLarge
	}
	if len(data) == 0 {
		return Upload{}, ErrNoFile
	}
	return Upload{
		Filename:    part.FileName(),
		ContentType: strings.TrimSpace(part.Header.Get("Content-Type")),
		Data:        data,
	}, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrFileTooLarge
	}
	return fmt.Errorf("%w: %v", ErrInvalidBody, err)
}

// sizeLabel renders a byte limit the way clients see it, e.g. "5MB".
func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
