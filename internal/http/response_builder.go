// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.
// It provides a fluent API so that every handler emits the same envelope
// shapes and headers.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// ResponseBuilder provides a fluent API for building JSON and file responses.
type ResponseBuilder struct {
	statusCode  int
	headers     map[string]string
	payload     any
	raw         []byte
	contentType string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header sets a custom header.
func (b *ResponseBuilder) Header(key, value string) *ResponseBuilder {
	b.headers[key] = value
	return b
}

// JSON sets v as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	b.raw = nil
	return b
}

// Message sets a {"message": msg} body.
func (b *ResponseBuilder) Message(msg string) *ResponseBuilder {
	return b.JSON(map[string]string{"message": msg})
}

// Error sets an {"error": msg} body, the shape used by the receipt API.
func (b *ResponseBuilder) Error(msg string) *ResponseBuilder {
	return b.JSON(map[string]string{"error": msg})
}

// Attachment sets a downloadable file body.
func (b *ResponseBuilder) Attachment(filename, contentType string, data []byte) *ResponseBuilder {
	b.payload = nil
	b.raw = data
	b.contentType = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	return b
}

// Write sends the response. Encoding failures turn into a 500.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}

	if b.raw != nil {
		w.Header().Set("Content-Type", b.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(b.raw)))
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(b.raw)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Server Error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// Common response helpers

func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Message(message)
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnauthorizedError() *ResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "Not authorized, no token")
}

// InternalServerError hides the cause from the client; callers log it.
func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "Server Error")
}

func TooManyRequestsError() *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Too many requests, please try again later.")
}
