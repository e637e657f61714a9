package http

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/trace"
)

// writeServiceError maps a service error to the client response. Validation
// failures become 400 with their message; anything else is logged and
// reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, kind core.Kind, owner, op string, err error) {
	var entryErr *core.EntryError
	switch {
	case errors.As(err, &entryErr):
		BadRequestError(entryErr.Error()).Write(w)
	case core.IsValidation(err):
		BadRequestError(core.ValidationMessage(err, kind)).Write(w)
	default:
		s.events.LogError(r.Context(), "Transaction operation failed", err, log.ComponentHTTP, op,
			log.NewFields().
				WithRequestID(trace.GetRequestID(r.Context())).
				WithOwner(owner, kind.String()))
		InternalServerError().Write(w)
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
