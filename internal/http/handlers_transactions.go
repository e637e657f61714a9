package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/log"
	"fintrack/internal/query"
)

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	var c core.Candidate
	if err := decodeJSON(w, r, &c); err != nil {
		s.writeBodyError(w, err)
		return
	}

	created, err := s.backend.Add(r.Context(), owner, kind, c)
	if err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpCreate, err)
		return
	}
	NewResponse().JSON(created).Write(w)
}

func (s *Server) handleBulkAdd(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	cs, err := decodeBatch(w, r, kind)
	if err != nil {
		s.writeBodyError(w, err)
		return
	}
	s.bulkAdd(w, r, kind, owner, cs)
}

// handleBulkUpload imports a .json, .csv or .xlsx file with the same
// all-or-nothing semantics as bulk-add.
func (s *Server) handleBulkUpload(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	up, err := readUpload(w, r, "file", s.maxUpload)
	switch {
	case errors.Is(err, ErrNoFile):
		BadRequestError("No file provided").Write(w)
		return
	case errors.Is(err, ErrFileTooLarge):
		BadRequestError(fmt.Sprintf("File too large. Maximum size is %s.", sizeLabel(s.maxUpload))).Write(w)
		return
	case err != nil:
		BadRequestError("Invalid request body").Write(w)
		return
	}

	filename := sanitizeInput(up.Filename)
	cs, err := importer.Parse(filename, bytes.NewReader(up.Data))
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentImport).WarnContext(r.Context(), "Import file rejected",
			log.FieldFilename, filename,
			log.FieldOwnerID, owner,
			log.FieldError, err)
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			BadRequestError("Unsupported file format. Allowed: " + strings.Join(importer.Formats, ", ")).Write(w)
			return
		}
		BadRequestError("Could not read file: " + err.Error()).Write(w)
		return
	}
	s.bulkAdd(w, r, kind, owner, cs)
}

func (s *Server) bulkAdd(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string, cs []core.Candidate) {
	created, err := s.backend.BulkAdd(r.Context(), owner, kind, cs)
	if err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpBulkCreate, err)
		return
	}
	NewResponse().JSON(map[string]any{
		"message":     fmt.Sprintf("%d %s added successfully", len(created), kind.Plural()),
		kind.Plural(): created,
	}).Write(w)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	p := query.FromValues(r.URL.Query(), kind.LabelField())
	page, err := s.backend.List(r.Context(), owner, kind, p)
	if err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpList, err)
		return
	}
	NewResponse().JSON(page).Write(w)
}

// handleDelete succeeds whether or not the id matched one of the owner's
// records.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	id := sanitizeInput(r.PathValue("id"))
	if err := s.backend.Delete(r.Context(), owner, kind, id); err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpDelete, err)
		return
	}
	NewResponse().Message(kind.Title() + " deleted successfully").Write(w)
}

// writeBodyError reports an unreadable JSON body.
func (s *Server) writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").Write(w)
		return
	}
	BadRequestError("Invalid request body").Write(w)
}
