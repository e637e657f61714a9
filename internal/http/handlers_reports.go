package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/query"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	p := query.FromValues(r.URL.Query(), kind.LabelField())
	summary, err := s.backend.Summary(r.Context(), owner, kind, p)
	if err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpSummary, err)
		return
	}
	NewResponse().JSON(summary).Write(w)
}

// handleDownloadExcel streams every matching record as a workbook. Paging
// parameters are ignored.
func (s *Server) handleDownloadExcel(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	txs, ok := s.exportRows(w, r, kind, owner)
	if !ok {
		return
	}
	data, err := export.Excel(kind, txs)
	if err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpExport, err)
		return
	}
	NewResponse().Attachment(export.ExcelFilename(kind), export.ContentTypeXLSX, data).Write(w)
}

func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) {
	txs, ok := s.exportRows(w, r, kind, owner)
	if !ok {
		return
	}
	data, err := export.PDF(kind, owner, txs, s.now())
	if err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpExport, err)
		return
	}
	NewResponse().Attachment(export.PDFFilename(kind), export.ContentTypePDF, data).Write(w)
}

func (s *Server) exportRows(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string) ([]core.Transaction, bool) {
	p := query.FromValues(r.URL.Query(), kind.LabelField())
	txs, err := s.backend.Export(r.Context(), owner, kind, p)
	if err != nil {
		s.writeServiceError(w, r, kind, owner, log.OpExport, err)
		return nil, false
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "Export prepared",
		log.FieldOwnerID, owner,
		log.FieldKind, kind,
		log.FieldCount, len(txs))
	return txs, true
}
