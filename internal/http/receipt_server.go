package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/receipt"
)

// ReceiptProcessor extracts fields from a receipt image.
type ReceiptProcessor interface {
	Process(ctx context.Context, image []byte, mime string) (receipt.Result, error)
}

// ReceiptOptions configures the receipt server.
type ReceiptOptions struct {
	MaxUploadBytes int64
	Detector       *security.Detector
	Logger         *log.Logger
	Now            func() time.Time
}

// ReceiptServer serves the receipt classification API. It needs no
// authentication and keeps uploads in memory.
type ReceiptServer struct {
	http.Server
	processor ReceiptProcessor
	logger    *log.Logger
	events    *log.StructuredLogger
	maxUpload int64
	now       func() time.Time
}

func NewReceiptServer(addr string, p ReceiptProcessor, opts ReceiptOptions) (*ReceiptServer, error) {
	if p == nil {
		return nil, errors.New("receipt processor is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default(log.ComponentReceipt)
	}
	if opts.Detector == nil {
		d, err := security.NewDetector()
		if err != nil {
			return nil, err
		}
		opts.Detector = d
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &ReceiptServer{
		processor: p,
		logger:    opts.Logger,
		events:    log.NewStructuredLogger(opts.Logger),
		maxUpload: opts.MaxUploadBytes,
		now:       opts.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process-receipt", s.handleProcessReceipt)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	tracer := trace.NewMiddleware(opts.Logger, opts.Detector.ExtractClientIP)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(withCORS(opts.Detector.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *ReceiptServer) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, "receipt", s.maxUpload)
	switch {
	case errors.Is(err, ErrFileTooLarge):
		NewResponse().Status(http.StatusBadRequest).
			Error(fmt.Sprintf("File too large. Maximum size is %s.", sizeLabel(s.maxUpload))).
			Write(w)
		return
	case err != nil:
		NewResponse().Status(http.StatusBadRequest).Error("No image file provided").Write(w)
		return
	}

	// A rejected file type is a client error and never reaches OCR.
	if err := receipt.ValidateImage(up.Filename, up.ContentType); errors.Is(err, receipt.ErrNotImage) {
		log.FromContext(r.Context()).WithComponent(log.ComponentReceipt).WarnContext(r.Context(), "Receipt upload rejected",
			log.FieldFilename, sanitizeInput(up.Filename),
			"content_type", up.ContentType,
			log.FieldError, err)
		NewResponse().Status(http.StatusBadRequest).Error("Only image files are allowed").Write(w)
		return
	}

	res, err := s.processor.Process(r.Context(), up.Data, up.ContentType)
	if err != nil {
		s.events.LogError(r.Context(), "Receipt processing failed", err, log.ComponentReceipt, log.OpClassify,
			log.NewFields().
				WithRequestID(trace.GetRequestID(r.Context())).
				WithOperation(log.OpClassify))
		NewResponse().Status(http.StatusInternalServerError).Error(err.Error()).Write(w)
		return
	}
	NewResponse().JSON(res).Write(w)
}

func (s *ReceiptServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(map[string]string{
		"status":    "OK",
		"message":   "Receipt processing server is running",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}).Write(w)
}

// withCORS allows browser clients on any origin, answering preflights
// directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
