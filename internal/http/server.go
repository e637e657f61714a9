package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// DefaultMaxUploadBytes is the largest accepted import or receipt file.
const DefaultMaxUploadBytes = 5 << 20

// APIPrefix is the common prefix of the transaction routes.
const APIPrefix = "/api/v1/"

// Options configures the transaction API server.
type Options struct {
	Verifier           *auth.Verifier
	Detector           *security.Detector
	RateLimitPerMinute int
	MaxUploadBytes     int64
	Logger             *log.Logger
	Now                func() time.Time
}

// Server serves the expense and income API.
type Server struct {
	http.Server
	backend  backend.Backend
	verifier *auth.Verifier
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	logger   *log.Logger
	events   *log.StructuredLogger

	maxUpload int64
	now       func() time.Time

	shutdownOnce sync.Once
}

// kindHandler serves one route of one transaction kind for an authenticated owner.
type kindHandler func(w http.ResponseWriter, r *http.Request, kind core.Kind, owner string)

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, b backend.Backend, opts Options) (*Server, error) {
	if b == nil {
		return nil, errors.New("backend is required")
	}
	if opts.Verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default(log.ComponentHTTP)
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

	s := &Server{
		backend:  b,
		verifier: opts.Verifier,
		detector: opts.Detector,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		logger:    opts.Logger,
		events:    log.NewStructuredLogger(opts.Logger),
		maxUpload: opts.MaxUploadBytes,
		now:       opts.Now,
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	for _, kind := range []core.Kind{core.KindExpense, core.KindIncome} {
		base := APIPrefix + string(kind)
		mux.Handle("POST "+base+"/add", s.protected(kind, s.handleAdd))
		mux.Handle("POST "+base+"/bulk-add", s.protected(kind, s.handleBulkAdd))
		mux.Handle("POST "+base+"/bulk-upload", s.protected(kind, s.handleBulkUpload))
		mux.Handle("GET "+base+"/get", s.protected(kind, s.handleList))
		mux.Handle("GET "+base+"/summary", s.protected(kind, s.handleSummary))
		mux.Handle("GET "+base+"/downloadexcel", s.protected(kind, s.handleDownloadExcel))
		mux.Handle("GET "+base+"/downloadpdf", s.protected(kind, s.handleDownloadPDF))
		mux.Handle("DELETE "+base+"/{id}", s.protected(kind, s.handleDelete))
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(s.detector.Middleware(limit(mux)))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// protected wraps h with bearer authentication and binds it to kind.
func (s *Server) protected(kind core.Kind, h kindHandler) http.Handler {
	return s.verifier.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := auth.OwnerFromContext(r.Context())
		if err != nil {
			UnauthorizedError().Write(w)
			return
		}
		h(w, r, kind, owner)
	}))
}

// Shutdown gracefully shuts down the server and its limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns request counters for diagnostics.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, security.DetectionMetrics) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.detector.GetMetrics()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

// handleReady reports whether the store answers within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.backend.Ping(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		NewResponse().
			Status(http.StatusServiceUnavailable).
			JSON(map[string]string{"status": "unavailable"}).
			Write(w)
		return
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
