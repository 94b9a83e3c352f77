// ABOUTME: HTTP server exposing chat, dashboard, upload and ingestion endpoints
// ABOUTME: Routes use method patterns; middleware adds CORS, panic recovery and request logs
package api

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/harper/medrag/internal/core"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/storage"
)

// AppTitle is shown on the landing page
const AppTitle = "MedRAG • AI Healthcare Assistant"

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Options configures the server's limits and ingestion defaults
type Options struct {
	UploadDir      string
	MaxUploadBytes int64
	ChatRate       float64 // requests per second; 0 disables limiting
	ChatBurst      int
	ChunkSize      int
	ChunkOverlap   int
}

// Server holds the services behind the HTTP API
type Server struct {
	engine   *core.QueryEngine
	reporter *core.Reporter
	jobs     *core.JobQueue
	storage  *storage.Storage
	opts     Options
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewServer creates a Server
func NewServer(engine *core.QueryEngine, reporter *core.Reporter, jobs *core.JobQueue, store *storage.Storage, opts Options, logger *log.Logger) *Server {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = core.DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = core.DefaultChunkOverlap
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}

	s := &Server{
		engine:   engine,
		reporter: reporter,
		jobs:     jobs,
		storage:  store,
		opts:     opts,
		logger:   logging.Component(logger, "http"),
	}
	if opts.ChatRate > 0 {
		burst := opts.ChatBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.ChatRate), burst)
	}
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/dashboard/stats", s.handleStats)
	mux.HandleFunc("GET /api/sources", s.handleSources)
	mux.HandleFunc("POST /api/ingest/upload", s.handleUpload)
	mux.HandleFunc("POST /api/ingest/run", s.handleIngestRun)
	mux.HandleFunc("GET /api/ingest/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/ingest/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /api/ping", s.handlePing)

	return s.recoverer(s.cors(s.requestLog(mux)))
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse matches the {"detail": ...} shape clients already parse
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
