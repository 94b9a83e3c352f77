// ABOUTME: Request handlers for the HTTP API
// ABOUTME: Translate core results and errors into JSON responses and status codes
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/medrag/internal/core"
	"github.com/harper/medrag/internal/models"
)

// ListJobsLimit caps GET /api/ingest/jobs
const ListJobsLimit = 50

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type uploadResponse struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

type ingestRunRequest struct {
	Path      string `json:"path"`
	ChunkSize *int   `json:"chunk_size"`
	Overlap   *int   `json:"overlap"`
	Rebuild   bool   `json:"rebuild"`
}

type ingestRunResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

type pingResponse struct {
	Status       string  `json:"status"`
	Time         float64 `json:"time"`
	VectorReady  bool    `json:"vector_ready"`
	QueriesToday int     `json:"queries_today"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title        string
		QueriesToday int
		Sources      []models.SourceSummary
	}{
		Title:        AppTitle,
		QueriesToday: s.engine.Counter().Today(),
		Sources:      s.reporter.Sources(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render index page", "err", err)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	answer := s.engine.Ask(r.Context(), req.Question)
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer.Text})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reporter.Stats())
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reporter.Sources())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte upload limit", s.opts.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	filename := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(header.Filename, "\\", "/")))
	if filename == "" || filename == "/" || filename == "." {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	if err := os.MkdirAll(s.opts.UploadDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "Upload failed: "+err.Error())
		return
	}

	savePath := filepath.Join(s.opts.UploadDir, filename)
	if err := saveUpload(savePath, file); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte upload limit", s.opts.MaxUploadBytes))
			return
		}
		s.logger.Error("upload failed", "file", filename, "err", err)
		writeError(w, http.StatusInternalServerError, "Upload failed: "+err.Error())
		return
	}

	s.logger.Info("file uploaded", "path", savePath)
	writeJSON(w, http.StatusOK, uploadResponse{OK: true, Path: savePath})
}

// saveUpload writes to a temp file first so a failed copy leaves no partial file
func saveUpload(path string, src io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Server) handleIngestRun(w http.ResponseWriter, r *http.Request) {
	var body ingestRunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := models.IngestRequest{
		Path:      body.Path,
		ChunkSize: s.opts.ChunkSize,
		Overlap:   s.opts.ChunkOverlap,
		Rebuild:   body.Rebuild,
	}
	if body.ChunkSize != nil {
		req.ChunkSize = *body.ChunkSize
	}
	if body.Overlap != nil {
		req.Overlap = *body.Overlap
	}

	job, err := s.jobs.Submit(req)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "File not found")
		return
	case errors.Is(err, core.ErrInvalidChunking):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, core.ErrQueueFull), errors.Is(err, core.ErrQueueClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	default:
		s.logger.Error("failed to queue ingestion", "path", body.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to queue ingestion")
		return
	}

	writeJSON(w, http.StatusOK, ingestRunResponse{OK: true, Message: job.Message(), JobID: job.ID})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.List(ListJobsLimit)
	if err != nil {
		s.logger.Error("failed to list jobs", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []models.IngestJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.PathValue("id"))
	if errors.Is(err, core.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to read job", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to read job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	writeJSON(w, http.StatusOK, pingResponse{
		Status:       "ok",
		Time:         float64(now.UnixNano()) / float64(time.Second),
		VectorReady:  s.storage.Ready(),
		QueriesToday: s.engine.Counter().Today(),
	})
}
