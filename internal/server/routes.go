package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	site2pdf "github.com/alnah/go-site2pdf"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 64 << 10

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", s.handleCancelJob)
	mux.HandleFunc("POST /api/jobs/{id}/save", s.handleSaveJob)
	mux.HandleFunc("GET /api/jobs/{id}/download", s.handleDownload)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// CreateJobRequest is the request body for creating a job.
type CreateJobRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// CreateJobResponse is the response for creating a job.
type CreateJobResponse struct {
	ID string `json:"id"`
}

// ListJobsResponse wraps the job list.
type ListJobsResponse struct {
	Jobs []site2pdf.Job `json:"jobs"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	id, err := s.jobs.CreateJob(req.URL, strings.TrimSpace(req.Title))
	if err != nil {
		writeJobError(w, err)
		return
	}
	s.logger.Info("job accepted", "job_id", id, "url", req.URL)
	writeJSON(w, http.StatusCreated, CreateJobResponse{ID: id})
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	jobs := s.jobs.ListJobs()
	if jobs == nil {
		jobs = []site2pdf.Job{}
	}
	writeJSON(w, http.StatusOK, ListJobsResponse{Jobs: jobs})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.GetStatus(r.PathValue("id"))
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.RemoveJob(r.PathValue("id")); err != nil {
		writeJobError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.jobs.Cancel(id); err != nil {
		writeJobError(w, err)
		return
	}
	job, err := s.jobs.GetStatus(id)
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	res, err := s.jobs.CancelAndSave(r.PathValue("id"))
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDownload streams the merged book of a completed job.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.GetStatus(r.PathValue("id"))
	if err != nil {
		writeJobError(w, err)
		return
	}
	if job.State != site2pdf.StateCompleted || job.Output() == "" {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s, no output available", job.State))
		return
	}

	f, err := os.Open(job.Output())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "output file no longer exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "opening output file")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reading output file")
		return
	}

	name := filepath.Base(job.Output())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// writeJobError maps manager errors onto HTTP status codes.
func writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, site2pdf.ErrJobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, site2pdf.ErrAlreadyFinished),
		errors.Is(err, site2pdf.ErrCannotCancel):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, site2pdf.ErrNoPartialPages):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, site2pdf.ErrManagerClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
