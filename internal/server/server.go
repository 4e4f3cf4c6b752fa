package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/rvegen/internal/config"
	"github.com/cwbudde/rvegen/internal/store"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	store      *store.FSStore
	addr       string
	server     *http.Server
}

// NewServer creates a new HTTP server backed by the configured data
// directory.
func NewServer(cfg config.Server) (*Server, error) {
	st, err := store.NewFSStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	return &Server{
		jobManager: NewJobManager(),
		store:      st,
		addr:       cfg.Addr,
	}, nil
}

// Handler builds the full route tree with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)

	// Register API routes
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)
	mux.HandleFunc("/api/v1/runs", s.handleListRuns)
	mux.HandleFunc("/api/v1/results", s.handleResults)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr, "dataDir", s.store.BaseDir())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"service": "rvegen",
		"jobs":    len(s.jobManager.ListJobs()),
		"running": len(s.jobManager.RunningJobs()),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	// Route based on subpath
	if len(parts) == 1 || parts[1] == "status" {
		s.handleGetJobStatus(w, r, jobID)
	} else if parts[1] == "events" {
		s.handleJobEvents(w, r, jobID)
	} else if parts[1] == "preview.png" {
		s.handleArtifact(w, r, jobID, "preview.png", "image/png")
	} else if parts[1] == "model.geo" {
		s.handleArtifact(w, r, jobID, "model.geo", "text/plain; charset=utf-8")
	} else if parts[1] == "geometry.dxf" {
		s.handleArtifact(w, r, jobID, "geometry.dxf", "application/dxf")
	} else {
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var cfg store.RunConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(cfg)

	// Start worker in background
	go runJob(context.Background(), s.jobManager, s.store, job.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	response := map[string]interface{}{
		"id":           job.ID,
		"state":        job.State,
		"config":       job.Config,
		"placed":       job.Placed,
		"attempts":     job.Attempts,
		"areaFraction": job.AreaFraction,
		"elapsed":      elapsed.Seconds(),
		"startTime":    job.StartTime,
		"endTime":      job.EndTime,
		"error":        job.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleJobEvents handles GET /api/v1/jobs/:id/events
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	s.jobManager.broadcaster.ServeSSE(w, r, jobID)
}

// handleArtifact serves a generated file from the job's run directory.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request, jobID, name, contentType string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		// Runs persisted by earlier server instances are still servable.
		if _, err := s.store.LoadRun(jobID); err != nil {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
	}

	path := filepath.Join(s.store.RunDir(jobID), name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "No results yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

// handleListRuns handles GET /api/v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// handleResults handles GET /api/v1/results
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ReadResults()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read results: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
