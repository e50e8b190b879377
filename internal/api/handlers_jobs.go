package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "render stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       s.stats.Snapshot(),
		"decks":       s.sessions.Len(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"jobs":        s.orchestrator.Stats(),
	})
}
