package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/stepdeck/internal/loader"
	"github.com/dgallion1/stepdeck/internal/pipeline"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/session"
)

type createDeckRequest struct {
	Markdown *string `json:"markdown"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
}

type deckResponse struct {
	Deck  session.Info       `json:"deck"`
	State presenter.Snapshot `json:"state"`
}

func (s *Server) deckResponse(sess *session.Session) deckResponse {
	var state presenter.Snapshot
	sess.Do(func(p *presenter.Presenter) { state = p.Snapshot() })
	return deckResponse{Deck: sess.Info(), State: state}
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		s.createDeckFromUpload(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req createDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case req.Markdown != nil && req.URL != "":
		jsonError(w, "provide either markdown or url, not both", http.StatusBadRequest)
	case req.Markdown != nil:
		sess, err := s.newSession()
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sess.Load(*req.Markdown, "inline", req.Title)
		s.log.Info("deck created", "deck_id", sess.ID, "source", "inline")
		writeJSON(w, http.StatusCreated, s.deckResponse(sess))
	case req.URL != "":
		u, err := url.Parse(req.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			jsonError(w, "url must be an absolute http(s) url", http.StatusBadRequest)
			return
		}
		s.submitLoad(w, func(j *pipeline.Job) {
			j.URL = req.URL
			j.Title = req.Title
		})
	default:
		jsonError(w, "markdown or url is required", http.StatusBadRequest)
	}
}

func (s *Server) createDeckFromUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !loader.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	title := r.FormValue("title")
	s.submitLoad(w, func(j *pipeline.Job) {
		j.Title = title
		j.SetFile(filename, data)
	})
}

// submitLoad creates an empty deck and queues a load job into it.
func (s *Server) submitLoad(w http.ResponseWriter, setup func(*pipeline.Job)) {
	sess, err := s.newSession()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	job := pipeline.NewJob(session.NewID(), sess.ID)
	setup(job)

	if err := s.orchestrator.Submit(job); err != nil {
		s.sessions.Delete(sess.ID)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"deck_id":  sess.ID,
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.deckResponse(sess))
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "deckID")) {
		jsonError(w, "deck not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req createDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Markdown == nil {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	title := req.Title
	if title == "" {
		title = sess.Info().Title
	}
	sess.Load(*req.Markdown, "inline", title)
	writeJSON(w, http.StatusOK, s.deckResponse(sess))
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
