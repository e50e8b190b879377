package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/stepdeck/internal/config"
	"github.com/dgallion1/stepdeck/internal/pipeline"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/render"
	"github.com/dgallion1/stepdeck/internal/session"
)

// Server is the HTTP API server for stepdeck.
type Server struct {
	router       chi.Router
	sessions     *session.Store
	orchestrator *pipeline.Orchestrator
	renderer     render.Renderer
	stats        *render.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Store, orch *pipeline.Orchestrator, renderer render.Renderer, stats *render.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions:     sessions,
		orchestrator: orch,
		renderer:     renderer,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/decks", s.handleCreateDeck)
		r.Route("/api/decks/{deckID}", func(r chi.Router) {
			r.Get("/", s.handleGetDeck)
			r.Delete("/", s.handleDeleteDeck)
			r.Put("/document", s.handleReplaceDocument)
			r.Post("/input", s.handleInput)
			r.Get("/slides/{index}", s.handleSlide)
			r.Get("/events", s.handleEvents)
		})

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// newSession registers an empty deck.
func (s *Server) newSession() (*session.Session, error) {
	p, err := presenter.New(presenter.Options{
		Wheel:    s.cfg.Wheel(),
		Renderer: s.renderer,
		Logger:   s.log,
	})
	if err != nil {
		return nil, err
	}
	sess := session.New(p)
	s.sessions.Put(sess)
	return sess, nil
}

// sessionFor resolves {deckID} or writes a 404.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := s.sessions.Get(chi.URLParam(r, "deckID"))
	if sess == nil {
		jsonError(w, "deck not found", http.StatusNotFound)
	}
	return sess
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
