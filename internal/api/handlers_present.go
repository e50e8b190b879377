package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/stepdeck/internal/input"
	"github.com/dgallion1/stepdeck/internal/presenter"
)

type inputRequest struct {
	Intent string      `json:"intent,omitempty"`
	Click  bool        `json:"click,omitempty"`
	Wheel  *wheelInput `json:"wheel,omitempty"`
}

type wheelInput struct {
	Delta float64 `json:"delta"`
	// AtMS is the client timestamp in Unix milliseconds; zero means now.
	AtMS int64 `json:"at_ms,omitempty"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}

	var req inputRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	given := 0
	if req.Intent != "" {
		given++
	}
	if req.Click {
		given++
	}
	if req.Wheel != nil {
		given++
	}
	if given != 1 {
		jsonError(w, "exactly one of intent, click or wheel is required", http.StatusBadRequest)
		return
	}

	var intent input.Intent
	if req.Intent != "" {
		var err error
		if intent, err = input.ParseIntent(req.Intent); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var handled bool
	var state presenter.Snapshot
	sess.Do(func(p *presenter.Presenter) {
		switch {
		case intent != "":
			handled = p.Intent(intent)
		case req.Click:
			handled = p.Click()
		default:
			var at time.Time
			if req.Wheel.AtMS > 0 {
				at = time.UnixMilli(req.Wheel.AtMS)
			}
			handled = p.Wheel(req.Wheel.Delta, at)
		}
		state = p.Snapshot()
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"handled": handled,
		"state":   state,
	})
}

func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "slide index must be an integer", http.StatusBadRequest)
		return
	}

	var (
		segments []presenter.RenderedSegment
		ok       bool
		id       string
		title    string
		current  bool
	)
	sess.Do(func(p *presenter.Presenter) {
		segments, ok = p.RenderSlide(index)
		if slide, found := p.Slide(index); found {
			id, title = slide.ID, slide.Title
		}
		current = p.Snapshot().CurrentSlideIndex == index
	})
	if !ok {
		jsonError(w, fmt.Sprintf("slide %d not found", index), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"index":    index,
		"id":       id,
		"title":    title,
		"current":  current,
		"segments": segments,
	})
}

const eventHeartbeat = 15 * time.Second

// handleEvents streams state snapshots as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	release := sess.Attach()
	defer release()

	updates := make(chan presenter.Snapshot, 1)
	var cancel func()
	var initial presenter.Snapshot
	sess.Do(func(p *presenter.Presenter) {
		initial = p.Snapshot()
		cancel = p.Subscribe(func(snap presenter.Snapshot) {
			offerLatest(updates, snap)
		})
	})
	defer sess.Do(func(*presenter.Presenter) { cancel() })

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(snap presenter.Snapshot) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(initial); err != nil {
		return
	}

	ticker := time.NewTicker(eventHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := send(snap); err != nil {
				s.log.Debug("event stream closed", "deck_id", sess.ID, "error", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// offerLatest replaces any pending snapshot in ch with snap, so a slow reader
// skips intermediate states but always sees the newest one. Senders must be
// serialised; the session lock does that for presenter observers.
func offerLatest(ch chan presenter.Snapshot, snap presenter.Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
