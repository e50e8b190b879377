// Package presenter ties segmentation, reveal state, wheel coalescing and
// rendering into the single object a front end drives.
package presenter

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/dgallion1/stepdeck/internal/deck"
	"github.com/dgallion1/stepdeck/internal/input"
	"github.com/dgallion1/stepdeck/internal/render"
	"github.com/dgallion1/stepdeck/internal/reveal"
	"github.com/dgallion1/stepdeck/internal/segmenter"
	"github.com/dgallion1/stepdeck/internal/wheel"
)

// Options configures a Presenter.
type Options struct {
	Wheel    wheel.Config
	Renderer render.Renderer
	Logger   *slog.Logger
	// Clock stamps wheel events that arrive without a timestamp.
	Clock func() time.Time
}

// Presenter owns one deck's slides and live presentation state.
//
// Presenter is not safe for concurrent use; callers serialise access.
type Presenter struct {
	slides     []deck.Slide
	loaded     bool
	store      *reveal.Store
	coalescer  *wheel.Coalescer
	dispatcher *input.Dispatcher
	renderer   render.Renderer
	log        *slog.Logger

	observers    map[int]func(Snapshot)
	nextObserver int
}

// New creates an empty presenter.
func New(opts Options) (*Presenter, error) {
	if opts.Wheel == (wheel.Config{}) {
		opts.Wheel = wheel.DefaultConfig()
	}
	if err := opts.Wheel.Validate(); err != nil {
		return nil, fmt.Errorf("wheel config: %w", err)
	}
	if opts.Renderer == nil {
		opts.Renderer = render.Plain{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &Presenter{
		store:     reveal.NewStore(nil),
		renderer:  opts.Renderer,
		log:       opts.Logger,
		observers: make(map[int]func(Snapshot)),
	}
	p.coalescer = wheel.New(opts.Wheel, p.store)
	if opts.Clock != nil {
		p.coalescer.SetClock(opts.Clock)
	}
	p.dispatcher = input.NewDispatcher(p.store, p.coalescer)
	return p, nil
}

// LoadDocument re-segments text and replaces all presentation state. Reveal
// progress is never carried across loads.
func (p *Presenter) LoadDocument(text string) {
	p.slides = segmenter.Segment(text)
	p.loaded = true
	p.store.Reset(p.slides)
	p.coalescer.Reset()

	slides, segments := deck.Counts(p.slides)
	p.log.Debug("document loaded", "slides", slides, "segments", segments)
	p.notify()
}

// Intent applies a discrete navigation intent.
func (p *Presenter) Intent(intent input.Intent) bool {
	return p.track(func() bool { return p.dispatcher.Intent(intent) })
}

// Click is a pointer click on the presentation surface.
func (p *Presenter) Click() bool {
	return p.track(p.dispatcher.Click)
}

// Wheel feeds one wheel sample and reports whether it was intercepted.
// A zero at uses the presenter clock.
func (p *Presenter) Wheel(delta float64, at time.Time) bool {
	return p.track(func() bool { return p.dispatcher.Wheel(delta, at) })
}

// GoToSlide jumps to slide i, clamped into range.
func (p *Presenter) GoToSlide(i int) bool {
	return p.track(func() bool { return p.store.GoToSlide(i) })
}

type position struct {
	slide   int
	visible int
}

func (p *Presenter) position() position {
	pos := position{slide: p.store.CurrentSlideIndex()}
	if slide, ok := p.store.Slide(pos.slide); ok {
		for _, seg := range slide.Segments {
			if seg.Visible {
				pos.visible++
			}
		}
	}
	return pos
}

// track runs op and notifies observers when the visible state moved.
func (p *Presenter) track(op func() bool) bool {
	before := p.position()
	handled := op()
	if p.position() != before {
		p.notify()
	}
	return handled
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (p *Presenter) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := p.nextObserver
	p.nextObserver++
	p.observers[id] = fn
	return func() { delete(p.observers, id) }
}

func (p *Presenter) notify() {
	if len(p.observers) == 0 {
		return
	}
	ids := make([]int, 0, len(p.observers))
	for id := range p.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	snap := p.Snapshot()
	for _, id := range ids {
		if fn, ok := p.observers[id]; ok {
			fn(snap)
		}
	}
}

// CurrentSlide returns a copy of the active slide with live visibility.
func (p *Presenter) CurrentSlide() (deck.Slide, bool) {
	return p.store.Slide(p.store.CurrentSlideIndex())
}

// Slide returns a copy of slide i with live visibility.
func (p *Presenter) Slide(i int) (deck.Slide, bool) {
	return p.store.Slide(i)
}

// HasHidden reports whether the active slide has unrevealed segments.
func (p *Presenter) HasHidden() bool {
	return p.store.HasHidden()
}

// Progress is the reveal percentage of the active slide.
func (p *Presenter) Progress() int {
	return p.store.Progress()
}
