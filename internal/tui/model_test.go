package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/stepdeck/internal/input"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/theme"
)

const sample = `# Intro

First point

Second point

---

# Details

- one
- two
`

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(10 * time.Millisecond)
	return c.t
}

func newTestModel(t *testing.T, text string, opts Options) Model {
	t.Helper()
	p, err := presenter.New(presenter.Options{})
	if err != nil {
		t.Fatalf("presenter.New: %v", err)
	}
	p.LoadDocument(text)

	g, _ := theme.Lookup(theme.Default)
	opts.Presenter = p
	opts.Theme = NewTheme(lipgloss.NewRenderer(nil), g)
	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return nil }
	}
	m := New(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func press(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_AdvanceRevealsThenMoves(t *testing.T) {
	m := newTestModel(t, sample, Options{})

	if got := m.state.snap.Progress; got != 33 {
		t.Fatalf("initial progress = %d, want 33", got)
	}
	if !strings.Contains(m.View(), "[1/2]") {
		t.Errorf("header missing counter:\n%s", m.View())
	}
	if strings.Contains(m.viewport.View(), "Second point") {
		t.Error("hidden segment rendered")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !strings.Contains(m.viewport.View(), "Second point") {
		t.Errorf("revealed segment missing:\n%s", m.viewport.View())
	}
	if m.state.snap.Progress != 100 {
		t.Errorf("progress = %d, want 100", m.state.snap.Progress)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.state.snap.CurrentSlideIndex != 1 {
		t.Errorf("slide = %d, want 1", m.state.snap.CurrentSlideIndex)
	}
	if !strings.Contains(m.View(), "[2/2]") {
		t.Errorf("header not updated:\n%s", m.View())
	}
}

func TestModel_NextAndPreviousKeys(t *testing.T) {
	m := newTestModel(t, sample, Options{})

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.state.snap.CurrentSlideIndex != 1 {
		t.Fatalf("right: slide = %d, want 1", m.state.snap.CurrentSlideIndex)
	}
	m = press(m, runes("h"))
	if m.state.snap.CurrentSlideIndex != 0 {
		t.Fatalf("h: slide = %d, want 0", m.state.snap.CurrentSlideIndex)
	}
	m = press(m, runes("G"))
	if m.state.snap.CurrentSlideIndex != 1 {
		t.Errorf("G: slide = %d, want 1", m.state.snap.CurrentSlideIndex)
	}
	m = press(m, runes("g"))
	if m.state.snap.CurrentSlideIndex != 0 {
		t.Errorf("g: slide = %d, want 0", m.state.snap.CurrentSlideIndex)
	}
}

func TestModel_CustomBinding(t *testing.T) {
	km := input.DefaultKeyMap()
	if err := km.ParseBindings([]string{"next=x"}); err != nil {
		t.Fatal(err)
	}
	m := newTestModel(t, sample, Options{KeyMap: km})
	m = press(m, runes("x"))
	if m.state.snap.CurrentSlideIndex != 1 {
		t.Errorf("slide = %d, want 1", m.state.snap.CurrentSlideIndex)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, sample, Options{})
	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
	if next.(Model).View() != "" {
		t.Error("expected empty view after quit")
	}
}

func TestModel_ClickReveals(t *testing.T) {
	m := newTestModel(t, sample, Options{})
	m = press(m, tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.state.snap.Progress != 67 {
		t.Errorf("progress = %d, want 67", m.state.snap.Progress)
	}
	// Releases are ignored.
	m = press(m, tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if m.state.snap.Progress != 67 {
		t.Errorf("release changed progress to %d", m.state.snap.Progress)
	}
}

func TestModel_WheelCoalescesNotches(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newTestModel(t, sample, Options{Now: clock.now, NotchDelta: 100})
	down := tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress}

	m = press(m, down)
	if m.state.snap.Progress != 33 {
		t.Fatalf("one notch revealed early, progress %d", m.state.snap.Progress)
	}
	m = press(m, down)
	if m.state.snap.Progress != 67 {
		t.Fatalf("two notches: progress = %d, want 67", m.state.snap.Progress)
	}
	// Still inside the cooldown.
	m = press(m, down)
	m = press(m, down)
	if m.state.snap.Progress != 67 {
		t.Errorf("cooldown ignored, progress %d", m.state.snap.Progress)
	}
}

func TestModel_SidebarAndCopy(t *testing.T) {
	var copied string
	m := newTestModel(t, sample, Options{Clipboard: func(s string) error {
		copied = s
		return nil
	}})

	m = press(m, runes("t"))
	if !m.sidebar || !strings.Contains(m.View(), "2. Details") {
		t.Errorf("sidebar not shown:\n%s", m.View())
	}

	m = press(m, runes("y"))
	if !strings.HasPrefix(copied, "# Intro") {
		t.Errorf("copied %q", copied)
	}
	if !strings.Contains(m.status, "copied slide-0") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_CopyFailure(t *testing.T) {
	m := newTestModel(t, sample, Options{Clipboard: func(string) error {
		return errors.New("no clipboard")
	}})
	m = press(m, runes("y"))
	if !strings.Contains(m.status, "no clipboard") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_ReloadResetsProgress(t *testing.T) {
	doc := sample
	m := newTestModel(t, sample, Options{
		Source: "talk.md",
		Reload: func() (string, error) { return doc, nil },
	})
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})

	doc = "# Only\n\nslide"
	m = press(m, fileChangedMsg{})
	if m.state.snap.TotalSlides != 1 || m.state.snap.CurrentSlideIndex != 0 {
		t.Errorf("after reload: %+v", m.state.snap)
	}
	if m.status != "reloaded talk.md" {
		t.Errorf("status = %q", m.status)
	}

	m.reload = func() (string, error) { return "", errors.New("gone") }
	m = press(m, fileChangedMsg{})
	if !strings.Contains(m.status, "gone") || m.state.snap.TotalSlides != 1 {
		t.Errorf("failed reload changed state: %q %+v", m.status, m.state.snap)
	}
}

func TestModel_EmptyDeck(t *testing.T) {
	m := newTestModel(t, "", Options{})
	view := m.View()
	if !strings.Contains(view, "[0/0]") || !strings.Contains(view, "Empty deck") {
		t.Errorf("unexpected empty view:\n%s", view)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.state.snap.TotalSlides != 0 {
		t.Error("empty deck grew slides")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	got := truncate("a very long slide title", 10)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) > 10 {
		t.Errorf("truncate = %q", got)
	}
}
