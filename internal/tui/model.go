// Package tui is the terminal front end: a Bubble Tea program that drives a
// presenter from keys, clicks and the mouse wheel.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dgallion1/stepdeck/internal/input"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/render"
)

const (
	sidebarWidth = 24
	// header and footer lines around the viewport
	chromeHeight = 2
	barWidth     = 20
)

// Options configures the terminal presenter.
type Options struct {
	Presenter *presenter.Presenter
	// Terminal is resized with the window when set. It should be the same
	// renderer the presenter was built with.
	Terminal *render.Terminal
	KeyMap   input.KeyMap
	Theme    Theme
	// Source names the document in the status line.
	Source string
	// NotchDelta is the wheel delta reported for one mouse wheel notch.
	NotchDelta float64
	// Reload re-reads the document after the watcher fires.
	Reload  func() (string, error)
	Watcher *Watcher
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	Now       func() time.Time
}

// viewState is shared with the presenter subscription, which outlives any
// single copy of Model.
type viewState struct {
	dirty   bool
	snap    presenter.Snapshot
	slide   int
	visible int
}

// Model is the Bubble Tea model for a running presentation.
type Model struct {
	p        *presenter.Presenter
	term     *render.Terminal
	keymap   input.KeyMap
	keys     viewKeys
	theme    Theme
	source   string
	notch    float64
	reload   func() (string, error)
	watcher  *Watcher
	copyText func(string) error
	now      func() time.Time
	unsub    func()
	state    *viewState
	viewport viewport.Model
	bar      progress.Model
	help     help.Model
	sidebar  bool
	status   string
	width    int
	height   int
	quitting bool
}

// New builds the model. The presenter should already hold a document.
func New(opts Options) Model {
	if opts.KeyMap == nil {
		opts.KeyMap = input.DefaultKeyMap()
	}
	if opts.NotchDelta <= 0 {
		opts.NotchDelta = 100
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Theme.Renderer == nil {
		opts.Theme = NewTheme(lipgloss.DefaultRenderer(), opts.Theme.Gradient)
	}

	st := &viewState{dirty: true, slide: -1, snap: opts.Presenter.Snapshot()}
	unsub := opts.Presenter.Subscribe(func(s presenter.Snapshot) {
		st.snap = s
		st.dirty = true
	})

	g := opts.Theme.Gradient
	barOpts := []progress.Option{progress.WithoutPercentage(), progress.WithWidth(barWidth)}
	if g.From != "" && g.To != "" {
		barOpts = append(barOpts, progress.WithGradient(g.From, g.To))
	} else {
		barOpts = append(barOpts, progress.WithDefaultGradient())
	}

	m := Model{
		p:        opts.Presenter,
		term:     opts.Terminal,
		keymap:   opts.KeyMap,
		keys:     newViewKeys(opts.KeyMap),
		theme:    opts.Theme,
		source:   opts.Source,
		notch:    opts.NotchDelta,
		reload:   opts.Reload,
		watcher:  opts.Watcher,
		copyText: opts.Clipboard,
		now:      opts.Now,
		unsub:    unsub,
		state:    st,
		viewport: viewport.New(80, 24-chromeHeight),
		bar:      progress.New(barOpts...),
		help:     help.New(),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Init starts the file watcher, if any.
func (m Model) Init() tea.Cmd {
	return m.watch()
}

func (m Model) watch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.wait()
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			if m.unsub != nil {
				m.unsub()
			}
			return m, tea.Quit
		}
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		cmd = m.handleMouse(msg)

	case fileChangedMsg:
		m.reloadDocument()
		cmd = m.watch()

	case watchErrMsg:
		m.status = "watch: " + msg.err.Error()
		cmd = m.watch()
	}

	if m.state.dirty {
		m.refresh()
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if intent, ok := m.keymap.Lookup(msg.String()); ok {
		m.p.Intent(intent)
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.First):
		m.p.GoToSlide(0)
	case key.Matches(msg, m.keys.Last):
		m.p.GoToSlide(m.state.snap.TotalSlides - 1)
	case key.Matches(msg, m.keys.Sidebar):
		m.sidebar = !m.sidebar
		m.layout()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case key.Matches(msg, m.keys.Copy):
		m.copySlide()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		m.p.Click()
		return nil
	case tea.MouseButtonWheelDown, tea.MouseButtonWheelUp:
		delta := m.notch
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -delta
		}
		if m.p.Wheel(delta, m.now()) {
			return nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) copySlide() {
	slide, ok := m.p.CurrentSlide()
	if !ok {
		return
	}
	if err := m.copyText(slide.RawContent); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + slide.ID
}

func (m *Model) reloadDocument() {
	if m.reload == nil {
		return
	}
	text, err := m.reload()
	if err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}
	m.p.LoadDocument(text)
	m.status = "reloaded " + m.source
}

// layout sizes the viewport and renderer for the window and sidebar.
func (m *Model) layout() {
	bodyWidth := m.bodyWidth()
	m.help.Width = m.width

	footer := lipgloss.Height(m.footerView())
	height := m.height - 1 - footer
	if height < 1 {
		height = 1
	}
	m.viewport.Width = bodyWidth
	m.viewport.Height = height

	if m.term != nil {
		_ = m.term.SetWidth(bodyWidth - 2)
	}
	m.state.dirty = true
}

func (m Model) bodyWidth() int {
	w := m.width
	if m.sidebar {
		w -= sidebarWidth + 2
	}
	if w < 1 {
		w = 1
	}
	return w
}

// refresh re-renders the visible segments of the current slide into the
// viewport. Newly revealed content is scrolled into view.
func (m *Model) refresh() {
	st := m.state
	st.dirty = false
	snap := st.snap

	slide, ok := m.p.CurrentSlide()
	if !ok {
		m.viewport.SetContent(m.theme.Hint.Render("Empty deck. Nothing to present."))
		st.slide, st.visible = -1, 0
		return
	}

	var parts []string
	for _, seg := range slide.Segments {
		if seg.Visible {
			parts = append(parts, m.p.RenderSegment(seg.Content))
		}
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))

	switch {
	case snap.CurrentSlideIndex != st.slide:
		m.viewport.GotoTop()
	case len(parts) > st.visible:
		m.viewport.GotoBottom()
	}
	st.slide, st.visible = snap.CurrentSlideIndex, len(parts)
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	body := m.viewport.View()
	if m.sidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())
}

func (m Model) headerView() string {
	snap := m.state.snap
	if snap.TotalSlides == 0 {
		return m.theme.Counter.Render("[0/0]")
	}
	counter := m.theme.Counter.Render(fmt.Sprintf("[%d/%d]", snap.CurrentSlideIndex+1, snap.TotalSlides))
	bar := m.bar.ViewAs(float64(snap.Progress) / 100)
	pct := m.theme.Counter.Render(fmt.Sprintf("%3d%%", snap.Progress))

	title := snap.Slides[snap.CurrentSlideIndex].Title
	room := m.width - lipgloss.Width(counter) - barWidth - lipgloss.Width(pct) - 4
	if room < 1 {
		room = 1
	}
	title = m.theme.Title.Render(truncate(title, room))
	return counter + " " + title + "  " + bar + " " + pct
}

func (m Model) sidebarView() string {
	snap := m.state.snap
	lines := make([]string, 0, len(snap.Slides))
	for i, s := range snap.Slides {
		label := truncate(fmt.Sprintf("%d. %s", i+1, s.Title), sidebarWidth-2)
		if i == snap.CurrentSlideIndex {
			lines = append(lines, m.theme.Selected.Render("▸ "+label))
			continue
		}
		lines = append(lines, "  "+label)
	}
	return m.theme.Sidebar.
		Width(sidebarWidth).
		Height(m.viewport.Height).
		Render(strings.Join(lines, "\n"))
}

func (m Model) footerView() string {
	hints := m.help.View(m.keys)
	if m.status != "" {
		hints += m.theme.Hint.Render(" │ ") + m.theme.Status.Render(m.status)
	}
	return hints
}

// truncate cuts s to at most width terminal cells.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Run starts the program on the alternate screen with mouse support.
func Run(m Model) error {
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := prog.Run()
	if m.watcher != nil {
		m.watcher.Close()
	}
	return err
}
