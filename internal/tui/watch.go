package tui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// fileChangedMsg is sent when the presented file is written or replaced.
type fileChangedMsg struct{}

// watchErrMsg carries a watcher failure to the status line.
type watchErrMsg struct{ err error }

// Watcher reports changes to a single file. It watches the parent directory
// so editors that save by rename are still seen.
type Watcher struct {
	w    *fsnotify.Watcher
	path string
}

// NewWatcher starts watching path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{w: w, path: abs}, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.w.Close()
}

// wait blocks until the next relevant event. It is re-issued after every
// message it produces.
func (w *Watcher) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.w.Events:
				if !ok {
					return nil
				}
				if w.relevant(ev) {
					return fileChangedMsg{}
				}
			case err, ok := <-w.w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
