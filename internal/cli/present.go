package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dgallion1/stepdeck/internal/config"
	"github.com/dgallion1/stepdeck/internal/input"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/render"
	"github.com/dgallion1/stepdeck/internal/theme"
	"github.com/dgallion1/stepdeck/internal/tui"
)

var (
	presentLogFile string
	presentNoWatch bool
)

var presentCmd = &cobra.Command{
	Use:   "present <file|url>",
	Short: "Present a document in the terminal",
	Long: `Present opens a full-screen terminal presenter.

Space, enter, j or down reveals the next block, moving to the next slide once
everything is shown. Right/left (or n/p, l/h, page down/up) change slides.
Scrolling the mouse wheel down reveals blocks while any are hidden. Local
files are reloaded when they change on disk.

Example:
  stepdeck present talk.md
  stepdeck present https://example.com/notes.md --theme rose-sky`,
	Args: cobra.ExactArgs(1),
	RunE: runPresent,
}

func init() {
	rootCmd.AddCommand(presentCmd)

	presentCmd.Flags().String("theme", theme.Default, "background gradient")
	presentCmd.Flags().String("style", "auto", "glamour style name or JSON style file")
	presentCmd.Flags().StringVar(&presentLogFile, "log-file", "", "write logs to this file")
	presentCmd.Flags().BoolVar(&presentNoWatch, "no-watch", false, "do not reload the file when it changes")
}

// presentLogger writes to a file when asked; the terminal belongs to the UI.
func presentLogger(cfg config.Config) (*slog.Logger, func(), error) {
	if presentLogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(presentLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return log, func() { f.Close() }, nil
}

func runPresent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := presentLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout*time.Duration(cfg.FetchMaxRetries+1))
	doc, err := loadDocument(ctx, cfg, args[0], log)
	cancel()
	if err != nil {
		return err
	}

	keymap := input.DefaultKeyMap()
	if err := keymap.ParseBindings(cfg.KeyBindings); err != nil {
		return err
	}
	gradient, err := theme.Lookup(cfg.Theme)
	if err != nil {
		return err
	}

	term, err := render.NewTerminal(cfg.GlamourStyle, 80, render.NewCache(cfg.RenderCacheTTL, 0), nil)
	if err != nil {
		return err
	}
	p, err := presenter.New(presenter.Options{
		Wheel:    cfg.Wheel(),
		Renderer: term,
		Logger:   log.With("component", "presenter"),
	})
	if err != nil {
		return err
	}
	p.LoadDocument(doc.Text)

	opts := tui.Options{
		Presenter:  p,
		Terminal:   term,
		KeyMap:     keymap,
		Theme:      tui.NewTheme(lipgloss.DefaultRenderer(), gradient),
		Source:     doc.Source,
		NotchDelta: cfg.WheelNotchDelta,
	}
	if doc.Path != "" && !presentNoWatch {
		w, err := tui.NewWatcher(doc.Path)
		if err != nil {
			log.Warn("file watching disabled", "error", err)
		} else {
			opts.Watcher = w
			opts.Reload = func() (string, error) {
				d, err := loadDocument(context.Background(), cfg, doc.Path, log)
				if err != nil {
					return "", err
				}
				return d.Text, nil
			}
		}
	}

	log.Info("presenting", "source", doc.Source, "title", doc.Title)
	return tui.Run(tui.New(opts))
}
