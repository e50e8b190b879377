package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/stepdeck/internal/config"
	"github.com/dgallion1/stepdeck/internal/export"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/render"
	"github.com/dgallion1/stepdeck/internal/theme"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <file|url>",
	Short: "Write a deck as a standalone HTML page",
	Long: `Export renders every slide to a single HTML file that presents itself in
a browser with the same reveal, slide and wheel behaviour as the terminal.

Example:
  stepdeck export talk.md -o talk.html --theme violet-sun --font-size 42`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output HTML path (default: <name>.html, - for stdout)")
	exportCmd.Flags().String("theme", theme.Default, "background gradient")
	exportCmd.Flags().Int("font-size", config.DefaultFontSize, fmt.Sprintf("base font size in px (%d-%d)", config.MinFontSize, config.MaxFontSize))
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	doc, err := loadDocument(cmd.Context(), cfg, args[0], log)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = defaultExportPath(args[0])
	}
	if out == "-" {
		return exportDeck(cmd.OutOrStdout(), cfg, doc, log)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := exportDeck(f, cfg, doc, log); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", out)
	return nil
}

func exportDeck(w io.Writer, cfg config.Config, doc *document, log *slog.Logger) error {
	gradient, err := theme.Lookup(cfg.Theme)
	if err != nil {
		return err
	}
	p, err := presenter.New(presenter.Options{
		Wheel:    cfg.Wheel(),
		Renderer: render.NewHTML(nil, nil),
		Logger:   log,
	})
	if err != nil {
		return err
	}
	p.LoadDocument(doc.Text)

	return export.Write(w, p, export.Options{
		Title:    doc.Title,
		Theme:    gradient,
		FontSize: cfg.FontSize,
		Wheel:    cfg.Wheel(),
	})
}

// defaultExportPath names the page after the source: talk.md -> talk.html.
func defaultExportPath(arg string) string {
	base := filepath.Base(arg)
	if isURL(arg) || base == "." || base == "/" {
		base = "deck"
	}
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base + ".html"
}

// cliLogger logs to stderr for one-shot commands.
func cliLogger(cfg config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
