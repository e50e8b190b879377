package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/stepdeck/internal/deck"
	"github.com/dgallion1/stepdeck/internal/presenter"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|url>",
	Short: "Print how a document splits into slides and segments",
	Long: `Inspect segments a document and prints every slide with its segments,
their kinds and initial visibility.

Example:
  stepdeck inspect talk.md
  stepdeck inspect report.pdf --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "json", "output format (json, yaml)")
}

type inspection struct {
	Source   string       `json:"source" yaml:"source"`
	Title    string       `json:"title" yaml:"title"`
	Slides   int          `json:"slide_count" yaml:"slide_count"`
	Segments int          `json:"segment_count" yaml:"segment_count"`
	Deck     []deck.Slide `json:"slides" yaml:"slides"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	doc, err := loadDocument(cmd.Context(), cfg, args[0], log)
	if err != nil {
		return err
	}
	p, err := presenter.New(presenter.Options{Wheel: cfg.Wheel(), Logger: log})
	if err != nil {
		return err
	}
	p.LoadDocument(doc.Text)
	return writeInspection(cmd.OutOrStdout(), inspect(doc, p), inspectFormat)
}

func inspect(doc *document, p *presenter.Presenter) inspection {
	snap := p.Snapshot()
	out := inspection{Source: doc.Source, Title: doc.Title, Deck: []deck.Slide{}}
	for i := range snap.TotalSlides {
		if s, ok := p.Slide(i); ok {
			out.Deck = append(out.Deck, s)
		}
	}
	out.Slides, out.Segments = deck.Counts(out.Deck)
	return out
}

func writeInspection(w io.Writer, in inspection, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}
