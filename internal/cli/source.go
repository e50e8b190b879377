package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/stepdeck/internal/config"
	"github.com/dgallion1/stepdeck/internal/fetch"
	"github.com/dgallion1/stepdeck/internal/loader"
)

// document is a converted source ready to segment.
type document struct {
	Source string // path or URL as given
	Path   string // absolute local path; empty for URLs
	Title  string
	Text   string
}

func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// loadDocument reads arg as a local file or fetches it when it is an http(s)
// URL, then converts it to markdown.
func loadDocument(ctx context.Context, cfg config.Config, arg string, log *slog.Logger) (*document, error) {
	var (
		data     []byte
		filename string
		path     string
	)
	if isURL(arg) {
		res, err := fetch.New(cfg.Fetch(), log).Fetch(ctx, arg)
		if err != nil {
			return nil, err
		}
		data, filename = res.Data, res.Filename
	} else {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		if !loader.IsSupportedExtension(abs) {
			return nil, fmt.Errorf("unsupported file type %q (supported: %s)", filepath.Ext(abs), strings.Join(slices.Sorted(maps.Keys(loader.SupportedExtensions)), ", "))
		}
		data, err = os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		filename, path = filepath.Base(abs), abs
	}

	doc, err := loader.Load(data, filename, cfg.Loader())
	if err != nil {
		return nil, err
	}
	log.Debug("document loaded", "source", arg, "bytes", len(data), "title", doc.Title)
	return &document{Source: arg, Path: path, Title: doc.Title, Text: doc.Text}, nil
}
