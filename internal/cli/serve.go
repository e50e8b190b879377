package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/stepdeck/internal/api"
	"github.com/dgallion1/stepdeck/internal/fetch"
	"github.com/dgallion1/stepdeck/internal/pipeline"
	"github.com/dgallion1/stepdeck/internal/render"
	"github.com/dgallion1/stepdeck/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the presenter HTTP API",
	Long: `Serve exposes decks over HTTP: create a deck from markdown, an upload or
a URL, drive it with intents, clicks and wheel deltas, and follow its state
as server-sent events.

Requests under /api need "Authorization: Bearer $STEPDECK_API_KEY".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "listen port (default from STEPDECK_PORT or 8090)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if err := cfg.ValidateServe(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sessions := session.NewStore(cfg.SessionTTL)
	fetcher := fetch.New(cfg.Fetch(), log.With("component", "fetch"))

	orch := pipeline.NewOrchestrator(cfg, sessions, fetcher, log.With("component", "pipeline"))
	orch.Start(ctx)

	stats := render.NewStats(time.Hour)
	renderer := render.NewHTML(render.NewCache(cfg.RenderCacheTTL, cfg.RenderCacheTTL), stats)
	srv := api.NewServer(sessions, orch, renderer, stats, log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		// Event streams stay open; handlers bound their own work.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", "error", err)
		}
	}()

	log.Info("starting stepdeck", "port", cfg.Port, "workers", cfg.WorkerCount, "auth", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}
