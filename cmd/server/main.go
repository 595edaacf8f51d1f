package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillmark/quillmark/internal/api"
	"github.com/quillmark/quillmark/internal/cms"
	"github.com/quillmark/quillmark/internal/config"
	"github.com/quillmark/quillmark/internal/marker"
	"github.com/quillmark/quillmark/internal/pipeline"
	"github.com/quillmark/quillmark/internal/render"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the marker scanner, from a profile file when configured.
	sigils, err := config.LoadSigils(cfg.SigilConfigPath)
	if err != nil {
		log.Error("failed to load sigil profile", "path", cfg.SigilConfigPath, "error", err)
		os.Exit(1)
	}
	scanner, err := marker.NewScanner(sigils)
	if err != nil {
		log.Error("invalid sigil table", "error", err)
		os.Exit(1)
	}

	stats := render.NewStats(time.Hour)
	renderer := render.New(stats)

	// CMS publishing is optional.
	var cmsClient *cms.Client
	if cfg.CMSURL != "" {
		cmsClient = cms.NewClient(cfg.CMSURL, cfg.CMSAPIKey)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, scanner, renderer, cmsClient, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, scanner, renderer, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if cmsClient != nil {
			cmsClient.Close()
		}
	}()

	log.Info("starting quillmark", "port", cfg.Port, "cms_enabled", cmsClient != nil)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
