package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/use-agent/shelfwatch/api"
	"github.com/use-agent/shelfwatch/batch"
	"github.com/use-agent/shelfwatch/config"
	"github.com/use-agent/shelfwatch/models"
	"github.com/use-agent/shelfwatch/session"
)

func main() {
	var (
		serve      = flag.Bool("serve", false, "start the HTTP API instead of running one batch")
		pincodes   = flag.String("pincodes", "", "comma-separated delivery pincodes")
		terms      = flag.String("terms", "", "comma-separated search terms")
		quantities = flag.String("quantities", "", "comma-separated quantities appended to each term (optional)")
	)
	flag.Parse()

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)

	// ── 2b. Sanity-check the configured selector lists ──────────────
	for _, err := range cfg.Selectors.Validate() {
		slog.Warn("invalid selector in configuration", "error", err)
	}

	if !*serve {
		runOnce(cfg, *pincodes, *terms, *quantities)
		return
	}

	slog.Info("shelfwatch starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"service", cfg.Site.Service,
	)

	// ── 3. Wire the batch runner and session registry ───────────────
	runner := batch.NewRunner(cfg, batch.RodLauncher(cfg), nil)
	registry := session.NewRegistry(cfg, nil)

	// ── 4. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(runner, registry, cfg, startTime)

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// Force-close every tracked browser before exiting.
	registry.CloseAll()
	slog.Info("shelfwatch stopped")
}

// runOnce executes a single batch from command-line flags.
func runOnce(cfg *config.Config, pincodes, terms, quantities string) {
	req := &models.BatchRequest{
		Pincodes:    splitList(pincodes),
		SearchTerms: splitList(terms),
		Quantities:  splitList(quantities),
	}
	if req.Quantities == nil {
		req.Quantities = []string{}
	}

	runner := batch.NewRunner(cfg, batch.RodLauncher(cfg), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx, req)
	if err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(result.File)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
