// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/datwatch/internal/api"
	"github.com/starford/datwatch/internal/convert"
	"github.com/starford/datwatch/internal/markers"
	"github.com/starford/datwatch/internal/sse"
	"github.com/starford/datwatch/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("watch_dir", cfg.Watch.Dir),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("markers_path", cfg.Markers.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure watch and output directories exist.
	if err := os.MkdirAll(cfg.Watch.Dir, 0o755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Open the processed-marker store.
	store, err := markers.Open(cfg.Markers.Path)
	if err != nil {
		return fmt.Errorf("init markers: %w", err)
	}
	defer store.Close()

	tracker := watch.NewTracker(store)

	// Pick up files written while the daemon was down.
	if err := watch.Scan(tracker, cfg.Watch.Dir, cfg.Watch.Extension, logger); err != nil {
		logger.Warn("initial scan failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API service and router.
	svc := api.NewService(tracker, store)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	converter := convert.New(cfg.Output.Dir, logger)

	logger.Info("Watching for instrument output...",
		slog.String("dir", cfg.Watch.Dir),
		slog.String("extension", cfg.Watch.Extension))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the watch loop feeding counters and SSE events.
	g.Go(func() error {
		err := watch.Watch(gCtx, tracker, converter, cfg.Watch.Dir, watch.Options{
			Extension:    cfg.Watch.Extension,
			Inactivity:   cfg.Watch.Inactivity(),
			PollInterval: cfg.Watch.PollInterval(),
		}, logger, func(kind, path string) {
			svc.RecordEvent(kind)
			broker.PublishFileEvent(kind, path)
		})
		if err != nil {
			// The watch subsystem itself failed; pause briefly so a crash
			// loop under a supervisor doesn't spin, then shut down.
			logger.Error("watch loop failed", slog.String("error", err.Error()))
			time.Sleep(5 * time.Second)
			return fmt.Errorf("watch loop: %w", err)
		}
		return nil
	})

	// Periodically prune markers for files no longer on disk.
	if cfg.Markers.PruneEnabled() {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.Markers.PruneInterval())
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					removed, err := store.Prune(func(path string) bool {
						_, statErr := os.Stat(path)
						return statErr == nil
					})
					if err != nil {
						logger.Warn("marker prune failed", slog.String("error", err.Error()))
					} else if removed > 0 {
						logger.Info("marker prune", slog.Int("removed", removed))
					}
				}
			}
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}
