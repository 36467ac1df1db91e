package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout   = 10 * time.Second
	seedLoadTimeout = 30 * time.Second
)

// newDashboardHandler renders the full page for the caller's session.
func newDashboardHandler(dashboard *services.Dashboard, demo *services.Demo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		view := dashboard.View(observability.GetSessionID(ctx), nil)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := templates.Dashboard(view, demo.Panels()).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	sessions := services.NewSessionStore(cfg.Session.TTL, logger)
	sessions.StartSweeper(cfg.Session.SweepInterval)

	dashboard := services.NewDashboard(sessions, services.NewLoader(logger), logger)
	demo := services.NewDemo(cfg.Demo.Seed)
	metrics := observability.NewMetrics(func() float64 { return float64(sessions.Len()) })

	if cfg.Dataset.SeedFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), seedLoadTimeout)
		start := time.Now()
		err := dashboard.LoadSeed(ctx, cfg.Dataset.SeedFile)
		cancel()
		if err != nil {
			logger.Error("failed to load seed dataset", "file", cfg.Dataset.SeedFile, "error", err)
			os.Exit(1)
		}
		logger.Info("seed dataset loaded", "file", cfg.Dataset.SeedFile, "duration", time.Since(start))
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(dashboard, demo),
	}

	srv := server.NewServer(cfg, dashboard, demo, metrics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("sessions", func(ctx context.Context) error {
		logger.Info("closing session store", "sessions", sessions.Len())
		sessions.Close()
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
