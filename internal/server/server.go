package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

type Server struct {
	dashboard   *services.Dashboard
	mux         *http.ServeMux
	handler     http.Handler
	logger      *slog.Logger
	metrics     *observability.Metrics
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// NewServer wires the routes. Dashboard, API and SSE routes run inside a
// session; health, metrics and admin routes do not, so health checks and scrapes
// never create one.
func NewServer(cfg *config.Config, dashboard *services.Dashboard, demo *services.Demo, metrics *observability.Metrics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dashboard:   dashboard,
		mux:         http.NewServeMux(),
		logger:      logger,
		metrics:     metrics,
		apiHandlers: handlers.NewAPIHandlers(dashboard, demo, metrics, logger, cfg.Dataset.UploadMaxBytes),
		sseHandlers: handlers.NewSSEHandlers(dashboard, demo, metrics, logger),
	}
	s.setupRoutes(templateHandlers, middleware.Session(dashboard.Sessions(), cfg.Session.CookieName, cfg.Session.TTL))
	s.handler = s.mux
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers, session middleware.Middleware) {
	handle := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, session(h))
	}

	// Dashboard routes
	handle("GET /{$}", templateHandlers.Dashboard)
	handle("POST /upload", s.apiHandlers.HandleFormUpload)

	// Operational routes, outside any session
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// REST API endpoints
	handle("POST /api/upload", s.apiHandlers.HandleUpload)
	handle("GET /api/view", s.apiHandlers.HandleView)
	handle("GET /api/kpis", s.apiHandlers.HandleKPIs)
	handle("GET /api/regions", s.apiHandlers.HandleRegions)
	handle("GET /api/vendors", s.apiHandlers.HandleVendors)
	handle("GET /api/export.csv", s.apiHandlers.HandleExport)
	handle("GET /api/demo", s.apiHandlers.HandleDemo)
	handle("POST /api/demo/favorite-dessert", s.apiHandlers.HandleFavoriteDessert)

	// Datastar SSE endpoints
	handle("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
	handle("GET /sse/demo", s.sseHandlers.HandleDemo)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
