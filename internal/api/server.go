package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/foxzi/emailbuilder/internal/config"
	"github.com/foxzi/emailbuilder/internal/metrics"
	"github.com/foxzi/emailbuilder/internal/relay"
	"github.com/foxzi/emailbuilder/internal/template"
	"github.com/foxzi/emailbuilder/internal/workspace"
)

// ServerOptions contains the dependencies of the API server
type ServerOptions struct {
	Store     template.Store
	Relay     *relay.Relay
	Workspace *workspace.Workspace
	Config    *config.ServerConfig
	// UI is served for every GET that no API route matches. Optional.
	UI      http.Handler
	Version string
	Logger  *slog.Logger
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      template.Store
	relay      *relay.Relay
	ws         *workspace.Workspace
	config     *config.ServerConfig
	ui         http.Handler
	version    string
	logger     *slog.Logger
	startTime  time.Time
}

// NewServer creates a new API server
func NewServer(opts ServerOptions) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		store:     opts.Store,
		relay:     opts.Relay,
		ws:        opts.Workspace,
		config:    opts.Config,
		ui:        opts.UI,
		version:   opts.Version,
		logger:    opts.Logger.With("component", "api"),
		startTime: time.Now(),
	}

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.HTTPMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)

	s.router.Get("/getEmailTemplates", s.handleListTemplates)
	s.router.With(middleware.RequestSize(s.config.MaxUploadBytes)).
		Post("/uploadImage", s.handleUploadImage)
	s.router.Post("/uploadEmailConfig", s.handleCreateTemplate)
	s.router.Put("/editEmailTemplate/{id}", s.handleUpdateTemplate)
	s.router.Post("/renderAndDownloadTemplate", s.handleRenderTemplate)

	if s.ui != nil {
		s.router.Get("/*", s.ui.ServeHTTP)
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server. It returns http.ErrServerClosed
// once Shutdown has been called, including before it started.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	return s.httpServer.Shutdown(ctx)
}
