// Package api provides the HTTP API server and handlers for the watchlist application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/watchlistapp/watchlist-server/internal/export"
	"github.com/watchlistapp/watchlist-server/internal/http/response"
	"github.com/watchlistapp/watchlist-server/internal/modify"
	"github.com/watchlistapp/watchlist-server/internal/oauth"
	listsync "github.com/watchlistapp/watchlist-server/internal/sync"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sync        *listsync.Service
	formatter   *export.Formatter
	gateway     *modify.Gateway
	oauth       *oauth.Service
	frontendURL string
	corsOrigins []string
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(syncService *listsync.Service, formatter *export.Formatter, gateway *modify.Gateway, oauthService *oauth.Service, frontendURL string, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		sync:        syncService,
		formatter:   formatter,
		gateway:     gateway,
		oauth:       oauthService,
		frontendURL: frontendURL,
		corsOrigins: corsOrigins,
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The browser frontend calls this API cross-origin with the auth cookie,
	// so CORS must allow credentials for the configured origins.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes. The paths mirror the frontend's
// existing wire contract, including the mixed-case auth paths.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Post("/anilist/BaseFunction/fetch", s.handleFetch)
	s.router.Post("/anilist/BaseFunction/export", s.handleExport)

	s.router.Get("/Anilist-auth", s.handleAuthorize)
	s.router.Get("/anilist/auth/callback", s.handleAuthCallback)
	s.router.Post("/Anilist-exchange", s.handleExchange)
	s.router.Get("/anilist/auth/check", s.handleAuthCheck)
	s.router.Post("/anilist/auth/logout", s.handleLogout)

	s.router.Post("/anilist/modify", s.handleModifyAction)
	s.router.Put("/anilist/modify", s.handleModifyUpdate)
	s.router.Delete("/anilist/modify", s.handleModifyDelete)
}

// handleHealthCheck returns service health status.
// GET /health
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "healthy"}, s.logger)
}
