package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/watchlistapp/watchlist-server/internal/api"
	"github.com/watchlistapp/watchlist-server/internal/config"
	"github.com/watchlistapp/watchlist-server/internal/export"
	"github.com/watchlistapp/watchlist-server/internal/logger"
	"github.com/watchlistapp/watchlist-server/internal/modify"
	"github.com/watchlistapp/watchlist-server/internal/oauth"
	listsync "github.com/watchlistapp/watchlist-server/internal/sync"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	syncService := do.MustInvoke[*listsync.Service](i)
	formatter := do.MustInvoke[*export.Formatter](i)
	gateway := do.MustInvoke[*modify.Gateway](i)
	oauthService := do.MustInvoke[*oauth.Service](i)

	handler := api.NewServer(syncService, formatter, gateway, oauthService, cfg.Frontend.BaseURL, cfg.Frontend.CORSOrigins, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
