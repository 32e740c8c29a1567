// Package di provides dependency injection configuration for the watchlist server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/watchlistapp/watchlist-server/internal/anilist"
	"github.com/watchlistapp/watchlist-server/internal/config"
	"github.com/watchlistapp/watchlist-server/internal/di/providers"
	"github.com/watchlistapp/watchlist-server/internal/export"
	"github.com/watchlistapp/watchlist-server/internal/logger"
	"github.com/watchlistapp/watchlist-server/internal/modify"
	"github.com/watchlistapp/watchlist-server/internal/oauth"
	listsync "github.com/watchlistapp/watchlist-server/internal/sync"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Remote client
	do.Provide(injector, providers.ProvideAniListClient)

	// Business services
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideModifyGateway)
	do.Provide(injector, providers.ProvideOAuthService)
	do.Provide(injector, providers.ProvideExportFormatter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*anilist.Client](injector)

	_ = do.MustInvoke[*listsync.Service](injector)
	_ = do.MustInvoke[*modify.Gateway](injector)
	_ = do.MustInvoke[*oauth.Service](injector)
	_ = do.MustInvoke[*export.Formatter](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
