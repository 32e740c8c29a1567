package providers

import (
	"github.com/samber/do/v2"

	"github.com/watchlistapp/watchlist-server/internal/anilist"
	"github.com/watchlistapp/watchlist-server/internal/config"
	"github.com/watchlistapp/watchlist-server/internal/export"
	"github.com/watchlistapp/watchlist-server/internal/logger"
	"github.com/watchlistapp/watchlist-server/internal/modify"
	"github.com/watchlistapp/watchlist-server/internal/oauth"
	listsync "github.com/watchlistapp/watchlist-server/internal/sync"
)

// ProvideAniListClient provides the rate-limited AniList GraphQL client.
func ProvideAniListClient(i do.Injector) (*anilist.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return anilist.NewClient(cfg.AniList, log.Logger), nil
}

// ProvideSyncService provides the list sync orchestrator.
func ProvideSyncService(i do.Injector) (*listsync.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*anilist.Client](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return listsync.NewService(client, storeHandle.Store, cfg.AniList.RequestTimeout, log.Logger), nil
}

// ProvideModifyGateway provides the list mutation gateway.
func ProvideModifyGateway(i do.Injector) (*modify.Gateway, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*anilist.Client](i)

	return modify.NewGateway(client, cfg.AniList.RequestTimeout, log.Logger), nil
}

// ProvideOAuthService provides the AniList OAuth flow service.
func ProvideOAuthService(i do.Injector) (*oauth.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*anilist.Client](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	if !cfg.OAuthConfigured() {
		log.Warn("AniList OAuth credentials not configured - auth endpoints will report errors")
	}

	return oauth.NewService(cfg.AniList, cfg.App.Environment, client, storeHandle.Store, log.Logger), nil
}

// ProvideExportFormatter provides the list export formatter.
func ProvideExportFormatter(i do.Injector) (*export.Formatter, error) {
	return export.NewFormatter(), nil
}
