// Package sync orchestrates the fetch/diff/persist flow that mirrors a
// user's remote anime list into the local snapshot store.
package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/errors"
)

// listFetcher fetches a user's lists from the remote service.
type listFetcher interface {
	FetchLists(ctx context.Context, username string) ([]domain.List, error)
}

// snapshotStore is the slice of the store the orchestrator needs.
type snapshotStore interface {
	ReplaceUserEntries(ctx context.Context, username string, lists []domain.List) (int, error)
	EntrySummaries(ctx context.Context, username string) ([]domain.EntrySummary, error)
	EntriesForUser(ctx context.Context, username string, status string) ([]*domain.CachedEntry, error)
}

// Service orchestrates sync: remote fetch, change detection, persistence
// and cache fallback. Syncs for the same username are serialized through
// a per-user mutex; different users proceed concurrently.
type Service struct {
	fetcher listFetcher
	store   snapshotStore
	logger  *slog.Logger

	// fetchTimeout bounds the remote call independently of the request
	// context so a slow remote degrades to the cache instead of hanging.
	fetchTimeout time.Duration

	userLocks *Map[string, *stdsync.Mutex]
}

// NewService creates a new sync service.
func NewService(fetcher listFetcher, store snapshotStore, fetchTimeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		fetcher:      fetcher,
		store:        store,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		userLocks:    NewMap[string, *stdsync.Mutex](),
	}
}

// Result is the outcome of a sync: the served snapshot and whether it
// came from the cache or a fresh remote fetch.
type Result struct {
	Username string                `json:"username"`
	Count    int                   `json:"count"`
	Entries  []*domain.CachedEntry `json:"animeList"`
	Cached   bool                  `json:"cached"`
	Message  string                `json:"message"`
}

// Sync mirrors the user's remote list into the local snapshot and
// returns the stored view. On remote failure it serves the cached
// snapshot; with no cache available the sync fails.
func (s *Service) Sync(ctx context.Context, username string) (*Result, error) {
	if username == "" {
		return nil, errors.Validation("username is required")
	}

	lock := s.userLock(username)
	lock.Lock()
	defer lock.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	lists, err := s.fetcher.FetchLists(fetchCtx, username)
	if err != nil {
		s.logger.Warn("remote fetch failed, serving cached snapshot",
			"username", username, "error", err)
		return s.serveCache(ctx, username, "Returned cached data (AniList fetch failed)", true)
	}

	changed, err := s.changed(ctx, username, lists)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "load cached entries")
	}
	if !changed {
		s.logger.Debug("no changes detected", "username", username)
		return s.serveCache(ctx, username, "No changes detected", false)
	}

	if _, err := s.store.ReplaceUserEntries(ctx, username, lists); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "persist entries")
	}

	entries, err := s.store.EntriesForUser(ctx, username, "")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "read entries")
	}

	s.logger.Info("synced anime list", "username", username, "count", len(entries))
	return &Result{
		Username: username,
		Count:    len(entries),
		Entries:  entries,
		Cached:   false,
		Message:  "Data synced successfully",
	}, nil
}

// CachedEntries returns the stored snapshot without contacting the
// remote service, optionally filtered by status.
func (s *Service) CachedEntries(ctx context.Context, username, status string) ([]*domain.CachedEntry, error) {
	entries, err := s.store.EntriesForUser(ctx, username, status)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "read entries")
	}
	return entries, nil
}

// serveCache serves the stored snapshot. When the cache is a fallback
// for a failed fetch, an empty cache is a terminal failure.
func (s *Service) serveCache(ctx context.Context, username, message string, mustExist bool) (*Result, error) {
	entries, err := s.store.EntriesForUser(ctx, username, "")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "read entries")
	}
	if mustExist && len(entries) == 0 {
		return nil, errors.NoCache("no cached data found")
	}

	return &Result{
		Username: username,
		Count:    len(entries),
		Entries:  entries,
		Cached:   true,
		Message:  message,
	}, nil
}

// userLock returns the mutex serializing syncs for a username.
func (s *Service) userLock(username string) *stdsync.Mutex {
	if lock, ok := s.userLocks.Load(username); ok {
		return lock
	}
	actual, _ := s.userLocks.LoadOrStore(username, &stdsync.Mutex{})
	return actual
}
