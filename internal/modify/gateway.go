// Package modify proxies list mutations (search, add, update, delete)
// to the remote service on behalf of an authenticated user.
package modify

import (
	"context"
	"log/slog"
	"time"

	"github.com/watchlistapp/watchlist-server/internal/anilist"
	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/errors"
	"github.com/watchlistapp/watchlist-server/internal/validation"
)

// remote is the slice of the AniList client the gateway needs.
type remote interface {
	Search(ctx context.Context, query string) ([]*domain.Media, error)
	AddEntry(ctx context.Context, token string, mediaID int, status string) (*anilist.SavedEntry, error)
	UpdateEntry(ctx context.Context, token string, vars anilist.UpdateVariables) (*anilist.SavedEntry, error)
	MediaTitle(ctx context.Context, mediaID int) (string, error)
	Viewer(ctx context.Context, token string) (*anilist.Viewer, error)
	EntriesForUser(ctx context.Context, token string, userID int) ([]anilist.EntryRef, error)
	DeleteEntryByID(ctx context.Context, token string, entryID int) (bool, error)
}

// Gateway proxies list mutations to the remote service. Mutations never
// degrade: any failed step aborts the whole operation with the step's
// specific cause.
type Gateway struct {
	remote    remote
	logger    *slog.Logger
	validator *validation.Validator

	// timeout bounds each individual remote call.
	timeout time.Duration
}

// NewGateway creates a new modify gateway.
func NewGateway(remote remote, timeout time.Duration, logger *slog.Logger) *Gateway {
	return &Gateway{
		remote:    remote,
		logger:    logger,
		validator: validation.New(),
		timeout:   timeout,
	}
}

func (g *Gateway) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

// SearchRequest asks for media candidates matching a search term.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

// Search returns media candidates for the query. No token required.
func (g *Gateway) Search(ctx context.Context, req SearchRequest) ([]*domain.Media, error) {
	if err := g.validator.Validate(req); err != nil {
		return nil, err
	}

	callCtx, cancel := g.callCtx(ctx)
	defer cancel()
	return g.remote.Search(callCtx, req.Query)
}

// AddRequest adds a media to the user's list.
type AddRequest struct {
	AnimeID int    `json:"animeId" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=CURRENT PLANNING COMPLETED DROPPED PAUSED REPEATING"`
}

// Add adds a media to the authenticated user's list.
// Status defaults to PLANNING when unspecified.
func (g *Gateway) Add(ctx context.Context, token string, req AddRequest) (*anilist.SavedEntry, error) {
	if token == "" {
		return nil, errors.AuthRequired("not authenticated")
	}
	if err := g.validator.Validate(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = string(domain.StatusPlanning)
	}

	callCtx, cancel := g.callCtx(ctx)
	defer cancel()

	saved, err := g.remote.AddEntry(callCtx, token, req.AnimeID, status)
	if err != nil {
		return nil, err
	}
	g.logger.Info("added list entry", "media_id", req.AnimeID, "status", status)
	return saved, nil
}

// UpdateRequest updates the supplied fields of an existing entry.
// Nil fields are left untouched remotely.
type UpdateRequest struct {
	AnimeID  int      `json:"animeId" validate:"required"`
	Status   *string  `json:"status" validate:"omitempty,oneof=CURRENT PLANNING COMPLETED DROPPED PAUSED REPEATING"`
	Progress *int     `json:"progress" validate:"omitempty,gte=0"`
	Score    *float64 `json:"score" validate:"omitempty,gte=0,lte=10"`
}

// Update sends a partial update for the user's entry of a media. The
// 0-10 score is converted to the remote's raw 0-1000 scale.
func (g *Gateway) Update(ctx context.Context, token string, req UpdateRequest) (*anilist.SavedEntry, error) {
	if token == "" {
		return nil, errors.AuthRequired("not authenticated")
	}
	if err := g.validator.Validate(req); err != nil {
		return nil, err
	}

	vars := anilist.UpdateVariables{
		MediaID:  req.AnimeID,
		Status:   req.Status,
		Progress: req.Progress,
	}
	if req.Score != nil {
		raw := int(*req.Score * 10)
		vars.ScoreRaw = &raw
	}

	callCtx, cancel := g.callCtx(ctx)
	defer cancel()

	saved, err := g.remote.UpdateEntry(callCtx, token, vars)
	if err != nil {
		return nil, err
	}
	g.logger.Info("updated list entry", "media_id", req.AnimeID)
	return saved, nil
}

// DeleteRequest removes a media from the user's list.
type DeleteRequest struct {
	AnimeID int `json:"animeId" validate:"required"`
}

// DeleteResult reports a completed delete.
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	EntryID int    `json:"entryId"`
	Title   string `json:"title"`
}

// Delete removes the user's entry for a media through four dependent
// remote calls: resolve the media title, resolve the viewer, locate the
// viewer's entry for the media, then delete it by entry id. Each failed
// step aborts the chain with its own error.
func (g *Gateway) Delete(ctx context.Context, token string, req DeleteRequest) (*DeleteResult, error) {
	if token == "" {
		return nil, errors.AuthRequired("not authenticated")
	}
	if err := g.validator.Validate(req); err != nil {
		return nil, err
	}

	title, err := step(ctx, g, func(c context.Context) (string, error) {
		return g.remote.MediaTitle(c, req.AnimeID)
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeMutationFailed, "media %d not found", req.AnimeID)
	}

	viewer, err := step(ctx, g, func(c context.Context) (*anilist.Viewer, error) {
		return g.remote.Viewer(c, token)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMutationFailed, "could not resolve viewer")
	}

	refs, err := step(ctx, g, func(c context.Context) ([]anilist.EntryRef, error) {
		return g.remote.EntriesForUser(c, token, viewer.ID)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMutationFailed, "could not list entries")
	}

	entryID := 0
	for _, ref := range refs {
		if ref.MediaID == req.AnimeID {
			entryID = ref.ID
			break
		}
	}
	if entryID == 0 {
		return nil, errors.MutationFailedf("%s is not in your list", title)
	}

	deleted, err := step(ctx, g, func(c context.Context) (bool, error) {
		return g.remote.DeleteEntryByID(c, token, entryID)
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeMutationFailed, "delete entry %d", entryID)
	}
	if !deleted {
		return nil, errors.MutationFailed("remote did not delete the entry")
	}

	g.logger.Info("deleted list entry", "media_id", req.AnimeID, "entry_id", entryID)
	return &DeleteResult{Deleted: true, EntryID: entryID, Title: title}, nil
}

// step runs one remote call of a chain under the gateway's timeout.
func step[T any](ctx context.Context, g *Gateway, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := g.callCtx(ctx)
	defer cancel()
	return fn(callCtx)
}
