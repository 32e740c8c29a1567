package modify

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchlistapp/watchlist-server/internal/anilist"
	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/errors"
)

// fakeRemote scripts each remote call of the gateway.
type fakeRemote struct {
	searchResults []*domain.Media
	searchErr     error

	saved       *anilist.SavedEntry
	saveErr     error
	gotUpdate   *anilist.UpdateVariables
	gotStatus   string
	gotMediaID  int
	titleResult string
	titleErr    error
	viewer      *anilist.Viewer
	viewerErr   error
	refs        []anilist.EntryRef
	refsErr     error
	deleted     bool
	deleteErr   error
	deletedID   int
}

func (f *fakeRemote) Search(ctx context.Context, query string) ([]*domain.Media, error) {
	return f.searchResults, f.searchErr
}

func (f *fakeRemote) AddEntry(ctx context.Context, token string, mediaID int, status string) (*anilist.SavedEntry, error) {
	f.gotMediaID = mediaID
	f.gotStatus = status
	return f.saved, f.saveErr
}

func (f *fakeRemote) UpdateEntry(ctx context.Context, token string, vars anilist.UpdateVariables) (*anilist.SavedEntry, error) {
	f.gotUpdate = &vars
	return f.saved, f.saveErr
}

func (f *fakeRemote) MediaTitle(ctx context.Context, mediaID int) (string, error) {
	return f.titleResult, f.titleErr
}

func (f *fakeRemote) Viewer(ctx context.Context, token string) (*anilist.Viewer, error) {
	return f.viewer, f.viewerErr
}

func (f *fakeRemote) EntriesForUser(ctx context.Context, token string, userID int) ([]anilist.EntryRef, error) {
	return f.refs, f.refsErr
}

func (f *fakeRemote) DeleteEntryByID(ctx context.Context, token string, entryID int) (bool, error) {
	f.deletedID = entryID
	return f.deleted, f.deleteErr
}

func newTestGateway(t *testing.T, remote *fakeRemote) *Gateway {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewGateway(remote, 5*time.Second, logger)
}

func TestSearchRequiresQuery(t *testing.T) {
	g := newTestGateway(t, &fakeRemote{})

	_, err := g.Search(context.Background(), SearchRequest{})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestSearchWithoutToken(t *testing.T) {
	remote := &fakeRemote{searchResults: []*domain.Media{{ID: 1}}}
	g := newTestGateway(t, remote)

	results, err := g.Search(context.Background(), SearchRequest{Query: "frieren"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestAddRequiresToken(t *testing.T) {
	g := newTestGateway(t, &fakeRemote{})

	_, err := g.Add(context.Background(), "", AddRequest{AnimeID: 42})
	assert.True(t, errors.Is(err, errors.ErrAuthRequired))
}

func TestAddDefaultsToPlanning(t *testing.T) {
	remote := &fakeRemote{saved: &anilist.SavedEntry{ID: 555, Status: "PLANNING"}}
	g := newTestGateway(t, remote)

	saved, err := g.Add(context.Background(), "tok", AddRequest{AnimeID: 42})
	require.NoError(t, err)

	assert.Equal(t, 42, remote.gotMediaID)
	assert.Equal(t, "PLANNING", remote.gotStatus)
	assert.Equal(t, 555, saved.ID)
}

func TestAddRejectsUnknownStatus(t *testing.T) {
	g := newTestGateway(t, &fakeRemote{})

	_, err := g.Add(context.Background(), "tok", AddRequest{AnimeID: 42, Status: "WISHLIST"})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestUpdatePartialVariables(t *testing.T) {
	remote := &fakeRemote{saved: &anilist.SavedEntry{ID: 555}}
	g := newTestGateway(t, remote)

	progress := 7
	_, err := g.Update(context.Background(), "tok", UpdateRequest{
		AnimeID:  42,
		Progress: &progress,
	})
	require.NoError(t, err)

	require.NotNil(t, remote.gotUpdate)
	assert.Equal(t, 42, remote.gotUpdate.MediaID)
	require.NotNil(t, remote.gotUpdate.Progress)
	assert.Equal(t, 7, *remote.gotUpdate.Progress)
	assert.Nil(t, remote.gotUpdate.Status)
	assert.Nil(t, remote.gotUpdate.ScoreRaw)
}

func TestUpdateScoreConversion(t *testing.T) {
	remote := &fakeRemote{saved: &anilist.SavedEntry{ID: 555}}
	g := newTestGateway(t, remote)

	score := 8.5
	_, err := g.Update(context.Background(), "tok", UpdateRequest{
		AnimeID: 42,
		Score:   &score,
	})
	require.NoError(t, err)

	require.NotNil(t, remote.gotUpdate.ScoreRaw)
	assert.Equal(t, 85, *remote.gotUpdate.ScoreRaw)
}

func TestUpdateRejectsOutOfRangeScore(t *testing.T) {
	g := newTestGateway(t, &fakeRemote{})

	score := 11.0
	_, err := g.Update(context.Background(), "tok", UpdateRequest{AnimeID: 42, Score: &score})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestDeleteHappyPath(t *testing.T) {
	remote := &fakeRemote{
		titleResult: "Shingeki no Kyojin",
		viewer:      &anilist.Viewer{ID: 777, Name: "alice"},
		refs: []anilist.EntryRef{
			{ID: 100, MediaID: 1},
			{ID: 101, MediaID: 42},
		},
		deleted: true,
	}
	g := newTestGateway(t, remote)

	result, err := g.Delete(context.Background(), "tok", DeleteRequest{AnimeID: 42})
	require.NoError(t, err)

	assert.True(t, result.Deleted)
	assert.Equal(t, 101, result.EntryID)
	assert.Equal(t, "Shingeki no Kyojin", result.Title)
	assert.Equal(t, 101, remote.deletedID)
}

func TestDeleteMediaNotFound(t *testing.T) {
	remote := &fakeRemote{titleErr: errors.MutationFailed("media not found")}
	g := newTestGateway(t, remote)

	_, err := g.Delete(context.Background(), "tok", DeleteRequest{AnimeID: 999})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMutationFailed))
	assert.Contains(t, err.Error(), "media 999 not found")
}

func TestDeleteViewerFailure(t *testing.T) {
	remote := &fakeRemote{
		titleResult: "Monster",
		viewerErr:   errors.MutationFailed("invalid token"),
	}
	g := newTestGateway(t, remote)

	_, err := g.Delete(context.Background(), "tok", DeleteRequest{AnimeID: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not resolve viewer")
}

func TestDeleteNotInList(t *testing.T) {
	remote := &fakeRemote{
		titleResult: "Monster",
		viewer:      &anilist.Viewer{ID: 777},
		refs:        []anilist.EntryRef{{ID: 100, MediaID: 1}},
	}
	g := newTestGateway(t, remote)

	_, err := g.Delete(context.Background(), "tok", DeleteRequest{AnimeID: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Monster is not in your list")
}

func TestDeleteRemoteRefuses(t *testing.T) {
	remote := &fakeRemote{
		titleResult: "Monster",
		viewer:      &anilist.Viewer{ID: 777},
		refs:        []anilist.EntryRef{{ID: 101, MediaID: 42}},
		deleted:     false,
	}
	g := newTestGateway(t, remote)

	_, err := g.Delete(context.Background(), "tok", DeleteRequest{AnimeID: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not delete")
}

func TestDeleteRequiresToken(t *testing.T) {
	g := newTestGateway(t, &fakeRemote{})

	_, err := g.Delete(context.Background(), "", DeleteRequest{AnimeID: 42})
	assert.True(t, errors.Is(err, errors.ErrAuthRequired))
}
