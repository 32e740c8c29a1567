package sync

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/errors"
	"github.com/watchlistapp/watchlist-server/internal/store/sqlite"
)

type fakeFetcher struct {
	lists []domain.List
	err   error
	calls int
}

func (f *fakeFetcher) FetchLists(ctx context.Context, username string) ([]domain.List, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.lists, nil
}

func newTestService(t *testing.T, fetcher listFetcher) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(fetcher, s, 5*time.Second, logger)
}

func aliceLists() []domain.List {
	return []domain.List{{
		Name: "Watching",
		Entries: []*domain.ListEntry{
			{ID: 1, MediaID: 10, Status: domain.StatusCurrent, Score: 7, Progress: 3, UpdatedAt: 1000},
			{ID: 2, MediaID: 20, Status: domain.StatusCurrent, Score: 8, Progress: 5, UpdatedAt: 2000},
		},
	}}
}

func TestSyncFirstTime(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{lists: aliceLists()})

	result, err := svc.Sync(context.Background(), "alice")
	require.NoError(t, err)

	assert.False(t, result.Cached)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "alice", result.Username)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, "Data synced successfully", result.Message)
}

func TestSyncIdempotent(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{lists: aliceLists()})
	ctx := context.Background()

	first, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Count, second.Count)
	assert.Equal(t, "No changes detected", second.Message)

	firstIDs := make([]int, 0, len(first.Entries))
	for _, e := range first.Entries {
		firstIDs = append(firstIDs, e.ID)
	}
	secondIDs := make([]int, 0, len(second.Entries))
	for _, e := range second.Entries {
		secondIDs = append(secondIDs, e.ID)
	}
	assert.ElementsMatch(t, firstIDs, secondIDs)
}

func TestSyncProgressChange(t *testing.T) {
	fetcher := &fakeFetcher{lists: aliceLists()}
	svc := newTestService(t, fetcher)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)

	// One entry advances by one episode remotely, all else equal.
	changed := aliceLists()
	changed[0].Entries[0].Progress = 4
	fetcher.lists = changed

	result, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)

	assert.False(t, result.Cached)
	assert.Equal(t, 2, result.Count)
	for _, e := range result.Entries {
		if e.ID == 1 {
			assert.Equal(t, 4, e.Progress)
		}
	}
}

func TestSyncCountChange(t *testing.T) {
	fetcher := &fakeFetcher{lists: aliceLists()}
	svc := newTestService(t, fetcher)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)

	// One entry disappears remotely; the survivor is byte-identical.
	smaller := aliceLists()
	smaller[0].Entries = smaller[0].Entries[:1]
	fetcher.lists = smaller

	result, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)

	assert.False(t, result.Cached)
	assert.Equal(t, 1, result.Count)
}

func TestSyncFetchFailureServesCache(t *testing.T) {
	fetcher := &fakeFetcher{lists: aliceLists()}
	svc := newTestService(t, fetcher)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)

	fetcher.err = errors.FetchFailed("remote down")

	result, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)

	assert.True(t, result.Cached)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "Returned cached data (AniList fetch failed)", result.Message)
}

func TestSyncFetchFailureWithoutCache(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{err: errors.FetchFailed("remote down")})

	_, err := svc.Sync(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoCache))
}

func TestSyncEmptyUsername(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{})

	_, err := svc.Sync(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestSyncDoesNotTouchOtherUsers(t *testing.T) {
	fetcher := &fakeFetcher{lists: aliceLists()}
	svc := newTestService(t, fetcher)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Sync(ctx, "bob")
	require.NoError(t, err)

	// Bob's list shrinks; alice's snapshot must be untouched.
	smaller := aliceLists()
	smaller[0].Entries = smaller[0].Entries[:1]
	fetcher.lists = smaller
	_, err = svc.Sync(ctx, "bob")
	require.NoError(t, err)

	entries, err := svc.CachedEntries(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// sequencedFetcher serves a different payload per call and records
// whether two calls ever ran at the same time.
type sequencedFetcher struct {
	mu       stdsync.Mutex
	payloads [][]domain.List
	calls    int
	active   int
	overlap  bool
}

func (f *sequencedFetcher) FetchLists(ctx context.Context, username string) ([]domain.List, error) {
	f.mu.Lock()
	f.active++
	if f.active > 1 {
		f.overlap = true
	}
	payload := f.payloads[f.calls%len(f.payloads)]
	f.calls++
	f.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()
	return payload, nil
}

func TestSyncSerializesSameUser(t *testing.T) {
	bigger := aliceLists()
	smaller := []domain.List{{
		Name: "Watching",
		Entries: []*domain.ListEntry{
			{ID: 3, MediaID: 30, Status: domain.StatusCurrent, Score: 6, Progress: 1, UpdatedAt: 3000},
		},
	}}
	fetcher := &sequencedFetcher{payloads: [][]domain.List{bigger, smaller}}
	svc := newTestService(t, fetcher)
	ctx := context.Background()

	var wg stdsync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Sync(ctx, "alice")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, fetcher.calls)
	assert.False(t, fetcher.overlap, "fetches for the same user overlapped")

	// The snapshot is whichever payload the second sync stored, whole.
	entries, err := svc.CachedEntries(ctx, "alice", "")
	require.NoError(t, err)
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	switch len(ids) {
	case 2:
		assert.ElementsMatch(t, []int{1, 2}, ids)
	case 1:
		assert.Equal(t, []int{3}, ids)
	default:
		t.Fatalf("snapshot mixes payloads: %v", ids)
	}
}

func TestUserLockIsStable(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{})

	l1 := svc.userLock("alice")
	l2 := svc.userLock("alice")
	l3 := svc.userLock("bob")

	assert.Same(t, l1, l2)
	assert.NotSame(t, l1, l3)
}
