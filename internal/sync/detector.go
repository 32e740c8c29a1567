package sync

import (
	"context"

	"github.com/watchlistapp/watchlist-server/internal/domain"
)

// changed reports whether the freshly fetched lists differ from the
// stored snapshot. A count mismatch is an immediate change (covers
// additions and removals); otherwise each fresh entry is compared to
// the stored row on status, score, progress and the remote update
// timestamp. Equality is exact.
func (s *Service) changed(ctx context.Context, username string, fresh []domain.List) (bool, error) {
	existing, err := s.store.EntrySummaries(ctx, username)
	if err != nil {
		return false, err
	}

	if domain.EntryCount(fresh) != len(existing) {
		return true, nil
	}

	byID := make(map[int]domain.EntrySummary, len(existing))
	for _, sum := range existing {
		byID[sum.ID] = sum
	}

	for _, list := range fresh {
		for _, entry := range list.Entries {
			stored, ok := byID[entry.ID]
			if !ok || stored != entry.Summary() {
				return true, nil
			}
		}
	}
	return false, nil
}
