package anilist

import (
	"context"

	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/errors"
)

const mediaListQuery = `
query ($username: String) {
  MediaListCollection(userName: $username, type: ANIME) {
    lists {
      name
      entries {
        id
        mediaId
        status
        score
        progress
        repeat
        startedAt { year month day }
        completedAt { year month day }
        updatedAt
        createdAt
        media {
          id
          title { romaji english native }
          coverImage { large medium }
          bannerImage
          episodes
          format
          status
          season
          seasonYear
          genres
          averageScore
          description
        }
      }
    }
  }
}`

type mediaListVariables struct {
	Username string `json:"username"`
}

// wireEntry mirrors one MediaListCollection entry as AniList returns it.
type wireEntry struct {
	ID          int              `json:"id"`
	MediaID     int              `json:"mediaId"`
	Status      string           `json:"status"`
	Score       float64          `json:"score"`
	Progress    int              `json:"progress"`
	Repeat      int              `json:"repeat"`
	StartedAt   domain.FuzzyDate `json:"startedAt"`
	CompletedAt domain.FuzzyDate `json:"completedAt"`
	UpdatedAt   int64            `json:"updatedAt"`
	CreatedAt   int64            `json:"createdAt"`
	Media       *domain.Media    `json:"media"`
}

type mediaListData struct {
	MediaListCollection struct {
		Lists []struct {
			Name    string      `json:"name"`
			Entries []wireEntry `json:"entries"`
		} `json:"lists"`
	} `json:"MediaListCollection"`
}

// FetchLists fetches a user's full anime list collection.
// Any transport or GraphQL failure is reported as a fetch error so
// callers can fall back to their cached snapshot.
func (c *Client) FetchLists(ctx context.Context, username string) ([]domain.List, error) {
	c.logger.Debug("fetching anime lists", "username", username)

	data, err := post[mediaListData](ctx, c, "", mediaListQuery, mediaListVariables{Username: username})
	if err != nil {
		return nil, errors.FetchFailed(err.Error())
	}

	lists := make([]domain.List, 0, len(data.MediaListCollection.Lists))
	for _, wl := range data.MediaListCollection.Lists {
		list := domain.List{Name: wl.Name, Entries: make([]*domain.ListEntry, 0, len(wl.Entries))}
		for _, we := range wl.Entries {
			list.Entries = append(list.Entries, we.toDomain(username, wl.Name))
		}
		lists = append(lists, list)
	}

	c.logger.Debug("fetched anime lists",
		"username", username,
		"lists", len(lists),
		"entries", domain.EntryCount(lists),
	)
	return lists, nil
}

func (we *wireEntry) toDomain(username, listName string) *domain.ListEntry {
	return &domain.ListEntry{
		ID:          we.ID,
		Username:    username,
		MediaID:     we.MediaID,
		ListName:    listName,
		Status:      domain.ListStatus(we.Status),
		Score:       we.Score,
		Progress:    we.Progress,
		Repeat:      we.Repeat,
		StartedAt:   we.StartedAt,
		CompletedAt: we.CompletedAt,
		UpdatedAt:   we.UpdatedAt,
		CreatedAt:   we.CreatedAt,
		Media:       we.Media,
	}
}
