package anilist

import (
	"context"

	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/errors"
)

const searchQuery = `
query ($search: String) {
  Page(page: 1, perPage: 20) {
    media(search: $search, type: ANIME) {
      id
      title { romaji english native }
      coverImage { large medium }
      bannerImage
      episodes
      format
      genres
      averageScore
      description
    }
  }
}`

type searchVariables struct {
	Search string `json:"search"`
}

type searchData struct {
	Page struct {
		Media []*domain.Media `json:"media"`
	} `json:"Page"`
}

// Search returns up to 20 anime matching the query. No token required.
func (c *Client) Search(ctx context.Context, query string) ([]*domain.Media, error) {
	data, err := post[searchData](ctx, c, "", searchQuery, searchVariables{Search: query})
	if err != nil {
		return nil, errors.FetchFailed(err.Error())
	}
	return data.Page.Media, nil
}
