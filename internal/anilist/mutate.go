package anilist

import (
	"context"

	"github.com/watchlistapp/watchlist-server/internal/errors"
)

const addEntryMutation = `
mutation ($mediaId: Int, $status: MediaListStatus) {
  SaveMediaListEntry(mediaId: $mediaId, status: $status) {
    id
    status
  }
}`

const updateEntryMutation = `
mutation ($mediaId: Int, $status: MediaListStatus, $progress: Int, $score: Int) {
  SaveMediaListEntry(mediaId: $mediaId, status: $status, progress: $progress, scoreRaw: $score) {
    id
    status
    progress
    score
  }
}`

const viewerQuery = `{ Viewer { id name } }`

const mediaTitleQuery = `
query ($id: Int) {
  Media(id: $id) {
    title { romaji }
  }
}`

const viewerEntriesQuery = `
query ($userId: Int) {
  MediaListCollection(userId: $userId, type: ANIME) {
    lists {
      entries {
        id
        mediaId
      }
    }
  }
}`

const deleteEntryMutation = `
mutation ($id: Int) {
  DeleteMediaListEntry(id: $id) {
    deleted
  }
}`

// SavedEntry is the remote's echo of a saved list entry.
type SavedEntry struct {
	ID       int     `json:"id"`
	Status   string  `json:"status"`
	Progress int     `json:"progress"`
	Score    float64 `json:"score"`
}

type savedEntryData struct {
	SaveMediaListEntry SavedEntry `json:"SaveMediaListEntry"`
}

type addEntryVariables struct {
	MediaID int    `json:"mediaId"`
	Status  string `json:"status"`
}

// UpdateVariables are the partial fields of an update mutation.
// Nil pointer fields are omitted from the request entirely, so the
// remote leaves the corresponding entry fields untouched.
type UpdateVariables struct {
	MediaID  int     `json:"mediaId"`
	Status   *string `json:"status,omitzero"`
	Progress *int    `json:"progress,omitzero"`
	ScoreRaw *int    `json:"score,omitzero"`
}

// AddEntry adds a media to the authenticated user's list with the given status.
func (c *Client) AddEntry(ctx context.Context, token string, mediaID int, status string) (*SavedEntry, error) {
	data, err := post[savedEntryData](ctx, c, token, addEntryMutation,
		addEntryVariables{MediaID: mediaID, Status: status})
	if err != nil {
		return nil, errors.MutationFailed(err.Error())
	}
	return &data.SaveMediaListEntry, nil
}

// UpdateEntry updates the supplied fields of the user's entry for a media.
func (c *Client) UpdateEntry(ctx context.Context, token string, vars UpdateVariables) (*SavedEntry, error) {
	data, err := post[savedEntryData](ctx, c, token, updateEntryMutation, vars)
	if err != nil {
		return nil, errors.MutationFailed(err.Error())
	}
	return &data.SaveMediaListEntry, nil
}

// Viewer identifies the user a token belongs to.
type Viewer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type viewerData struct {
	Viewer *Viewer `json:"Viewer"`
}

// Viewer resolves the authenticated user behind a token.
func (c *Client) Viewer(ctx context.Context, token string) (*Viewer, error) {
	data, err := post[viewerData](ctx, c, token, viewerQuery, nil)
	if err != nil {
		return nil, errors.MutationFailed(err.Error())
	}
	if data.Viewer == nil {
		return nil, errors.MutationFailed("viewer not resolved")
	}
	return data.Viewer, nil
}

type mediaTitleVariables struct {
	ID int `json:"id"`
}

type mediaTitleData struct {
	Media *struct {
		Title struct {
			Romaji string `json:"romaji"`
		} `json:"title"`
	} `json:"Media"`
}

// MediaTitle resolves the romaji title of a media id.
func (c *Client) MediaTitle(ctx context.Context, mediaID int) (string, error) {
	data, err := post[mediaTitleData](ctx, c, "", mediaTitleQuery, mediaTitleVariables{ID: mediaID})
	if err != nil {
		return "", errors.MutationFailed(err.Error())
	}
	if data.Media == nil {
		return "", errors.MutationFailed("media not found")
	}
	return data.Media.Title.Romaji, nil
}

// EntryRef is the minimal entry view used to locate an entry by media.
type EntryRef struct {
	ID      int `json:"id"`
	MediaID int `json:"mediaId"`
}

type viewerEntriesVariables struct {
	UserID int `json:"userId"`
}

type viewerEntriesData struct {
	MediaListCollection struct {
		Lists []struct {
			Entries []EntryRef `json:"entries"`
		} `json:"lists"`
	} `json:"MediaListCollection"`
}

// EntriesForUser lists every entry id / media id pair on a user's lists.
func (c *Client) EntriesForUser(ctx context.Context, token string, userID int) ([]EntryRef, error) {
	data, err := post[viewerEntriesData](ctx, c, token, viewerEntriesQuery,
		viewerEntriesVariables{UserID: userID})
	if err != nil {
		return nil, errors.MutationFailed(err.Error())
	}

	var refs []EntryRef
	for _, list := range data.MediaListCollection.Lists {
		refs = append(refs, list.Entries...)
	}
	return refs, nil
}

type deleteEntryVariables struct {
	ID int `json:"id"`
}

type deleteEntryData struct {
	DeleteMediaListEntry struct {
		Deleted bool `json:"deleted"`
	} `json:"DeleteMediaListEntry"`
}

// DeleteEntryByID deletes a list entry by its entry id.
// Returns the remote's deleted flag.
func (c *Client) DeleteEntryByID(ctx context.Context, token string, entryID int) (bool, error) {
	data, err := post[deleteEntryData](ctx, c, token, deleteEntryMutation, deleteEntryVariables{ID: entryID})
	if err != nil {
		return false, errors.MutationFailed(err.Error())
	}
	return data.DeleteMediaListEntry.Deleted, nil
}
