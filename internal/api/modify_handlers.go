package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/watchlistapp/watchlist-server/internal/http/response"
	"github.com/watchlistapp/watchlist-server/internal/modify"
	"github.com/watchlistapp/watchlist-server/internal/oauth"
)

// accessToken extracts the AniList access token from the auth cookie.
// Returns an empty string when the cookie is absent.
func accessToken(r *http.Request) string {
	cookie, err := r.Cookie(oauth.TokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

type modifyActionRequest struct {
	Action  string `json:"action"`
	Query   string `json:"query"`
	AnimeID int    `json:"animeId"`
	Status  string `json:"status"`
}

// handleModifyAction dispatches POST modify actions. Search proxies the
// remote search without authentication; add requires the auth cookie.
// POST /anilist/modify
func (s *Server) handleModifyAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req modifyActionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	switch req.Action {
	case "search":
		results, err := s.gateway.Search(ctx, modify.SearchRequest{Query: req.Query})
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		response.Success(w, map[string]any{"results": results}, s.logger)

	case "add":
		token := accessToken(r)
		if token == "" {
			response.Unauthorized(w, "Not authenticated", s.logger)
			return
		}
		entry, err := s.gateway.Add(ctx, token, modify.AddRequest{AnimeID: req.AnimeID, Status: req.Status})
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		response.Success(w, map[string]any{"SaveMediaListEntry": entry}, s.logger)

	default:
		response.BadRequest(w, "Invalid request", s.logger)
	}
}

// handleModifyUpdate updates an existing list entry. Only the fields
// present in the body are sent to the remote.
// PUT /anilist/modify
func (s *Server) handleModifyUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := accessToken(r)
	if token == "" {
		response.Unauthorized(w, "Not authenticated", s.logger)
		return
	}

	var req modify.UpdateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	entry, err := s.gateway.Update(ctx, token, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{"SaveMediaListEntry": entry}, s.logger)
}

// handleModifyDelete removes the user's entry for a media.
// DELETE /anilist/modify
func (s *Server) handleModifyDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := accessToken(r)
	if token == "" {
		response.Unauthorized(w, "Not authenticated", s.logger)
		return
	}

	var req modify.DeleteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.gateway.Delete(ctx, token, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{"DeleteMediaListEntry": result}, s.logger)
}
