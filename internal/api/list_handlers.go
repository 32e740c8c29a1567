package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"strings"

	"github.com/watchlistapp/watchlist-server/internal/export"
	"github.com/watchlistapp/watchlist-server/internal/http/response"
	listsync "github.com/watchlistapp/watchlist-server/internal/sync"
)

type fetchRequest struct {
	Username string `json:"username"`
}

type fetchResponse struct {
	Success bool `json:"success"`
	*listsync.Result
}

// handleFetch syncs a user's anime list from AniList and returns it,
// falling back to the cached copy when the remote fetch fails.
// POST /anilist/BaseFunction/fetch
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req fetchRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		response.BadRequest(w, "Username is required", s.logger)
		return
	}

	result, err := s.sync.Sync(ctx, req.Username)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, fetchResponse{Success: true, Result: result}, s.logger)
}

type exportRequest struct {
	Username string `json:"username"`
	Format   string `json:"format"`
	Filter   string `json:"filter"`
}

// handleExport writes the cached list as a JSON or XML file download,
// optionally filtered by watch status.
// POST /anilist/BaseFunction/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req exportRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		response.BadRequest(w, "Username is required", s.logger)
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		response.BadRequest(w, "Invalid format", s.logger)
		return
	}

	entries, err := s.sync.CachedEntries(ctx, req.Username, strings.ToUpper(req.Filter))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if len(entries) == 0 {
		response.NotFound(w, "No anime found", s.logger)
		return
	}

	body, err := s.formatter.Format(entries, format)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	filename := fmt.Sprintf("%s_anime_list.%s", req.Username, format.Extension())
	response.Attachment(w, filename, format.ContentType(), body, s.logger)
}
