package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"

	"github.com/watchlistapp/watchlist-server/internal/http/response"
	"github.com/watchlistapp/watchlist-server/internal/oauth"
)

// handleAuthorize redirects the browser to the AniList OAuth consent page.
// GET /Anilist-auth?state=...
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	authorizeURL, err := s.oauth.AuthorizeURL(r.URL.Query().Get("state"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// handleAuthCallback forwards the OAuth code and state to the frontend,
// which completes the exchange via POST /Anilist-exchange.
// GET /anilist/auth/callback?code=...&state=...
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		response.BadRequest(w, "Missing code or state", s.logger)
		return
	}

	http.Redirect(w, r, oauth.CallbackURL(s.frontendURL, code, state), http.StatusFound)
}

type exchangeRequest struct {
	Code string `json:"code"`
}

// handleExchange trades the OAuth code for tokens, persists them, and
// sets the auth cookies on the response.
// POST /Anilist-exchange
func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req exchangeRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		response.BadRequest(w, "Code is required", s.logger)
		return
	}

	session, err := s.oauth.Exchange(ctx, req.Code)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	for _, cookie := range s.oauth.Cookies(session) {
		http.SetCookie(w, cookie)
	}

	response.Success(w, map[string]any{
		"success":  true,
		"message":  "Authentication successful",
		"username": session.Username,
	}, s.logger)
}

type logoutRequest struct {
	Username string `json:"username"`
}

// handleLogout drops the stored token and expires the auth cookies.
// POST /anilist/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logoutRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		response.BadRequest(w, "Username is required", s.logger)
		return
	}

	if err := s.oauth.Logout(ctx, req.Username); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	for _, cookie := range s.oauth.ExpiredCookies() {
		http.SetCookie(w, cookie)
	}

	response.Success(w, map[string]any{"success": true}, s.logger)
}

// handleAuthCheck reports whether the auth cookie is present. The token is
// not validated against the remote here; stale tokens surface as 401s on
// the first mutating call.
// GET /anilist/auth/check
func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie(oauth.TokenCookie)
	response.Success(w, map[string]bool{"authenticated": err == nil}, s.logger)
}
