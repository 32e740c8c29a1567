// Package oauth implements the AniList OAuth code flow: authorize URL
// construction, code-for-token exchange and token persistence.
package oauth

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/watchlistapp/watchlist-server/internal/anilist"
	"github.com/watchlistapp/watchlist-server/internal/config"
	"github.com/watchlistapp/watchlist-server/internal/errors"
	"github.com/watchlistapp/watchlist-server/internal/store"
)

// Cookie names set after a successful exchange.
const (
	TokenCookie   = "anilist_token"
	RefreshCookie = "anilist_refresh"
)

// defaultExpiresIn is used when the remote omits expires_in.
// AniList access tokens live for one year.
const defaultExpiresIn = 31536000

// viewerResolver resolves the user behind a fresh access token.
type viewerResolver interface {
	Viewer(ctx context.Context, token string) (*anilist.Viewer, error)
}

// tokenVault persists exchanged tokens.
type tokenVault interface {
	SaveToken(ctx context.Context, username, accessToken, refreshToken string, ttl time.Duration) error
	DeleteToken(ctx context.Context, username string) error
}

// Service drives the OAuth code flow against the remote service.
type Service struct {
	cfg        config.AniListConfig
	production bool
	httpClient *http.Client
	viewer     viewerResolver
	vault      tokenVault
	logger     *slog.Logger
}

// NewService creates a new OAuth service.
func NewService(cfg config.AniListConfig, environment string, viewer viewerResolver, vault tokenVault, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		production: environment == "production",
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		viewer:     viewer,
		vault:      vault,
		logger:     logger,
	}
}

// AuthorizeURL builds the remote authorize URL carrying the client's state.
func (s *Service) AuthorizeURL(state string) (string, error) {
	if s.cfg.ClientID == "" || s.cfg.RedirectURI == "" {
		return "", errors.Internal("missing OAuth configuration")
	}
	if state == "" {
		return "", errors.Validation("missing state parameter")
	}

	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("redirect_uri", s.cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("state", state)
	return s.cfg.AuthorizeURL + "?" + params.Encode(), nil
}

type exchangeRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	Code         string `json:"code"`
}

type exchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Session is the outcome of a successful code exchange.
type Session struct {
	Username     string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Exchange trades an authorization code for tokens, resolves the token's
// owner and persists the token under their username.
func (s *Service) Exchange(ctx context.Context, code string) (*Session, error) {
	if code == "" {
		return nil, errors.Validation("code is required")
	}

	body, err := json.Marshal(exchangeRequest{
		GrantType:    "authorization_code",
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURI:  s.cfg.RedirectURI,
		Code:         code,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "token exchange failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Validationf("token exchange failed: status %d", resp.StatusCode)
	}

	var tokens exchangeResponse
	if err := json.UnmarshalRead(resp.Body, &tokens); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "token exchange failed")
	}
	if tokens.AccessToken == "" {
		return nil, errors.Validation("token exchange returned no access token")
	}
	if tokens.ExpiresIn <= 0 {
		tokens.ExpiresIn = defaultExpiresIn
	}

	viewer, err := s.viewer.Viewer(ctx, tokens.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "could not resolve account for token")
	}

	ttl := time.Duration(tokens.ExpiresIn) * time.Second
	if err := s.vault.SaveToken(ctx, viewer.Name, tokens.AccessToken, tokens.RefreshToken, ttl); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "persist token")
	}

	s.logger.Info("authenticated via oauth", "username", viewer.Name)
	return &Session{
		Username:     viewer.Name,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// Cookies builds the session cookies for a completed exchange. The
// access-token cookie is always set; the refresh cookie only when the
// remote issued a refresh token.
func (s *Service) Cookies(session *Session) []*http.Cookie {
	cookies := []*http.Cookie{{
		Name:     TokenCookie,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   session.ExpiresIn,
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	}}

	if session.RefreshToken != "" {
		cookies = append(cookies, &http.Cookie{
			Name:     RefreshCookie,
			Value:    session.RefreshToken,
			Path:     "/",
			MaxAge:   session.ExpiresIn,
			HttpOnly: true,
			Secure:   s.production,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return cookies
}

// Logout drops the stored token for a username. Deleting an already
// absent token is not an error so logout stays idempotent.
func (s *Service) Logout(ctx context.Context, username string) error {
	if username == "" {
		return errors.Validation("username is required")
	}
	if err := s.vault.DeleteToken(ctx, username); err != nil && !errors.Is(err, store.ErrNotFound) {
		return errors.Wrap(err, errors.CodeStore, "delete token")
	}
	s.logger.Info("logged out", "username", username)
	return nil
}

// ExpiredCookies builds cookies that clear the session on the browser.
func (s *Service) ExpiredCookies() []*http.Cookie {
	expire := func(name string) *http.Cookie {
		return &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.production,
			SameSite: http.SameSiteLaxMode,
		}
	}
	return []*http.Cookie{expire(TokenCookie), expire(RefreshCookie)}
}

// CallbackURL is where the OAuth callback sends the browser, carrying
// the code and state back to the frontend.
func CallbackURL(frontendBase, code, state string) string {
	params := url.Values{}
	params.Set("code", code)
	params.Set("state", state)
	return frontendBase + "/anime-list?" + params.Encode()
}
