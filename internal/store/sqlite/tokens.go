package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/store"
)

// Token retrieves the stored OAuth token for a username.
// Returns store.ErrNotFound when no token exists or the stored token
// has already expired; callers never see a stale credential.
func (s *Store) Token(ctx context.Context, username string) (*domain.OAuthToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, access_token, refresh_token, expires_at, created_at, updated_at
		FROM anilist_tokens WHERE username = ?`, username)

	var (
		t            domain.OAuthToken
		refreshToken sql.NullString
		expiresAt    string
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(&t.Username, &t.AccessToken, &refreshToken, &expiresAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.RefreshToken = refreshToken.String
	if t.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	if t.Expired(time.Now()) {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

// SaveToken upserts the OAuth token for a username, computing the
// expiry from the given time-to-live.
func (s *Store) SaveToken(ctx context.Context, username, accessToken, refreshToken string, ttl time.Duration) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO anilist_tokens (username, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		username,
		accessToken,
		nullString(refreshToken),
		formatTime(now.Add(ttl)),
		formatTime(now),
		formatTime(now),
	)
	return err
}

// DeleteToken removes the stored token for a username.
// Returns store.ErrNotFound if no token exists.
func (s *Store) DeleteToken(ctx context.Context, username string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM anilist_tokens WHERE username = ?`, username)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
