package domain

import "time"

// OAuthToken is the remote service's OAuth credential for one username.
// Tokens are opaque; the server never inspects or mints them.
type OAuthToken struct {
	Username     string    `json:"username"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t *OAuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
