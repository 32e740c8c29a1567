// Package anilist is a typed client for the AniList GraphQL API.
package anilist

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/watchlistapp/watchlist-server/internal/config"
)

// Client provides access to the AniList GraphQL API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	graphqlURL  string
}

// NewClient creates a new AniList client. Outbound calls are paced below
// the API's documented 90 requests per minute; the configured value
// should leave headroom for other consumers of the same client IP.
func NewClient(cfg config.AniListConfig, logger *slog.Logger) *Client {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5),
		logger:      logger,
		graphqlURL:  cfg.GraphQLURL,
	}
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// gqlRequest is the JSON body of every GraphQL call.
type gqlRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

// gqlError is one element of a GraphQL error array.
type gqlError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// gqlResponse is the GraphQL response envelope around a typed payload.
type gqlResponse[T any] struct {
	Data   T          `json:"data"`
	Errors []gqlError `json:"errors"`
}

// post sends one GraphQL request and decodes the typed data payload.
// A transport failure, a non-200 status or a non-empty errors array all
// fail the call; the remote's first error message is preserved.
func post[T any](ctx context.Context, c *Client, token, query string, variables any) (T, error) {
	var zero T

	if err := c.wait(ctx); err != nil {
		return zero, fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return zero, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("graphql request: %w", err)
	}
	defer resp.Body.Close()

	var envelope gqlResponse[T]
	if err := json.UnmarshalRead(resp.Body, &envelope); err != nil {
		return zero, fmt.Errorf("parse response: status %d: %w", resp.StatusCode, err)
	}
	if len(envelope.Errors) > 0 {
		return zero, fmt.Errorf("%s", envelope.Errors[0].Message)
	}
	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("graphql request failed: status %d", resp.StatusCode)
	}

	return envelope.Data, nil
}
