package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expiryBuffer refreshes tokens slightly before they lapse
const expiryBuffer = 60 * time.Second

// TokenSource refreshes access tokens from a stored refresh token. Strava
// rotates refresh tokens, so every new refresh token is handed to onRotate
// for persistence.
type TokenSource struct {
	ctx      context.Context
	config   *oauth2.Config
	mu       sync.Mutex
	token    *oauth2.Token
	onRotate func(refreshToken string) error
}

// NewTokenSource starts from a refresh token alone; the first Token call
// exchanges it for an access token.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, refreshToken string, onRotate func(string) error) (*TokenSource, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return &TokenSource{
		ctx:      ctx,
		config:   cfg,
		token:    &oauth2.Token{RefreshToken: refreshToken},
		onRotate: onRotate,
	}, nil
}

// Token returns a valid access token, refreshing when needed
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token.AccessToken != "" && time.Until(ts.token.Expiry) > expiryBuffer {
		return ts.token, nil
	}

	fresh, err := ts.config.TokenSource(ts.ctx, &oauth2.Token{RefreshToken: ts.token.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing strava token: %w", err)
	}

	if fresh.RefreshToken != "" && fresh.RefreshToken != ts.token.RefreshToken && ts.onRotate != nil {
		if err := ts.onRotate(fresh.RefreshToken); err != nil {
			return nil, fmt.Errorf("saving rotated refresh token: %w", err)
		}
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = ts.token.RefreshToken
	}

	ts.token = fresh
	return fresh, nil
}

// RefreshToken returns the most recent refresh token
func (ts *TokenSource) RefreshToken() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token.RefreshToken
}
