package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshMargin renews tokens shortly before they expire
const refreshMargin = time.Minute

// PersistFunc stores a refreshed token
type PersistFunc func(*oauth2.Token) error

// TokenSource refreshes Strava tokens on demand and persists each new one
type TokenSource struct {
	mu      sync.Mutex
	config  *oauth2.Config
	token   *oauth2.Token
	persist PersistFunc
}

// NewTokenSource wraps token; persist may be nil
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, persist PersistFunc) *TokenSource {
	return &TokenSource{config: cfg, token: token, persist: persist}
}

// Token returns a valid token, refreshing it when close to expiry
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshMargin {
		return ts.token, nil
	}

	fresh, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}
	if ts.persist != nil {
		if err := ts.persist(fresh); err != nil {
			return nil, err
		}
	}

	ts.token = fresh
	return fresh, nil
}
