package store

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoAuth is returned when no authentication is stored
var ErrNoAuth = errors.New("no authentication stored")

// Token converts stored credentials into an oauth2 token
func (a *Auth) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.ExpiresAt,
		TokenType:    "Bearer",
	}
}

// GetAuth loads the single stored credential row
func (db *DB) GetAuth() (*Auth, error) {
	var (
		a       Auth
		expires int64
	)
	err := db.QueryRow(`SELECT athlete_id, access_token, refresh_token, expires_at FROM auth WHERE id = 1`).
		Scan(&a.AthleteID, &a.AccessToken, &a.RefreshToken, &expires)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoAuth
	case err != nil:
		return nil, err
	}
	a.ExpiresAt = time.Unix(expires, 0)
	return &a, nil
}

// SaveToken stores the token from a completed login, replacing any
// previous athlete's credentials
func (db *DB) SaveToken(athleteID int64, tok *oauth2.Token) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO auth (id, athlete_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, athleteID, tok.AccessToken, tok.RefreshToken, tok.Expiry.Unix())
	return err
}

// UpdateToken persists a refreshed token. It fails with ErrNoAuth when
// nobody has logged in yet.
func (db *DB) UpdateToken(tok *oauth2.Token) error {
	res, err := db.Exec(`
		UPDATE auth SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, tok.AccessToken, tok.RefreshToken, tok.Expiry.Unix())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNoAuth
	}
	return nil
}

// ClearAuth forgets the stored credentials
func (db *DB) ClearAuth() error {
	_, err := db.Exec(`DELETE FROM auth`)
	return err
}
