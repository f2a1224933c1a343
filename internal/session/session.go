// Package session persists login tokens between CLI invocations.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/rsclarke/mealie/internal/models"
	"github.com/rsclarke/mealie/mealie"
)

// ErrNotFound is returned by Load when no session is stored for a server.
var ErrNotFound = errors.New("session not found")

// Store saves one session per server base URL.
type Store interface {
	Load(ctx context.Context, baseURL string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, baseURL string) error
}

// FromCredentials snapshots the token held by creds. It returns nil when
// creds holds no token.
func FromCredentials(baseURL string, creds *mealie.Credentials) *models.Session {
	tok, err := creds.Token()
	if err != nil {
		return nil
	}
	s := &models.Session{
		BaseURL:     baseURL,
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Subject:     creds.Subject(),
	}
	if s.TokenType == "" {
		s.TokenType = "bearer"
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.Unix()
		s.ExpiresAt = &exp
	}
	return s
}

// Restore loads the session for baseURL into creds. An expired session is
// deleted and reported as ErrNotFound.
func Restore(ctx context.Context, st Store, baseURL string, creds *mealie.Credentials) (*models.Session, error) {
	s, err := st.Load(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	if s.Expired(time.Now().Unix()) {
		_ = st.Delete(ctx, baseURL)
		return nil, ErrNotFound
	}
	creds.SetToken(s.AccessToken, s.TokenType)
	return s, nil
}
