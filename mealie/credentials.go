package mealie

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Sender performs a request through the pipeline. *Client implements it.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

var _ Sender = (*Client)(nil)

// Credentials holds the session's bearer token. The token is replaced as a
// whole, so readers see either the old or the new credential, never a mix.
type Credentials struct {
	mu    sync.RWMutex
	token *oauth2.Token
	sub   string
}

var _ oauth2.TokenSource = (*Credentials)(nil)

// NewCredentials returns a store holding value, or an empty store when
// value is "".
func NewCredentials(value, tokenType string) *Credentials {
	c := &Credentials{}
	c.SetToken(value, tokenType)
	return c
}

// SetToken replaces the stored token. An empty value clears the store.
// When value is a JWT its exp and sub claims are recorded; signatures are
// not verified since the server is the only authority on validity.
func (c *Credentials) SetToken(value, tokenType string) {
	if value == "" {
		c.Clear()
		return
	}
	tok := &oauth2.Token{AccessToken: value, TokenType: tokenType}
	sub := ""
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(value, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			tok.Expiry = exp.Time
		}
		sub, _ = claims.GetSubject()
	}

	c.mu.Lock()
	c.token = tok
	c.sub = sub
	c.mu.Unlock()
}

// Clear removes any stored token.
func (c *Credentials) Clear() {
	c.mu.Lock()
	c.token = nil
	c.sub = ""
	c.mu.Unlock()
}

// HasToken reports whether an access token is stored.
func (c *Credentials) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil && c.token.AccessToken != ""
}

// Token implements oauth2.TokenSource. It returns a copy of the stored
// token, or ErrUnauthenticated when the store is empty.
func (c *Credentials) Token() (*oauth2.Token, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil || c.token.AccessToken == "" {
		return nil, ErrUnauthenticated
	}
	tok := *c.token
	return &tok, nil
}

// Headers returns the Authorization header for the stored token, or an
// empty map when there is none.
func (c *Credentials) Headers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil || c.token.AccessToken == "" {
		return map[string]string{}
	}
	return map[string]string{
		"Authorization": c.token.Type() + " " + c.token.AccessToken,
	}
}

// Header is Headers as an http.Header.
func (c *Credentials) Header() http.Header {
	h := make(http.Header)
	for k, v := range c.Headers() {
		h.Set(k, v)
	}
	return h
}

// Expiry returns the token's expiry, or the zero time when unknown.
func (c *Credentials) Expiry() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return time.Time{}
	}
	return c.token.Expiry
}

// Expired reports whether the token has a known expiry at or before now.
func (c *Credentials) Expired(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}

// Subject returns the JWT sub claim, if any.
func (c *Credentials) Subject() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sub
}

// tokenReply is the payload of the token and refresh endpoints.
type tokenReply struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Refresh exchanges the current token for a new one through s and stores
// it. Authentication failures on the refresh call are reported as
// KindUnauthenticated; other API errors are returned unchanged.
func (c *Credentials) Refresh(ctx context.Context, s Sender) error {
	resp, err := s.Send(ctx, &Request{Method: http.MethodPost, Path: refreshPath})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Kind != KindUnauthenticated && apiErr.StatusCode == http.StatusUnauthorized {
			unauth := *apiErr
			unauth.Kind = KindUnauthenticated
			return &unauth
		}
		return err
	}

	var reply tokenReply
	if err := hydrate(resp.Payload, &reply); err != nil {
		return &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode, Method: http.MethodPost, Path: refreshPath, Message: fmt.Sprintf("decode token: %v", err)}
	}
	if reply.AccessToken == "" {
		return &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode, Method: http.MethodPost, Path: refreshPath, Message: "refresh response has no access_token"}
	}
	c.SetToken(reply.AccessToken, reply.TokenType)
	return nil
}
