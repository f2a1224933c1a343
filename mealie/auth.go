package mealie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Login exchanges a username and password for an access token and stores
// it in the client's credentials. The request itself is unauthenticated.
func (c *Client) Login(ctx context.Context, username, password string, rememberMe bool) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("grant_type", "password")
	form.Set("scope", "")
	form.Set("client_id", "")
	form.Set("client_secret", "")
	form.Set("remember_me", strconv.FormatBool(rememberMe))

	var reply tokenReply
	req := &Request{Method: http.MethodPost, Path: tokenPath, Body: FormBody(form), SkipAuth: true}
	if err := c.do(ctx, req, &reply); err != nil {
		return err
	}
	if reply.AccessToken == "" {
		return &APIError{Kind: KindUnknown, Method: http.MethodPost, Path: tokenPath, Message: "token response has no access_token"}
	}
	c.creds.SetToken(reply.AccessToken, reply.TokenType)
	return nil
}

// Authorize stores a long-lived API key as the session credential.
func (c *Client) Authorize(apiKey string) {
	c.creds.SetToken(apiKey, "bearer")
}

// Logout forgets the session credential. Nothing is sent to the server.
func (c *Client) Logout() {
	c.creds.Clear()
}

// RefreshToken replaces the session token with a freshly issued one.
func (c *Client) RefreshToken(ctx context.Context) error {
	return c.creds.Refresh(ctx, c)
}

// APIKey is a named long-lived token belonging to the current user. Token
// is only populated when the key is first created.
type APIKey struct {
	client *Client

	ID    int    `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// Delete revokes the key.
func (k *APIKey) Delete(ctx context.Context) error {
	if k.client == nil {
		return ErrDetached
	}
	return k.client.DeleteAPIKey(ctx, k.ID)
}

// CreateAPIKey issues a new API key for the current user.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (*APIKey, error) {
	var reply struct {
		Token string `json:"token"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "users/api-tokens", map[string]string{"name": name}, &reply); err != nil {
		return nil, err
	}
	return &APIKey{client: c, Name: name, Token: reply.Token}, nil
}

// DeleteAPIKey revokes the key with the given id.
func (c *Client) DeleteAPIKey(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("users/api-tokens/%d", id))
}
