package mealie

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestCredentialsHeaders(t *testing.T) {
	c := &Credentials{}
	assert.Empty(t, c.Headers())
	assert.False(t, c.HasToken())

	c.SetToken("abc", "bearer")
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, c.Headers())
	assert.Equal(t, "Bearer abc", c.Header().Get("Authorization"))

	c.SetToken("xyz", "")
	assert.Equal(t, "Bearer xyz", c.Headers()["Authorization"])

	c.Clear()
	assert.Empty(t, c.Headers())
	_, err := c.Token()
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCredentialsJWTClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c := NewCredentials(signedToken(t, "alice", exp), "bearer")

	assert.Equal(t, "alice", c.Subject())
	assert.True(t, c.Expiry().Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Second)))

	tok, err := c.Token()
	require.NoError(t, err)
	assert.True(t, tok.Expiry.Equal(exp))
}

func TestCredentialsOpaqueToken(t *testing.T) {
	c := NewCredentials("not-a-jwt", "bearer")
	assert.True(t, c.Expiry().IsZero())
	assert.False(t, c.Expired(time.Now()))
	assert.Empty(t, c.Subject())
}

func TestCredentialsConcurrentReplace(t *testing.T) {
	c := NewCredentials("t0", "bearer")
	valid := map[string]bool{"Bearer t0": true, "Bearer t1": true, "Bearer t2": true}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.SetToken([]string{"t1", "t2"}[j%2], "bearer")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h := c.Headers()["Authorization"]
				if !valid[h] {
					t.Errorf("torn header %q", h)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// senderFunc adapts a function to Sender.
type senderFunc func(ctx context.Context, req *Request) (*Response, error)

func (f senderFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

func TestCredentialsRefresh(t *testing.T) {
	c := NewCredentials("old", "bearer")
	var seen *Request
	s := senderFunc(func(_ context.Context, req *Request) (*Response, error) {
		seen = req
		return &Response{StatusCode: 200, Kind: ContentJSON, Payload: map[string]any{
			"access_token": "new",
			"token_type":   "bearer",
		}}, nil
	})

	require.NoError(t, c.Refresh(context.Background(), s))
	assert.Equal(t, http.MethodPost, seen.Method)
	assert.Equal(t, "auth/refresh", seen.Path)
	assert.Equal(t, "Bearer new", c.Headers()["Authorization"])
}

func TestCredentialsRefreshUnauthorized(t *testing.T) {
	c := NewCredentials("old", "bearer")
	s := senderFunc(func(context.Context, *Request) (*Response, error) {
		return nil, Classify(401, []byte(`{"detail":"Signature has expired"}`))
	})

	err := c.Refresh(context.Background(), s)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, "Bearer old", c.Headers()["Authorization"], "failed refresh keeps the old token")
}

func TestCredentialsRefreshMissingToken(t *testing.T) {
	c := NewCredentials("old", "bearer")
	s := senderFunc(func(context.Context, *Request) (*Response, error) {
		return &Response{StatusCode: 200, Kind: ContentJSON, Payload: map[string]any{}}, nil
	})

	err := c.Refresh(context.Background(), s)
	assert.ErrorIs(t, err, ErrUnknown)
}
