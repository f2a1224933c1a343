// Package models defines the database entity types.
package models

// Session is a persisted login for one Mealie server.
type Session struct {
	BaseURL     string `json:"base_url"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Subject     string `json:"subject,omitempty"`
	ExpiresAt   *int64 `json:"expires_at,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Expired reports whether the session has a known expiry at or before now
// (unix seconds).
func (s *Session) Expired(now int64) bool {
	return s.ExpiresAt != nil && *s.ExpiresAt <= now
}
