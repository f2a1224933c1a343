package db

import (
	"database/sql"
	"time"

	"github.com/rsclarke/mealie/internal/models"
)

// UpsertSession stores s, replacing any session for the same base URL.
// CreatedAt is kept from the first save.
func UpsertSession(d *sql.DB, s *models.Session) error {
	now := time.Now().Unix()
	_, err := d.Exec(`
		INSERT INTO sessions (base_url, access_token, token_type, subject, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			subject = excluded.subject,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, s.BaseURL, s.AccessToken, s.TokenType, nullString(s.Subject), s.ExpiresAt, now, now)
	return err
}

// GetSession returns the session for baseURL, or nil when none is stored.
func GetSession(d *sql.DB, baseURL string) (*models.Session, error) {
	row := d.QueryRow(`
		SELECT base_url, access_token, token_type, subject, expires_at, created_at, updated_at
		FROM sessions WHERE base_url = ?
	`, baseURL)
	var s models.Session
	var subject sql.NullString
	err := row.Scan(&s.BaseURL, &s.AccessToken, &s.TokenType, &subject, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Subject = subject.String
	return &s, nil
}

// ListSessions returns every stored session ordered by base URL.
func ListSessions(d *sql.DB) ([]models.Session, error) {
	rows, err := d.Query(`
		SELECT base_url, access_token, token_type, subject, expires_at, created_at, updated_at
		FROM sessions ORDER BY base_url
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var subject sql.NullString
		if err := rows.Scan(&s.BaseURL, &s.AccessToken, &s.TokenType, &subject, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Subject = subject.String
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes the session for baseURL and reports whether one
// existed.
func DeleteSession(d *sql.DB, baseURL string) (bool, error) {
	result, err := d.Exec("DELETE FROM sessions WHERE base_url = ?", baseURL)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
