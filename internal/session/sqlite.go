package session

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/rsclarke/mealie/internal/db"
	"github.com/rsclarke/mealie/internal/logging"
	"github.com/rsclarke/mealie/internal/models"
)

// SQLiteStore keeps sessions in the local sessions database.
type SQLiteStore struct {
	DB     *sql.DB
	Logger *zap.Logger
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	d, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{DB: d, Logger: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

func (s *SQLiteStore) Load(_ context.Context, baseURL string) (*models.Session, error) {
	sess, err := db.GetSession(s.DB, baseURL)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *SQLiteStore) Save(_ context.Context, sess *models.Session) error {
	if err := db.UpsertSession(s.DB, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.Logger.Debug("session saved", logging.Store("sqlite"), logging.BaseURL(sess.BaseURL))
	return nil
}

func (s *SQLiteStore) Delete(_ context.Context, baseURL string) error {
	deleted, err := db.DeleteSession(s.DB, baseURL)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.Logger.Debug("session deleted", logging.Store("sqlite"), logging.BaseURL(baseURL))
	return nil
}
