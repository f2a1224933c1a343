package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/rsclarke/mealie/internal/models"
)

// KeyringService is the OS keyring service name sessions are filed under.
const KeyringService = "mealie"

// KeyringStore keeps sessions in the operating system keyring, one secret
// per base URL.
type KeyringStore struct {
	Service string
}

// NewKeyringStore returns a store using KeyringService.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{Service: KeyringService}
}

func (k *KeyringStore) Load(_ context.Context, baseURL string) (*models.Session, error) {
	secret, err := keyring.Get(k.Service, baseURL)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal([]byte(secret), &s); err != nil {
		return nil, fmt.Errorf("decode keyring session: %w", err)
	}
	return &s, nil
}

func (k *KeyringStore) Save(_ context.Context, s *models.Session) error {
	now := time.Now().Unix()
	if s.CreatedAt == 0 {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := keyring.Set(k.Service, s.BaseURL, string(data)); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Delete(_ context.Context, baseURL string) error {
	err := keyring.Delete(k.Service, baseURL)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}
