package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/store"
)

// KeyService issues and lists single-use registration keys.
type KeyService struct {
	store *store.Store
}

// NewKeyService creates a KeyService backed by the given store.
func NewKeyService(st *store.Store) *KeyService {
	return &KeyService{store: st}
}

// Issue generates a fresh API key, persists it unclaimed with a 30-day
// expiry, and returns the raw key value. The value is only available here;
// list endpoints redact it.
func (s *KeyService) Issue(ctx context.Context) (string, error) {
	value, err := generateKey()
	if err != nil {
		return "", err
	}

	key := &model.APIKey{
		Key:       value,
		ExpiresAt: time.Now().UTC().Add(model.KeyValidity),
	}
	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return "", err
	}
	return value, nil
}

// List returns all issued keys, newest first.
func (s *KeyService) List(ctx context.Context) ([]model.APIKey, error) {
	return s.store.ListAPIKeys(ctx)
}

// generateKey returns a namespaced key with 16 bytes of entropy, hex-encoded.
func generateKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key entropy: %w", err)
	}
	return model.KeyPrefix + hex.EncodeToString(buf), nil
}
