package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keygate/keygate/internal/model"
)

// CreateAPIKey inserts a new unclaimed key record. The key value and expiry
// must already be set; ID and CreatedAt are populated after insert.
func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	key.CreatedAt = time.Now().UTC()

	id, err := s.insertID(ctx, s.db,
		`INSERT INTO api_keys (api_key, expires_at, created_at) VALUES (?, ?, ?)`,
		key.Key, key.ExpiresAt, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	key.ID = id
	return nil
}

// GetAPIKey returns a key record by its raw value.
func (s *Store) GetAPIKey(ctx context.Context, value string) (*model.APIKey, error) {
	var key model.APIKey
	q := s.db.Rebind(`SELECT id, api_key, expires_at, user_id, created_at FROM api_keys WHERE api_key = ?`)
	if err := s.db.GetContext(ctx, &key, q, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return &key, nil
}

// ListAPIKeys returns all issued keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	const q = `SELECT id, api_key, expires_at, user_id, created_at FROM api_keys ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &keys, q); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}
