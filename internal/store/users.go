package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keygate/keygate/internal/model"
)

// RegisterUser creates a user and claims the given API key as one atomic
// unit. Either both the user row and the claim persist, or neither does.
//
// The claim is serialized by the store's transaction isolation: the key is
// first located among unclaimed, unexpired rows, and the final UPDATE only
// applies while user_id is still NULL. If a concurrent registration won the
// race in between, zero rows are affected and the whole transaction rolls
// back with ErrKeyNotFoundOrClaimed.
func (s *Store) RegisterUser(ctx context.Context, user *model.User, keyValue string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	var keyID int64
	q := tx.Rebind(`SELECT id FROM api_keys WHERE api_key = ? AND user_id IS NULL AND expires_at > ?`)
	if err := tx.GetContext(ctx, &keyID, q, keyValue, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrKeyNotFoundOrClaimed
		}
		return fmt.Errorf("look up api key: %w", err)
	}

	user.StartDate = now.Truncate(24 * time.Hour)
	userID, err := s.insertID(ctx, tx,
		`INSERT INTO users_apikey (firstname, lastname, email, start_date) VALUES (?, ?, ?, ?)`,
		user.Firstname, user.Lastname, user.Email, user.StartDate)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = userID

	result, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE api_keys SET user_id = ? WHERE id = ? AND user_id IS NULL`),
		user.ID, keyID)
	if err != nil {
		return fmt.Errorf("claim api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim api key rows affected: %w", err)
	}
	if n == 0 {
		return ErrKeyNotFoundOrClaimed
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

// GetUserByEmail returns a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	q := s.db.Rebind(`SELECT id, firstname, lastname, email, start_date FROM users_apikey WHERE email = ?`)
	if err := s.db.GetContext(ctx, &user, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// ListUsers returns all registered users ordered by registration date.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	const q = `SELECT id, firstname, lastname, email, start_date FROM users_apikey ORDER BY id`
	if err := s.db.SelectContext(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
