package model

import "time"

// KeyPrefix is the fixed namespace tag prepended to every generated API key
// so keys are visually identifiable in logs and support tickets.
const KeyPrefix = "kg_"

// KeyValidity is how long an issued key remains claimable.
const KeyValidity = 30 * 24 * time.Hour

// APIKey represents a single-use registration key. A key is unclaimed while
// UserID is NULL; claiming it (binding it to a user) is a one-way transition
// that is never reversed.
type APIKey struct {
	ID        int64     `json:"id" db:"id"`
	Key       string    `json:"api_key" db:"api_key"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Claimed reports whether the key has been bound to a user.
func (k *APIKey) Claimed() bool {
	return k.UserID != nil
}

// Redacted returns the key value truncated to its identifying prefix, safe
// for list endpoints and logs. The full value is only ever shown once, at
// issuance.
func (k *APIKey) Redacted() string {
	visible := len(KeyPrefix) + 8
	if len(k.Key) <= visible {
		return k.Key
	}
	return k.Key[:visible] + "..."
}
