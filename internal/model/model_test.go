package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAPIKeyClaimed(t *testing.T) {
	key := APIKey{Key: "kg_abc"}
	if key.Claimed() {
		t.Error("key with nil UserID must be unclaimed")
	}

	uid := int64(7)
	key.UserID = &uid
	if !key.Claimed() {
		t.Error("key with UserID set must be claimed")
	}
}

func TestAPIKeyRedacted(t *testing.T) {
	key := APIKey{Key: KeyPrefix + "0123456789abcdef0123456789abcdef"}
	red := key.Redacted()

	if !strings.HasPrefix(red, KeyPrefix) {
		t.Errorf("redacted %q lost namespace prefix", red)
	}
	if strings.Contains(red, "abcdef0123456789abcdef") {
		t.Errorf("redacted %q reveals too much of the key", red)
	}
	if !strings.HasSuffix(red, "...") {
		t.Errorf("redacted %q missing ellipsis", red)
	}

	short := APIKey{Key: "kg_ab"}
	if short.Redacted() != "kg_ab" {
		t.Errorf("short key should pass through unchanged, got %q", short.Redacted())
	}
}

func TestAdminPasswordHashNeverSerialized(t *testing.T) {
	admin := Admin{
		ID:           1,
		Email:        "root@example.com",
		PasswordHash: "$2a$10$secret",
		CreatedAt:    time.Now(),
	}

	out, err := json.Marshal(admin)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), "secret") {
		t.Errorf("password hash leaked into JSON: %s", out)
	}
}
