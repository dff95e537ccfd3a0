package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/keygate/keygate/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func issueTestKey(t *testing.T, s *Store, value string) *model.APIKey {
	t.Helper()
	key := &model.APIKey{
		Key:       value,
		ExpiresAt: time.Now().UTC().Add(model.KeyValidity),
	}
	if err := s.CreateAPIKey(context.Background(), key); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	return key
}

func TestCreateAndGetAPIKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	key := issueTestKey(t, s, "kg_deadbeefdeadbeefdeadbeefdeadbeef")
	if key.ID == 0 {
		t.Fatal("expected ID to be populated after insert")
	}

	got, err := s.GetAPIKey(ctx, key.Key)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if got.Claimed() {
		t.Error("freshly issued key must be unclaimed")
	}
	if got.ID != key.ID {
		t.Errorf("ID: got %d, want %d", got.ID, key.ID)
	}

	if _, err := s.GetAPIKey(ctx, "kg_does_not_exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown key: got %v, want ErrNotFound", err)
	}
}

func TestDuplicateKeyValueRejected(t *testing.T) {
	s := newTestStore(t)
	issueTestKey(t, s, "kg_aaaa")

	dup := &model.APIKey{Key: "kg_aaaa", ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.CreateAPIKey(context.Background(), dup); err == nil {
		t.Fatal("expected unique violation for duplicate key value")
	}
}

func TestRegisterUserClaimsKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := issueTestKey(t, s, "kg_claimable")

	user := &model.User{Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com"}
	if err := s.RegisterUser(ctx, user, key.Key); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected user ID to be populated")
	}
	if user.StartDate.IsZero() {
		t.Error("expected start date to be set")
	}

	got, err := s.GetAPIKey(ctx, key.Key)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if !got.Claimed() || *got.UserID != user.ID {
		t.Errorf("claimed_by: got %v, want %d", got.UserID, user.ID)
	}

	// A claimed key cannot be claimed again.
	second := &model.User{Firstname: "Grace", Lastname: "Hopper", Email: "grace@example.com"}
	if err := s.RegisterUser(ctx, second, key.Key); !errors.Is(err, ErrKeyNotFoundOrClaimed) {
		t.Errorf("second claim: got %v, want ErrKeyNotFoundOrClaimed", err)
	}
}

func TestRegisterUserUnknownKey(t *testing.T) {
	s := newTestStore(t)

	user := &model.User{Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com"}
	err := s.RegisterUser(context.Background(), user, "kg_never_issued")
	if !errors.Is(err, ErrKeyNotFoundOrClaimed) {
		t.Errorf("got %v, want ErrKeyNotFoundOrClaimed", err)
	}

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no user rows after failed registration, got %d", len(users))
	}
}

func TestRegisterUserExpiredKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expired := &model.APIKey{
		Key:       "kg_expired",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := s.CreateAPIKey(ctx, expired); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	user := &model.User{Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com"}
	if err := s.RegisterUser(ctx, user, expired.Key); !errors.Is(err, ErrKeyNotFoundOrClaimed) {
		t.Errorf("expired key claim: got %v, want ErrKeyNotFoundOrClaimed", err)
	}
}

func TestRegisterUserDuplicateEmailRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := issueTestKey(t, s, "kg_first")
	if err := s.RegisterUser(ctx, &model.User{Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com"}, first.Key); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	second := issueTestKey(t, s, "kg_second")
	dup := &model.User{Firstname: "Also", Lastname: "Ada", Email: "ada@example.com"}
	if err := s.RegisterUser(ctx, dup, second.Key); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicateEmail", err)
	}

	// The second key must remain unclaimed and claimable.
	got, err := s.GetAPIKey(ctx, second.Key)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if got.Claimed() {
		t.Error("key must stay unclaimed after rolled-back registration")
	}
	fresh := &model.User{Firstname: "Grace", Lastname: "Hopper", Email: "grace@example.com"}
	if err := s.RegisterUser(ctx, fresh, second.Key); err != nil {
		t.Errorf("key should still be claimable after rollback: %v", err)
	}
}

func TestConcurrentClaimsExactlyOneWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := issueTestKey(t, s, "kg_contended")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := &model.User{
				Firstname: "User",
				Lastname:  "N",
				Email:     string(rune('a'+i)) + "@example.com",
			}
			errs[i] = s.RegisterUser(ctx, user, key.Key)
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrKeyNotFoundOrClaimed):
		default:
			t.Errorf("attempt %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful claim, got %d", wins)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected exactly one user row, got %d", len(users))
	}
}

func TestAdminCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	has, err := s.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if has {
		t.Fatal("fresh store should have no admins")
	}

	admin := &model.Admin{Email: "root@example.com", PasswordHash: "$2a$10$fakehash"}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.ID == 0 {
		t.Fatal("expected admin ID to be populated")
	}

	dup := &model.Admin{Email: "root@example.com", PasswordHash: "$2a$10$other"}
	if err := s.CreateAdmin(ctx, dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate admin: got %v, want ErrDuplicateEmail", err)
	}

	got, err := s.GetAdminByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail: %v", err)
	}
	if got.PasswordHash != admin.PasswordHash {
		t.Error("password hash mismatch")
	}

	if _, err := s.GetAdminByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown admin: got %v, want ErrNotFound", err)
	}

	has, err = s.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if !has {
		t.Error("HasAnyAdmin should report true after insert")
	}
}

func TestListAPIKeysNewestFirst(t *testing.T) {
	s := newTestStore(t)
	issueTestKey(t, s, "kg_one")
	issueTestKey(t, s, "kg_two")

	keys, err := s.ListAPIKeys(context.Background())
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0].Key != "kg_two" {
		t.Errorf("expected newest key first, got %q", keys[0].Key)
	}
}
