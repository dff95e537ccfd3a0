package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/server/middleware"
	"github.com/keygate/keygate/internal/service"
	"github.com/keygate/keygate/internal/store"
)

const testJWTSecret = "test-secret-for-handler-tests"

// testEnv holds shared state for handler integration tests.
type testEnv struct {
	store   *store.Store
	keys    *service.KeyService
	authSvc *service.AuthService
	router  chi.Router
}

// newTestEnv creates a fresh environment with an in-memory store and a Chi
// router mounted the same way the server mounts it, including the bearer
// gate on the privileged group.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(store.Options{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	keys := service.NewKeyService(st)
	registry := service.NewRegistry(st)
	authSvc := service.NewAuthService(st, testJWTSecret)
	h := New(keys, registry, authSvc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Get("/generate-apikey", h.GenerateKey)
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/register", h.AdminRegister)
			r.Post("/login", h.AdminLogin)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(authSvc))
				r.Get("/users", h.ListUsers)
				r.Get("/keys", h.ListKeys)
			})
		})
	})

	return &testEnv{store: st, keys: keys, authSvc: authSvc, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) issueKey(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/generate-apikey", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate-apikey: status %d", rec.Code)
	}
	var resp model.KeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode key response: %v", err)
	}
	return resp.APIKey
}

func TestGenerateKey(t *testing.T) {
	env := newTestEnv(t)

	key := env.issueKey(t)
	if !strings.HasPrefix(key, model.KeyPrefix) {
		t.Errorf("key %q missing prefix %q", key, model.KeyPrefix)
	}
}

func TestRegisterFlow(t *testing.T) {
	env := newTestEnv(t)
	key := env.issueKey(t)

	rec := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"email":     "ada@example.com",
		"apiKey":    key,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp model.RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if resp.User.ID == 0 {
		t.Error("expected user id in response")
	}
	if resp.User.Email != "ada@example.com" {
		t.Errorf("email: got %q", resp.User.Email)
	}
	if resp.APIKey != key {
		t.Errorf("expected key echoed back, got %q", resp.APIKey)
	}

	// The claimed key now references the created user.
	stored, err := env.store.GetAPIKey(context.Background(), key)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if stored.UserID == nil || *stored.UserID != resp.User.ID {
		t.Errorf("claimed_by: got %v, want %d", stored.UserID, resp.User.ID)
	}

	// Reusing the key fails with 404.
	rec = env.do(t, http.MethodPost, "/api/register", map[string]string{
		"firstname": "Grace",
		"lastname":  "Hopper",
		"email":     "grace@example.com",
		"apiKey":    key,
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("reused key: status %d, want 404", rec.Code)
	}
}

func TestRegisterUnknownKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"email":     "ada@example.com",
		"apiKey":    "kg_never_issued",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown key: status %d, want 404", rec.Code)
	}
}

func TestRegisterMissingFieldNoMutation(t *testing.T) {
	env := newTestEnv(t)
	key := env.issueKey(t)

	rec := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"apiKey":    key,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing email: status %d, want 400", rec.Code)
	}

	users, err := env.store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no user rows, got %d", len(users))
	}
	stored, err := env.store.GetAPIKey(context.Background(), key)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if stored.Claimed() {
		t.Error("key must stay unclaimed after validation failure")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	first := env.issueKey(t)
	rec := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"firstname": "Ada", "lastname": "Lovelace", "email": "ada@example.com", "apiKey": first,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: status %d", rec.Code)
	}

	second := env.issueKey(t)
	rec = env.do(t, http.MethodPost, "/api/register", map[string]string{
		"firstname": "Also", "lastname": "Ada", "email": "ada@example.com", "apiKey": second,
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: status %d, want 409", rec.Code)
	}

	stored, err := env.store.GetAPIKey(context.Background(), second)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if stored.Claimed() {
		t.Error("key must stay unclaimed after duplicate-email rollback")
	}
}

func TestAdminRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/register", map[string]string{
		"email": "root@example.com", "password": "supersecret",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: status %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/admin/register", map[string]string{
		"email": "root@example.com", "password": "other",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate admin: status %d, want 409", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/admin/register", map[string]string{
		"email": "root2@example.com",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password: status %d, want 400", rec.Code)
	}
}

func TestAdminLoginUniformFailure(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/register", map[string]string{
		"email": "root@example.com", "password": "supersecret",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: status %d", rec.Code)
	}

	wrongPw := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email": "root@example.com", "password": "nope",
	}, nil)
	unknown := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email": "nobody@example.com", "password": "supersecret",
	}, nil)

	if wrongPw.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", wrongPw.Code)
	}
	if unknown.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: status %d, want 401", unknown.Code)
	}
	// Identical body: nothing may reveal which case occurred.
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Errorf("login failure bodies differ:\n%s\n%s", wrongPw.Body.String(), unknown.Body.String())
	}
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/admin/register", map[string]string{
		"email": "root@example.com", "password": "supersecret",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: status %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email": "root@example.com", "password": "supersecret",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}

	var resp model.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected non-empty token")
	}
	return resp.Token
}

func TestPrivilegedEndpointsGate(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	// No credentials at all.
	rec := env.do(t, http.MethodGet, "/api/admin/users", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", rec.Code)
	}

	// Credentials presented but rejected.
	rec = env.do(t, http.MethodGet, "/api/admin/users", nil, map[string]string{
		"Authorization": "Bearer " + token[:len(token)-2] + "xx",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("tampered token: status %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/users", nil, map[string]string{
		"Authorization": "Basic abc123",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-bearer scheme: status %d, want 403", rec.Code)
	}

	// Valid token.
	rec = env.do(t, http.MethodGet, "/api/admin/users", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status %d, want 200", rec.Code)
	}
}

func TestListKeysRedactsValues(t *testing.T) {
	env := newTestEnv(t)
	key := env.issueKey(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/keys", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("list keys: status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), key) {
		t.Error("full key value leaked in list response")
	}
	if !strings.Contains(rec.Body.String(), key[:len(model.KeyPrefix)+8]) {
		t.Error("expected redacted prefix in list response")
	}
}
