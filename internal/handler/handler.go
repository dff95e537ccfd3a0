package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keygate/keygate/internal/service"
	"github.com/keygate/keygate/internal/store"
)

// Handler serves the public key-issuance and registration endpoints plus the
// privileged admin surface.
type Handler struct {
	keys     *service.KeyService
	registry *service.Registry
	auth     *service.AuthService
	logger   *slog.Logger
}

// New creates a Handler wired to the given services.
func New(keys *service.KeyService, registry *service.Registry, auth *service.AuthService, logger *slog.Logger) *Handler {
	return &Handler{
		keys:     keys,
		registry: registry,
		auth:     auth,
		logger:   logger,
	}
}

// storeFailure logs the full error server-side and returns a generic 500 to
// the client. Internal detail never crosses the trust boundary.
func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("store failure", "op", op, "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// translate maps the shared error taxonomy to HTTP status codes. It returns
// false when err is not a recognized client error, in which case the caller
// should treat it as a store failure.
func translate(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "Missing required field")
	case errors.Is(err, store.ErrKeyNotFoundOrClaimed):
		writeError(w, http.StatusNotFound, "Invalid or already claimed API key")
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		return false
	}
	return true
}
