package handler

import (
	"net/http"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/service"
)

// registerRequest is the expected payload for the registration endpoint.
type registerRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	APIKey    string `json:"apiKey"`
}

// Register creates a user bound to a claimed API key.
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.registry.Register(r.Context(), service.RegisterInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		APIKey:    req.APIKey,
	})
	if err != nil {
		if !translate(w, err) {
			h.storeFailure(w, r, "register user", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, model.RegisterResponse{
		Message: "User registered",
		User:    *user,
		APIKey:  req.APIKey,
	})
}

// ListUsers returns all registered users.
// GET /api/admin/users (privileged)
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.registry.Users(r.Context())
	if err != nil {
		h.storeFailure(w, r, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
