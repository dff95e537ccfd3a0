package handler

import (
	"net/http"

	"github.com/keygate/keygate/internal/model"
)

// adminCredentials is the payload for both admin registration and login.
type adminCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminRegister creates a new admin account.
// POST /api/admin/register
func (h *Handler) AdminRegister(w http.ResponseWriter, r *http.Request) {
	var req adminCredentials
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.auth.CreateAdmin(r.Context(), req.Email, req.Password); err != nil {
		if !translate(w, err) {
			h.storeFailure(w, r, "create admin", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, model.MessageResponse{Message: "Admin registered"})
}

// AdminLogin authenticates an admin and returns a bearer session token.
// POST /api/admin/login
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminCredentials
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if !translate(w, err) {
			h.storeFailure(w, r, "authenticate admin", err)
		}
		return
	}

	token, err := h.auth.IssueToken(admin)
	if err != nil {
		h.storeFailure(w, r, "issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Message: "Login successful",
		Token:   token,
	})
}
