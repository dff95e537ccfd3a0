package handler

import (
	"net/http"

	"github.com/keygate/keygate/internal/model"
)

// GenerateKey issues a fresh single-use API key.
// GET /generate-apikey
func (h *Handler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.Issue(r.Context())
	if err != nil {
		h.storeFailure(w, r, "issue api key", err)
		return
	}

	writeJSON(w, http.StatusOK, model.KeyResponse{APIKey: key})
}

// keyListEntry is the redacted view of an issued key for the admin surface.
type keyListEntry struct {
	ID        int64  `json:"id"`
	Key       string `json:"api_key"`
	ExpiresAt string `json:"expires_at"`
	Claimed   bool   `json:"claimed"`
	UserID    *int64 `json:"user_id,omitempty"`
}

// ListKeys returns all issued keys with values redacted to their prefix.
// GET /api/admin/keys (privileged)
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		h.storeFailure(w, r, "list api keys", err)
		return
	}

	entries := make([]keyListEntry, 0, len(keys))
	for i := range keys {
		k := &keys[i]
		entries = append(entries, keyListEntry{
			ID:        k.ID,
			Key:       k.Redacted(),
			ExpiresAt: k.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"),
			Claimed:   k.Claimed(),
			UserID:    k.UserID,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"keys": entries})
}
