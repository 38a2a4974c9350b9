package handlers

import (
	"context"
	"fmt"
	"net/http"

	"social-network/internal/models"
)

//
// ===================== FRIENDS =====================
//

type directoryPage struct {
	Users []models.DirectoryEntry `json:"users"`
	Total int                     `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// POST /api/friends  {from, to}
// The relation is symmetric: both users' lists gain the other, each add
// guarded against duplicates.
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.From == "" {
		req.From = requester(r)
	}
	if req.To == "" || req.From == req.To {
		writeError(w, http.StatusBadRequest, "invalid friend pair")
		return
	}
	if !h.canActFor(r, req.From) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.repos.Users.AddFriend(r.Context(), req.From, req.To); err != nil {
		writeRepoError(w, err)
		return
	}

	h.cache.InvalidatePrefix("directory:")
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// GET /api/friends?username=
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing username")
		return
	}

	user, err := h.repos.Users.GetUserByUsername(r.Context(), username)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"friends": user.Friends})
}

// GET /api/friends/directory?page=&limit=
// Cached per page; signup, friend adds and account deletion flush it.
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 20, 100)

	key := fmt.Sprintf("directory:%d:%d", page, limit)
	v, err := h.cache.Get(r.Context(), key, func(ctx context.Context) (interface{}, error) {
		entries, total, err := h.repos.Users.Directory(ctx, page, limit)
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []models.DirectoryEntry{}
		}
		return directoryPage{Users: entries, Total: total, Page: page, Limit: limit}, nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load directory")
		return
	}
	writeJSON(w, http.StatusOK, v)
}
