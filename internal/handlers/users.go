package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"social-network/internal/repos"
	"social-network/internal/utils"
)

//
// ===================== USERS =====================
//

// GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repos.Users.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GET /api/users/{username}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.repos.Users.GetUserByUsername(r.Context(), username)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// PUT /api/users/{username}
// Updates profile fields; {"online": true|false} is the presence toggle the
// client fires on visibility/focus/unload events.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if !h.canActFor(r, username) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req struct {
		Email    *string `json:"email"`
		Image    *string `json:"image"`
		Online   *bool   `json:"online"`
		Password *string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	upd := repos.UserUpdate{Image: req.Image, Online: req.Online}
	if req.Email != nil {
		if !utils.IsValidEmail(*req.Email) {
			writeError(w, http.StatusBadRequest, "invalid email")
			return
		}
		upd.Email = req.Email
	}
	if req.Password != nil {
		if err := utils.ValidatePasswordStrength(*req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		upd.PasswordHash = &hash
	}

	user, err := h.repos.Users.UpdateUser(r.Context(), username, upd)
	if err != nil {
		writeRepoError(w, err)
		return
	}

	if req.Online != nil {
		status := "offline"
		if *req.Online {
			status = "online"
		}
		h.hub.BroadcastPresence(username, status)
	}

	writeJSON(w, http.StatusOK, user)
}

// DELETE /api/users/{username}
// Cascades to the user's posts (and those posts' comments), messages and
// comments/replies. Best-effort: later steps still run when an earlier one
// fails.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if !h.canActFor(r, username) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	ctx := r.Context()
	if err := h.repos.Users.DeleteUser(ctx, username); err != nil {
		writeRepoError(w, err)
		return
	}

	if postIDs, err := h.repos.Posts.DeletePostsByAuthor(ctx, username); err == nil {
		h.repos.Comments.DeleteCommentsByPosts(ctx, postIDs)
	}
	h.repos.Comments.DeleteCommentsByAuthor(ctx, username)
	h.repos.Messages.DeleteMessagesByUser(ctx, username)

	h.hub.Disconnect(username)
	h.cache.InvalidatePrefix("posts:")
	h.cache.InvalidatePrefix("directory:")

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/users/{username}/image
// Inline data URLs are decoded and served as binary; plain URLs redirect.
func (h *Handler) GetUserImage(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.repos.Users.GetUserByUsername(r.Context(), username)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if user.Image == "" {
		writeError(w, http.StatusNotFound, "no image")
		return
	}

	if utils.IsDataURL(user.Image) {
		mime, data, err := utils.DecodeDataURL(user.Image)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "corrupt image data")
			return
		}
		w.Header().Set("Content-Type", mime)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	http.Redirect(w, r, user.Image, http.StatusFound)
}
