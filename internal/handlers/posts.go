package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"social-network/internal/models"
	"social-network/internal/utils"
)

//
// ===================== POSTS =====================
//

// GET /api/posts?author=&page=&limit=
// Listings are served through the stale-while-revalidate cache; mutations
// below invalidate the "posts:" prefix.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("author")
	page, limit := pagination(r, 20, 100)

	key := fmt.Sprintf("posts:%s:%d:%d", author, page, limit)
	posts, err := listFromCache(r.Context(), h.cache, key, func(ctx context.Context) ([]models.Post, error) {
		return h.repos.Posts.ListPosts(ctx, author, page, limit)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// POST /api/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Image   string `json:"image"`
		Author  string `json:"author"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if req.Author == "" {
		req.Author = requester(r)
	}
	if !h.canActFor(r, req.Author) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if ok, msg := utils.ValidatePostData(req.Title, req.Content); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	post := &models.Post{
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Image:   req.Image,
		Author:  req.Author,
	}
	if err := h.repos.Posts.CreatePost(r.Context(), post); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	h.cache.InvalidatePrefix("posts:")
	h.hub.Broadcast(WSMessage{"type": "post_created", "post": post})

	writeJSON(w, http.StatusCreated, map[string]interface{}{"post": post})
}

// GET /api/posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.repos.Posts.GetPostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// PATCH /api/posts/{id}  {action: like|dislike, username}
// Reapplying the same action is a no-op; the membership set guarantees one
// reaction count per user.
func (h *Handler) ReactPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Action   string `json:"action"`
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Action != "like" && req.Action != "dislike" {
		writeError(w, http.StatusBadRequest, "action must be like or dislike")
		return
	}
	if req.Username == "" {
		req.Username = requester(r)
	}
	if !h.canActFor(r, req.Username) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	res, err := h.repos.Posts.ReactPost(r.Context(), id, req.Username, req.Action == "like")
	if err != nil {
		writeRepoError(w, err)
		return
	}

	h.cache.InvalidatePrefix("posts:")
	h.hub.Broadcast(WSMessage{
		"type":     "post_reaction",
		"post_id":  id,
		"likes":    res.Likes,
		"dislikes": res.Dislikes,
	})

	writeJSON(w, http.StatusOK, res)
}

// DELETE /api/posts/{id}
// Cascades to the post's comments.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.repos.Posts.GetPostByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if !h.canActFor(r, post.Author) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.repos.Posts.DeletePost(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	h.repos.Comments.DeleteCommentsByPosts(r.Context(), []string{id})

	h.cache.InvalidatePrefix("posts:")
	w.WriteHeader(http.StatusNoContent)
}
