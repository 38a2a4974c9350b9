package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"social-network/internal/models"
	"social-network/internal/utils"
)

//
// ===================== COMMENTS =====================
//

// GET /api/comments?postId=
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("postId")
	if postID == "" {
		writeError(w, http.StatusBadRequest, "missing postId")
		return
	}

	comments, err := h.repos.Comments.ListCommentsByPost(r.Context(), postID)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// POST /api/comments
// Creates a comment, or appends a reply when commentId is set.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID    string `json:"postId"`
		CommentID string `json:"commentId"`
		Author    string `json:"author"`
		Text      string `json:"text"`
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
	if ok, msg := utils.ValidateCommentData(req.Text); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// reply path: append to an existing comment
	if req.CommentID != "" {
		comment, err := h.repos.Comments.AddReply(r.Context(), req.CommentID, models.Reply{
			Author: req.Author,
			Text:   req.Text,
		})
		if err != nil {
			writeRepoError(w, err)
			return
		}
		h.hub.Broadcast(WSMessage{
			"type":    "comment_reply",
			"comment": comment,
		})
		writeJSON(w, http.StatusCreated, comment)
		return
	}

	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "missing postId")
		return
	}
	// reject comments on unknown posts up front
	if _, err := h.repos.Posts.GetPostByID(r.Context(), req.PostID); err != nil {
		writeRepoError(w, err)
		return
	}

	oid, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid postId")
		return
	}

	comment := &models.Comment{
		PostID: oid,
		Author: req.Author,
		Text:   req.Text,
	}
	if err := h.repos.Comments.CreateComment(r.Context(), comment); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}

	h.hub.Broadcast(WSMessage{
		"type":    "comment_created",
		"post_id": req.PostID,
		"comment": comment,
	})
	writeJSON(w, http.StatusCreated, comment)
}

// PATCH /api/comments/{id}  {action: like|dislike, username}
func (h *Handler) ReactComment(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.repos.Comments.ReactComment(r.Context(), id, req.Username, req.Action == "like")
	if err != nil {
		writeRepoError(w, err)
		return
	}

	h.hub.Broadcast(WSMessage{
		"type":       "comment_reaction",
		"comment_id": id,
		"likes":      res.Likes,
		"dislikes":   res.Dislikes,
	})
	writeJSON(w, http.StatusOK, res)
}
