package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"social-network/internal/models"
	"social-network/internal/utils"
)

// maxMessageLimit bounds a single conversation query.
const maxMessageLimit = 200

//
// ===================== MESSAGES =====================
//

// GET /api/messages?user1=&user2=&limit=
// Returns the conversation between the two users, newest first. The
// requester must be a participant (admin excepted).
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user1 := q.Get("user1")
	user2 := q.Get("user2")
	if user1 == "" || user2 == "" {
		writeError(w, http.StatusBadRequest, "missing user1 or user2")
		return
	}

	if !h.canActFor(r, user1) && !h.canActFor(r, user2) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	msgs, err := h.repos.Messages.MessagesBetween(r.Context(), user1, user2, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// POST /api/messages
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Type     string `json:"type"`
		Content  string `json:"content"`
		FileName string `json:"fileName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if req.From == "" {
		req.From = requester(r)
	}
	if !h.canActFor(r, req.From) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if req.Type == "" {
		req.Type = models.MessageText
	}
	if !utils.IsValidMessageType(req.Type) {
		writeError(w, http.StatusBadRequest, "type must be text, image or file")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content cannot be empty")
		return
	}

	// recipient must exist
	if _, err := h.repos.Users.GetUserByUsername(r.Context(), req.To); err != nil {
		writeRepoError(w, err)
		return
	}

	msg := &models.Message{
		From:     req.From,
		To:       req.To,
		Type:     req.Type,
		Content:  req.Content,
		FileName: req.FileName,
	}
	if err := h.repos.Messages.CreateMessage(r.Context(), msg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	// relay to the recipient's socket when they are connected
	h.hub.SendToUser(req.To, WSMessage{"type": "message", "message": msg})

	writeJSON(w, http.StatusCreated, msg)
}

// PUT /api/messages/{id}
// Only the sender may edit, and only the content is rewritable.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content cannot be empty")
		return
	}

	msg, err := h.repos.Messages.GetMessageByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if !h.canActFor(r, msg.From) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	updated, err := h.repos.Messages.UpdateMessageContent(r.Context(), id, req.Content)
	if err != nil {
		writeRepoError(w, err)
		return
	}

	h.hub.SendToUser(msg.To, WSMessage{"type": "message_updated", "message": updated})
	writeJSON(w, http.StatusOK, updated)
}

// DELETE /api/messages/{id}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	msg, err := h.repos.Messages.GetMessageByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if !h.canActFor(r, msg.From) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.repos.Messages.DeleteMessage(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}

	h.hub.SendToUser(msg.To, WSMessage{"type": "message_deleted", "message_id": id})
	w.WriteHeader(http.StatusNoContent)
}
