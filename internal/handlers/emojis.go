package handlers

import (
	"context"
	"net/http"

	"social-network/internal/models"
)

// GET /api/emojis
// Static reference data; cached with an empty-set fallback so a storage
// hiccup degrades to an empty picker instead of an error page.
func (h *Handler) ListEmojis(w http.ResponseWriter, r *http.Request) {
	v, err := h.cache.GetWithFallback(r.Context(), "emojis", []models.Emoji{},
		func(ctx context.Context) (interface{}, error) {
			emojis, err := h.repos.Emojis.ListEmojis(ctx)
			if err != nil {
				return nil, err
			}
			if emojis == nil {
				emojis = []models.Emoji{}
			}
			return emojis, nil
		})
	if err != nil && v == nil {
		writeError(w, http.StatusInternalServerError, "failed to load emojis")
		return
	}
	writeJSON(w, http.StatusOK, v)
}
