package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"social-network/internal/cache"
	"social-network/internal/config"
	"social-network/internal/middleware"
	"social-network/internal/models"
	"social-network/internal/repos"
	"social-network/internal/utils"
)

// Handler carries the dependencies of every route: config, the repository
// bundle, the token manager, the read cache and the websocket hub.
type Handler struct {
	cfg   *config.Config
	repos *repos.Repos
	jwt   *middleware.JWTManager
	cache *cache.Cache
	hub   *Hub
}

func NewHandler(cfg *config.Config, r *repos.Repos, jwtm *middleware.JWTManager) *Handler {
	h := &Handler{
		cfg:   cfg,
		repos: r,
		jwt:   jwtm,
		cache: cache.New(cfg.CacheStaleTime),
		hub:   NewHub(r),
	}
	// start hub run loop for safe broadcasting
	go h.hub.Run()
	return h
}

//
// ===================== HELPERS =====================
//

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeRepoError maps repository sentinel errors onto HTTP statuses.
func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repos.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repos.ErrDuplicate):
		writeError(w, http.StatusConflict, "already exists")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// requester returns the authenticated username from the request context.
func requester(r *http.Request) string {
	return middleware.UsernameFromContext(r.Context())
}

// isAdmin reports whether username is the configured admin account.
func (h *Handler) isAdmin(username string) bool {
	return username != "" && username == h.cfg.AdminUsername
}

// canActFor allows a user to touch their own resources, and the admin to
// touch anyone's.
func (h *Handler) canActFor(r *http.Request, target string) bool {
	u := requester(r)
	return u == target || h.isAdmin(u)
}

// pagination reads ?page= and ?limit= with defaults and an upper bound.
func pagination(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

//
// ===================== AUTH =====================
//

// POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Image    string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if !utils.IsValidUsername(req.Username) {
		writeError(w, http.StatusBadRequest, "invalid username")
		return
	}
	if !utils.IsValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Image:        req.Image,
	}
	if err := h.repos.Users.CreateUser(r.Context(), user); err != nil {
		writeRepoError(w, err)
		return
	}

	h.cache.InvalidatePrefix("directory:")
	writeJSON(w, http.StatusCreated, user)
}

// POST /api/auth/signin
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := h.repos.Users.GetUserByUsername(r.Context(), req.Username)
	if err != nil || utils.VerifyPassword(user.PasswordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	online := true
	if _, err := h.repos.Users.UpdateUser(r.Context(), user.Username, repos.UserUpdate{Online: &online}); err == nil {
		h.hub.BroadcastPresence(user.Username, "online")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.cfg.DevMode() {
		status["store"] = "memory"
	} else {
		status["store"] = "mongodb"
	}
	writeJSON(w, http.StatusOK, status)
}

// listFromCache fetches a cached listing, converting cache values back to
// their concrete type.
func listFromCache[T any](ctx context.Context, c *cache.Cache, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	out, _ := v.([]T)
	return out, nil
}
