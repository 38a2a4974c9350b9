package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"social-network/internal/config"
	"social-network/internal/database"
	"social-network/internal/handlers"
	"social-network/internal/logger"
	"social-network/internal/middleware"
	"social-network/internal/repos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.Emojis.SeedEmojis(seedCtx, database.DefaultEmojis()); err != nil {
		log.Warn().Err(err).Msg("emoji seed failed")
	}
	cancel()

	secret := cfg.JWTSecret
	if secret == "" {
		// dev mode: tokens do not survive a restart
		secret = randomSecret()
		log.Warn().Msg("JWT_SECRET not set, using an ephemeral secret")
	}
	jwtm, err := middleware.NewJWTManager(secret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt init failed")
	}

	h := handlers.NewHandler(cfg, store, jwtm)
	router := buildRouter(h, jwtm)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.ServerAddr).Bool("dev_mode", cfg.DevMode()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// openStore connects to MongoDB, or falls back to the in-memory store when
// no URI is configured.
func openStore(cfg *config.Config) (*repos.Repos, error) {
	if cfg.DevMode() {
		log.Warn().Msg("MONGODB_URI not set, using the in-memory store")
		return repos.NewMemoryRepos(), nil
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return repos.NewMongoRepos(db), nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("entropy unavailable")
	}
	return hex.EncodeToString(b)
}

func buildRouter(h *handlers.Handler, jwtm *middleware.JWTManager) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Instrument)
	r.Use(chimw.Recoverer)

	// public surface
	r.Get("/api/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/signin", h.Signin)
	r.Get("/uploads/{name}", h.ServeUpload)
	r.Get("/ws", h.ServeWS)

	// authenticated API
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return middleware.RequireAuth(jwtm, next)
		})

		r.Get("/api/users", h.ListUsers)
		r.Get("/api/users/{username}", h.GetUser)
		r.Put("/api/users/{username}", h.UpdateUser)
		r.Delete("/api/users/{username}", h.DeleteUser)
		r.Get("/api/users/{username}/image", h.GetUserImage)

		r.Get("/api/posts", h.ListPosts)
		r.Post("/api/posts", h.CreatePost)
		r.Get("/api/posts/{id}", h.GetPost)
		r.Patch("/api/posts/{id}", h.ReactPost)
		r.Delete("/api/posts/{id}", h.DeletePost)

		r.Get("/api/comments", h.ListComments)
		r.Post("/api/comments", h.CreateComment)
		r.Patch("/api/comments/{id}", h.ReactComment)

		r.Get("/api/messages", h.ListMessages)
		r.Post("/api/messages", h.CreateMessage)
		r.Put("/api/messages/{id}", h.UpdateMessage)
		r.Delete("/api/messages/{id}", h.DeleteMessage)

		r.Get("/api/friends", h.ListFriends)
		r.Post("/api/friends", h.AddFriend)
		r.Get("/api/friends/directory", h.Directory)

		r.Get("/api/emojis", h.ListEmojis)
		r.Post("/uploads", h.Upload)
	})

	return r
}
