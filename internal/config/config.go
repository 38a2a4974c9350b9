package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Server settings
	ServerAddr      string        `koanf:"server_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Database; an empty URI selects the in-memory store (dev mode)
	MongoURI      string `koanf:"mongodb_uri"`
	MongoDatabase string `koanf:"mongodb_database"`

	// Authentication
	JWTSecret     string        `koanf:"jwt_secret"`
	JWTTTL        time.Duration `koanf:"jwt_ttl"`
	AdminUsername string        `koanf:"admin_username"`

	// Uploads
	UploadsPath    string `koanf:"uploads_path"`
	UploadMaxBytes int64  `koanf:"upload_max_bytes"`

	// Read cache
	CacheStaleTime time.Duration `koanf:"cache_stale_time"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func defaults() *Config {
	return &Config{
		ServerAddr:      ":8080",
		ShutdownTimeout: 5 * time.Second,
		MongoURI:        "",
		MongoDatabase:   "social_network",
		JWTSecret:       "",
		JWTTTL:          24 * time.Hour,
		AdminUsername:   "admin",
		UploadsPath:     "./uploads",
		UploadMaxBytes:  10 << 20,
		CacheStaleTime:  30 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load builds the configuration from defaults overridden by environment
// variables (SERVER_ADDR, MONGODB_URI, JWT_SECRET, ...).
func Load() (*Config, error) {
	cfg := defaults()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations that would come up only as confusing
// runtime failures later.
func (c *Config) Validate() error {
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.MongoURI != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when MONGODB_URI is set")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.CacheStaleTime < 0 {
		return fmt.Errorf("CACHE_STALE_TIME cannot be negative")
	}
	return nil
}

// DevMode reports whether the service runs against the in-memory store.
func (c *Config) DevMode() bool {
	return c.MongoURI == ""
}
