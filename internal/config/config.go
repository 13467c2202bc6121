// Package config loads server settings from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds every environment-driven server setting
type Config struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT,default=8080"`
	AppEnv   string `env:"APP_ENV,default=development"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	StorageType string `env:"STORAGE_TYPE,default=memory"`
	RedisURL    string `env:"REDIS_URL,default=redis://localhost:6379"`

	JWTSecret      string        `env:"JWT_SECRET,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,default=168h"`

	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:5173"`
	ServerURL   string `env:"SERVER_URL,default=http://localhost:8080"`
	// AllowedRedirects is a comma-separated list of extra OAuth return origins
	AllowedRedirects string `env:"ALLOWED_REDIRECTS"`

	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         int    `env:"SMTP_PORT,default=587"`
	EmailFrom        string `env:"EMAIL_FROM"`
	EmailAppPassword string `env:"EMAIL_APP_PASSWORD"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	AuthRateMax             int           `env:"AUTH_RATE_MAX,default=5"`
	AuthRateWindow          time.Duration `env:"AUTH_RATE_WINDOW,default=10m"`
	FriendRequestRateMax    int           `env:"FRIEND_REQUEST_RATE_MAX,default=5"`
	FriendRequestRateWindow time.Duration `env:"FRIEND_REQUEST_RATE_WINDOW,default=1h"`
	BurstRPS                float64       `env:"BURST_RPS,default=20"`
	BurstSize               int           `env:"BURST_SIZE,default=40"`

	GuestInvitesPerDay    int           `env:"GUEST_INVITES_PER_EMAIL_PER_DAY,default=3"`
	MatchReminderCooldown time.Duration `env:"MATCH_REMINDER_COOLDOWN,default=6h"`
}

// Load reads an optional .env file and decodes the environment
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be expressed as tags
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StorageType {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType)
	}
	if c.StorageType == StorageRedis && c.RedisURL == "" {
		return errors.New("REDIS_URL is required when STORAGE_TYPE=redis")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Redirects returns the extra allowed OAuth return origins
func (c *Config) Redirects() []string {
	var out []string
	for _, r := range strings.Split(c.AllowedRedirects, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// GoogleEnabled reports whether Google sign-in credentials are configured
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// GoogleCallbackURL is the OAuth redirect URI registered with Google
func (c *Config) GoogleCallbackURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/api/v1/auth/google/callback"
}

// SMTPEnabled reports whether outgoing email should use SMTP
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
