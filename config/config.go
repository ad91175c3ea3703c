package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent identifies the analyzer to the sites it fetches.
const DefaultUserAgent = "Mozilla/5.0 (SEO Meta Analyzer Bot)"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Batch     BatchConfig
	Upload    UploadConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls outbound page fetches.
type FetchConfig struct {
	// Timeout bounds a single fetch, connect through body read.
	Timeout time.Duration // default: 10s

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 // default: 10 MB
}

// BatchConfig controls the batch orchestrator.
type BatchConfig struct {
	// Concurrency is the maximum number of in-flight fetches per batch.
	Concurrency int // default: 5

	// URLColumn is the spreadsheet header holding the URLs.
	URLColumn string // default: "url"
}

// UploadConfig controls spreadsheet uploads and their staging.
type UploadConfig struct {
	// Dir is the base directory under which each batch run gets its own workspace.
	Dir string

	// MaxBytes caps the multipart request body.
	MaxBytes int64 // default: 10 MB
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting of the API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity. Zero or less disables limiting.
	RequestsPerSecond float64 // default: 0 (off)

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// WebhookConfig controls batch completion notifications.
type WebhookConfig struct {
	URL    string
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("SEOMETA_HOST", "0.0.0.0"),
			Port: envIntOr("SEOMETA_PORT", 8080),
			Mode: envOr("SEOMETA_MODE", "release"),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("SEOMETA_FETCH_TIMEOUT", 10*time.Second),
			UserAgent:    envOr("SEOMETA_USER_AGENT", DefaultUserAgent),
			MaxBodyBytes: envInt64Or("SEOMETA_MAX_BODY_BYTES", 10<<20),
		},
		Batch: BatchConfig{
			Concurrency: envIntOr("SEOMETA_CONCURRENCY", 5),
			URLColumn:   envOr("SEOMETA_URL_COLUMN", "url"),
		},
		Upload: UploadConfig{
			Dir:      envOr("SEOMETA_UPLOAD_DIR", filepath.Join(os.TempDir(), "seometa")),
			MaxBytes: envInt64Or("SEOMETA_MAX_UPLOAD_BYTES", 10<<20),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SEOMETA_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SEOMETA_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SEOMETA_RATE_RPS", 0),
			Burst:             envIntOr("SEOMETA_RATE_BURST", 10),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("SEOMETA_WEBHOOK_URL"),
			Secret: os.Getenv("SEOMETA_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("SEOMETA_LOG_LEVEL", "info"),
			Format: envOr("SEOMETA_LOG_FORMAT", "json"),
		},
	}
	cfg.Normalize()
	return cfg
}

// Normalize clamps values that would make the pipeline unusable.
// Call it again after overriding fields from CLI flags.
func (c *Config) Normalize() {
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(c.Fetch.UserAgent) == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = 10 << 20
	}
	if c.Batch.Concurrency < 1 {
		c.Batch.Concurrency = 1
	}
	if c.Batch.URLColumn == "" {
		c.Batch.URLColumn = "url"
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 10 << 20
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
