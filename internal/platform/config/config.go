package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pkgstrings "loanintake/pkg/platform/strings"
)

// Config captures process level configuration.
type Config struct {
	Server     Server
	Upstream   Upstream
	Redis      RedisConfig
	Catalogs   Catalogs
	Uploads    Uploads
	Validation Validation
	Log        Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	// ReadTimeout bounds the whole request body, uploads included.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Upstream configures the reference data, identity and submission backends.
type Upstream struct {
	ReferenceBaseURL  string
	IdentityBaseURL   string
	SubmissionBaseURL string
	Timeout           time.Duration
	RetryCount        int
	// BreakerFailures consecutive reference failures open the circuit for
	// BreakerCooldown.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// RedisConfig configures the optional shared catalog cache.
// An empty URL keeps catalogs in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Catalogs configures reference catalog caching.
type Catalogs struct {
	CacheTTL time.Duration
}

// Uploads configures the client-side file gate.
type Uploads struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Validation configures date rules that vary by deployment.
type Validation struct {
	MinimumAge int
}

// Log configures the slog handler.
type Log struct {
	Level  string
	Format string
}

const (
	DefaultUploadMaxBytes int64 = 5 << 20
	DefaultMinimumAge           = 15
)

// DefaultAllowedUploadTypes lists the accepted MIME kinds for upload slots.
var DefaultAllowedUploadTypes = []string{"application/pdf", "image/jpeg", "image/jpg", "image/png"}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:              envString("LOANINTAKE_ADDR", ":8080"),
			ReadHeaderTimeout: envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       envDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      envDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:   envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Upstream: Upstream{
			ReferenceBaseURL:  envString("REFERENCE_BASE_URL", "http://localhost:9001"),
			IdentityBaseURL:   envString("IDENTITY_BASE_URL", "http://localhost:9002"),
			SubmissionBaseURL: envString("SUBMISSION_BASE_URL", "http://localhost:9003"),
			Timeout:           envDuration("UPSTREAM_TIMEOUT", 10*time.Second),
			RetryCount:        envInt("UPSTREAM_RETRY_COUNT", 2),
			BreakerFailures:   envInt("REFERENCE_BREAKER_FAILURES", 5),
			BreakerCooldown:   envDuration("REFERENCE_BREAKER_COOLDOWN", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Catalogs: Catalogs{
			CacheTTL: envDuration("CATALOG_CACHE_TTL", 15*time.Minute),
		},
		Uploads: Uploads{
			MaxBytes:     int64(envInt("UPLOAD_MAX_BYTES", int(DefaultUploadMaxBytes))),
			AllowedTypes: envList("UPLOAD_ALLOWED_TYPES", DefaultAllowedUploadTypes),
		},
		Validation: Validation{
			MinimumAge: envInt("MINIMUM_AGE", DefaultMinimumAge),
		},
		Log: Log{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	list := pkgstrings.SplitList(v)
	if len(list) == 0 {
		return fallback
	}
	return list
}
