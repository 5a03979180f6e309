package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":33989"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, ex: 60s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir   string // config.json, profiles.json and sessions.json
	AssetsDir string // icons/ and backgrounds/ (default: <DataDir>/assets)
	DistDir   string // built frontend served at /

	SaveInterval  time.Duration // periodic flush of sessions and profiles
	SweepInterval time.Duration // periodic removal of expired sessions

	// Seed credentials, only used when config.json does not exist yet.
	DefaultUsername string
	DefaultPassword string

	// Login throttling
	LoginBurst  int
	LoginPerMin int

	// Homepage sync (optional, empty file disables it)
	HomepageFile     string        // bookmarks.yaml or services.yaml
	HomepageKind     string        // "bookmarks" | "services"
	HomepageProfile  string        // profile receiving the entries
	HomepageInterval time.Duration // re-read period

	// Favicon discovery
	FaviconTimeout  time.Duration
	FaviconCacheTTL time.Duration

	// Redis (optional, empty address disables the favicon cache)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => refuse to start without a password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	CORSOrigins  []string // optional, enables CORS for these origins
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict health endpoints to these networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func Load() *Config {
	dataDir := getenv("STARTPAGE_DATA_DIR", "./config")

	cfg := &Config{
		// Server settings
		ListenPort:      listenAddr(firstEnv("STARTPAGE_LISTEN_PORT", "PORT"), ":33989"),
		ShutdownTimeout: mustDuration("STARTPAGE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("STARTPAGE_REQUEST_TIMEOUT", 60*time.Second),

		// Logging
		LogLevel:  getenv("STARTPAGE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("STARTPAGE_PRETTY_LOG", true),

		// Files
		DataDir:       dataDir,
		AssetsDir:     getenv("STARTPAGE_ASSETS_DIR", filepath.Join(dataDir, "assets")),
		DistDir:       getenv("STARTPAGE_DIST_DIR", "./dist"),
		SaveInterval:  mustDuration("STARTPAGE_SAVE_INTERVAL", 5*time.Minute),
		SweepInterval: mustDuration("STARTPAGE_SESSION_SWEEP_INTERVAL", time.Hour),

		DefaultUsername: getenv("USERNAME", "admin"),
		DefaultPassword: getenv("PASSWORD", "admin"),

		LoginBurst:  getenvInt("STARTPAGE_LOGIN_BURST", 10),
		LoginPerMin: getenvInt("STARTPAGE_LOGIN_PER_MIN", 10),

		HomepageFile:     getenv("STARTPAGE_HOMEPAGE_FILE", ""),
		HomepageKind:     getenv("STARTPAGE_HOMEPAGE_KIND", "bookmarks"),
		HomepageProfile:  getenv("STARTPAGE_HOMEPAGE_PROFILE", "Default"),
		HomepageInterval: mustDuration("STARTPAGE_HOMEPAGE_INTERVAL", 24*time.Hour),

		FaviconTimeout:  mustDuration("STARTPAGE_FAVICON_TIMEOUT", 10*time.Second),
		FaviconCacheTTL: mustDuration("STARTPAGE_FAVICON_CACHE_TTL", 24*time.Hour),

		// Redis settings
		RedisAddr:             getenv("STARTPAGE_REDIS_ADDR", ""),
		RedisUser:             getenv("STARTPAGE_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("STARTPAGE_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("STARTPAGE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("STARTPAGE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		CORSOrigins:  splitAndTrim(getenv("STARTPAGE_CORS_ORIGINS", "")),
		AllowedHosts: splitAndTrim(getenv("STARTPAGE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("STARTPAGE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("STARTPAGE_TRUST_PROXY", false),
	}

	if cfg.RedisEnabled() && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: STARTPAGE_REDIS_PASSWORD is required when STARTPAGE_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.SaveInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: STARTPAGE_SAVE_INTERVAL must be positive, got %s", cfg.SaveInterval))
	}

	if cfg.SweepInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: STARTPAGE_SESSION_SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval))
	}
	if cfg.HomepageFile != "" && cfg.HomepageInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: STARTPAGE_HOMEPAGE_INTERVAL must be positive, got %s", cfg.HomepageInterval))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.DefaultPassword = "***REDACTED***"
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// listenAddr accepts "8080", ":8080" or "host:8080".
func listenAddr(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if _, err := strconv.Atoi(v); err == nil {
		return ":" + v
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
