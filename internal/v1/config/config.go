package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is used when PORT is unset. If the port is taken the server
// scans upward for a free one (see PickPort).
const DefaultPort = 8081

// Config holds validated environment configuration
type Config struct {
	Port int

	// Room lifecycle windows
	GraceWindow   time.Duration // how long a disconnected player's seat is held
	IdleWindow    time.Duration // empty + inactive rooms older than this are reaped
	SweepInterval time.Duration // janitor cadence

	// Optional variables with defaults
	GoEnv         string
	LogLevel      string
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string

	// Auth
	AuthDomain      string
	AuthAudience    string
	SessionSecret   string
	SkipAuth        bool
	DevelopmentMode bool
	AllowedOrigins  []string

	// Rate Limits
	RateLimitWsIp     string
	RateLimitWsEvents string
}

// ValidateEnv validates all required environment variables and returns a
// Config object. Returns an error if any required variable is missing or
// invalid.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errs []string

	// Optional: PORT (valid port number, defaults to 8081)
	portStr := os.Getenv("PORT")
	if portStr == "" {
		cfg.Port = DefaultPort
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			errs = append(errs, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got '%s')", portStr))
		} else {
			cfg.Port = port
		}
	}

	// Optional: GO_ENV (defaults to "production")
	cfg.GoEnv = os.Getenv("GO_ENV")
	if cfg.GoEnv == "" {
		cfg.GoEnv = "production"
	}

	cfg.DevelopmentMode = os.Getenv("DEVELOPMENT_MODE") == "true"
	cfg.SkipAuth = os.Getenv("SKIP_AUTH") == "true"

	// Required in production: SESSION_SECRET (minimum 32 characters)
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.GoEnv == "production" && !cfg.DevelopmentMode {
		if cfg.SessionSecret == "" {
			errs = append(errs, "SESSION_SECRET is required in production")
		} else if len(cfg.SessionSecret) < 32 {
			errs = append(errs, fmt.Sprintf("SESSION_SECRET must be at least 32 characters (got %d)", len(cfg.SessionSecret)))
		}
	}

	// Lifecycle windows
	var err error
	if cfg.GraceWindow, err = durationEnv("GRACE_WINDOW", 5*time.Minute); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.IdleWindow, err = durationEnv("IDLE_WINDOW", 30*time.Minute); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", 60*time.Second); err != nil {
		errs = append(errs, err.Error())
	}

	// Conditional: REDIS_ADDR (required if REDIS_ENABLED=true)
	cfg.RedisEnabled = os.Getenv("REDIS_ENABLED") == "true"
	if cfg.RedisEnabled {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
		if cfg.RedisAddr == "" {
			cfg.RedisAddr = "localhost:6379"
			slog.Warn("REDIS_ADDR not set, using default", "addr", cfg.RedisAddr)
		} else if !isValidHostPort(cfg.RedisAddr) {
			errs = append(errs, fmt.Sprintf("REDIS_ADDR must be in format 'host:port' (got '%s')", cfg.RedisAddr))
		}
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	}

	// Optional: LOG_LEVEL (defaults to "info")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.AuthDomain = os.Getenv("AUTH_DOMAIN")
	cfg.AuthAudience = os.Getenv("AUTH_AUDIENCE")
	cfg.AllowedOrigins = parseOrigins(os.Getenv("ALLOWED_ORIGINS"))

	// Rate Limits (Defaults: M = Minute, H = Hour)
	cfg.RateLimitWsIp = getEnvOrDefault("RATE_LIMIT_WS_IP", "100-M")
	cfg.RateLimitWsEvents = getEnvOrDefault("RATE_LIMIT_WS_EVENTS", "600-M")

	if len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	logValidatedConfig(cfg)

	return cfg, nil
}

// PickPort returns the first free TCP port at or above cfg.Port. Scanning is
// bounded so a fully exhausted range fails rather than spinning.
func PickPort(cfg *Config) (int, error) {
	for port := cfg.Port; port < cfg.Port+100 && port <= 65535; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		if port != cfg.Port {
			slog.Warn("Preferred port in use, scanned upward", "preferred", cfg.Port, "chosen", port)
		}
		return port, nil
	}
	return 0, fmt.Errorf("no free port found in range %d-%d", cfg.Port, cfg.Port+99)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like '5m' (got '%s')", key, raw)
	}
	return d, nil
}

// parseOrigins splits a comma-separated origin allowlist, falling back to
// the local development origin when the variable is unset.
func parseOrigins(raw string) []string {
	if raw == "" {
		slog.Warn("ALLOWED_ORIGINS not set, using default development origin", "origin", "http://localhost:3000")
		return []string{"http://localhost:3000"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// isValidHostPort checks if a string is in the format "host:port"
func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return false
	}

	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return false
	}

	return parts[0] != ""
}

// logValidatedConfig logs the validated configuration with secrets redacted
func logValidatedConfig(cfg *Config) {
	slog.Info("Environment configuration validated",
		"port", cfg.Port,
		"grace_window", cfg.GraceWindow,
		"idle_window", cfg.IdleWindow,
		"sweep_interval", cfg.SweepInterval,
		"redis_enabled", cfg.RedisEnabled,
		"redis_addr", cfg.RedisAddr,
		"go_env", cfg.GoEnv,
		"log_level", cfg.LogLevel,
		"development_mode", cfg.DevelopmentMode,
		"session_secret", redactSecret(cfg.SessionSecret),
	)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// redactSecret redacts a secret by showing only the first 8 characters
func redactSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:8] + "***"
}
