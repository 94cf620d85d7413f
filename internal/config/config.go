package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store modes of the local link store.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, event stream excluded

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreMode string // "redis" | "memory"

	// Seed file of links imported on startup and on reload (optional)
	SeedFile       string
	ReloadInterval time.Duration // 0 disables periodic reloads

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
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

	// Remote collection (optional, empty = cloud sync disabled)
	PostgresDSN string

	// Sign-in
	BaseURL       string        // public origin used in sign-in links
	JWTSecret     string        // HS256 key of session tokens
	LinkTTL       time.Duration // sign-in link lifetime
	SessionTTL    time.Duration // session lifetime
	SecureCookies bool
	SignInBurst   int
	SignInPerMin  int

	// Mail (empty host = links are logged instead of mailed)
	SMTPAddr     string
	SMTPFrom     string
	SMTPUser     string
	SMTPPassword string

	// Backups (empty bucket = disabled)
	BackupBucket    string
	BackupPrefix    string
	BackupRegion    string
	BackupEndpoint  string
	BackupAccessKey string
	BackupSecretKey string
	BackupInterval  time.Duration

	CORSOrigins  []string // optional, origins allowed to call the API
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("GOODNEWS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("GOODNEWS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("GOODNEWS_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("GOODNEWS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("GOODNEWS_PRETTY_LOG", true),

		StoreMode:      strings.ToLower(getenv("GOODNEWS_STORE", StoreRedis)),
		SeedFile:       getenv("GOODNEWS_SEED_FILE", ""),
		ReloadInterval: mustDuration("GOODNEWS_RELOAD_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:             getenv("GOODNEWS_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("GOODNEWS_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("GOODNEWS_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("GOODNEWS_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("GOODNEWS_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		PostgresDSN: getenv("GOODNEWS_POSTGRES_DSN", ""),

		// Sign-in
		BaseURL:       getenv("GOODNEWS_BASE_URL", "http://localhost:8080"),
		JWTSecret:     getenv("GOODNEWS_JWT_SECRET", ""),
		LinkTTL:       mustDuration("GOODNEWS_SIGNIN_LINK_TTL", 15*time.Minute),
		SessionTTL:    mustDuration("GOODNEWS_SESSION_TTL", 30*24*time.Hour),
		SecureCookies: mustBool("GOODNEWS_SECURE_COOKIES", true),
		SignInBurst:   getenvInt("GOODNEWS_SIGNIN_BURST", 5),
		SignInPerMin:  getenvInt("GOODNEWS_SIGNIN_PER_MIN", 5),

		SMTPAddr:     getenv("GOODNEWS_SMTP_ADDR", ""),
		SMTPFrom:     getenv("GOODNEWS_SMTP_FROM", "Thai Good News <no-reply@localhost>"),
		SMTPUser:     getenv("GOODNEWS_SMTP_USERNAME", ""),
		SMTPPassword: getenv("GOODNEWS_SMTP_PASSWORD", ""),

		BackupBucket:    getenv("GOODNEWS_BACKUP_BUCKET", ""),
		BackupPrefix:    getenv("GOODNEWS_BACKUP_PREFIX", "goodnews"),
		BackupRegion:    getenv("GOODNEWS_BACKUP_REGION", "us-east-1"),
		BackupEndpoint:  getenv("GOODNEWS_BACKUP_ENDPOINT", ""),
		BackupAccessKey: getenv("GOODNEWS_BACKUP_ACCESS_KEY", ""),
		BackupSecretKey: getenv("GOODNEWS_BACKUP_SECRET_KEY", ""),
		BackupInterval:  mustDuration("GOODNEWS_BACKUP_INTERVAL", 24*time.Hour),

		// Access restrictions
		CORSOrigins:  splitAndTrim(getenv("GOODNEWS_CORS_ORIGINS", "")),
		AllowedHosts: splitAndTrim(getenv("GOODNEWS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("GOODNEWS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("GOODNEWS_TRUST_PROXY", true),
	}

	if cfg.SyncEnabled() {
		cfg.JWTSecret = requireEnv("GOODNEWS_JWT_SECRET")
	}

	if err := cfg.validate(); err != nil {
		panic("❌ FATAL: " + err.Error())
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

func (c *Config) validate() error {
	switch c.StoreMode {
	case StoreRedis:
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			return fmt.Errorf("GOODNEWS_REDIS_PASSWORD is required when GOODNEWS_REDIS_PASSWORD_REQUIRED=true")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("GOODNEWS_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, c.StoreMode)
	}
	if c.PostgresDSN != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("GOODNEWS_JWT_SECRET must be at least 32 bytes when cloud sync is enabled")
	}
	return nil
}

// SyncEnabled reports whether sign-in and cloud sync are configured.
func (c *Config) SyncEnabled() bool { return c.PostgresDSN != "" }

// BackupEnabled reports whether S3 backups are configured.
func (c *Config) BackupEnabled() bool { return c.BackupBucket != "" }

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	const redacted = "***REDACTED***"
	for _, s := range []*string{&cp.RedisPassword, &cp.JWTSecret, &cp.SMTPPassword, &cp.BackupSecretKey, &cp.PostgresDSN} {
		if *s != "" {
			*s = redacted
		}
	}
	if cp.RedisUser != "" {
		cp.RedisUser = redacted
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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
