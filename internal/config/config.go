package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "github.com/jaysurani18/smart-society/common/config"
)

// Config society-data (HTTP API) settings
type Config struct {
	HTTP struct {
		Addr         string
		CORSOrigins  []string
		MaxBodyBytes int64
		// TrustedProxies IPs or CIDRs whose forwarding headers are believed.
		TrustedProxies []string
	}
	DBEnabled bool
	DBMigrate bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	Log struct {
		Level  string
		Format string
	}

	Auth      AuthConfig
	Invite    InviteConfig
	MQTT      MQTTConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Seed      SeedConfig
}

// AuthConfig session token and password hashing settings
type AuthConfig struct {
	JWTSecret       string
	Issuer          string
	TokenTTL        time.Duration
	BcryptCost      int
	SessionRegistry bool
}

// InviteConfig invitation link settings
type InviteConfig struct {
	TTL        time.Duration
	BaseURL    string
	Delivery   string // log | webhook | stream
	WebhookURL string
	Stream     string
}

// MQTTConfig notice broadcast (disabled by default)
type MQTTConfig struct {
	Enabled     bool
	Conn        commoncfg.MQTTConfig
	NoticeTopic string
}

// UploadConfig complaint image storage
type UploadConfig struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

// RateLimitConfig limits for the public auth endpoints
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// SeedConfig bootstrap admin account
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":5000")
	cfg.HTTP.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	cfg.HTTP.MaxBodyBytes = 1 << 20
	cfg.HTTP.TrustedProxies = splitList(getEnv("TRUSTED_PROXIES", ""))

	// DB_ENABLED=false runs on the in-memory repository.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.DBMigrate = getEnv("DB_MIGRATE", "true") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "society_db"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20
	cfg.Database.MaxIdle = 5
	cfg.Database.ConnMaxLifetime = 30 * time.Minute
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", "society-data")
	cfg.Auth.TokenTTL = parseDuration(getEnv("AUTH_TOKEN_TTL", "720h"), 30*24*time.Hour)
	cfg.Auth.BcryptCost = parseInt(getEnv("BCRYPT_COST", "10"), 10)
	cfg.Auth.SessionRegistry = getEnv("SESSION_REGISTRY_ENABLED", "true") == "true"

	cfg.Invite.TTL = parseDuration(getEnv("INVITE_TTL", "168h"), 7*24*time.Hour)
	cfg.Invite.BaseURL = strings.TrimRight(getEnv("INVITE_BASE_URL", "http://localhost:5173"), "/")
	cfg.Invite.Delivery = strings.ToLower(getEnv("INVITE_DELIVERY", "log"))
	cfg.Invite.WebhookURL = getEnv("INVITE_WEBHOOK_URL", "")
	cfg.Invite.Stream = getEnv("INVITE_STREAM", "society:invitations")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Conn.Broker = "tcp://localhost:1883"
	cfg.MQTT.Conn.ClientID = "society-data"
	cfg.MQTT.Conn.QoS = 1
	cfg.MQTT.Conn.LoadFromEnv("MQTT")
	cfg.MQTT.NoticeTopic = getEnv("MQTT_NOTICE_TOPIC", "society/notices")

	cfg.Upload.Dir = getEnv("UPLOAD_DIR", "uploads")
	cfg.Upload.BaseURL = strings.TrimRight(getEnv("UPLOAD_BASE_URL", "http://localhost:5000/uploads"), "/")
	cfg.Upload.MaxBytes = int64(parseInt(getEnv("UPLOAD_MAX_BYTES", "5242880"), 5<<20))

	cfg.RateLimit.Limit = parseInt(getEnv("RATE_LIMIT", "20"), 20)
	cfg.RateLimit.Window = parseDuration(getEnv("RATE_WINDOW", "1m"), time.Minute)

	cfg.Seed.AdminEmail = getEnv("SEED_ADMIN_EMAIL", "")
	cfg.Seed.AdminPassword = getEnv("SEED_ADMIN_PASSWORD", "ChangeMe123!")

	return cfg
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Invite.Delivery {
	case "log", "stream":
	case "webhook":
		if c.Invite.WebhookURL == "" {
			return errors.New("INVITE_WEBHOOK_URL is required when INVITE_DELIVERY=webhook")
		}
	default:
		return errors.New("INVITE_DELIVERY must be one of log, webhook, stream")
	}
	if c.Auth.TokenTTL <= 0 || c.Invite.TTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL and INVITE_TTL must be positive")
	}
	if _, err := ParseTrustedProxies(c.HTTP.TrustedProxies); err != nil {
		return err
	}
	return nil
}

// ParseTrustedProxies accepts bare addresses ("10.0.0.1") and CIDRs ("10.0.0.0/8").
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
