package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig postgres connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// RedisConfig redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig broker connection settings
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// GetDSN returns the lib/pq keyword/value connection string. Values are
// single-quoted so passwords with spaces survive.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(c.Host), c.Port, quote(c.User), quote(c.Password), quote(c.Database), quote(c.SSLMode))
}

// Redacted is the DSN with the password masked, for logs.
func (c *DatabaseConfig) Redacted() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, "xxxxx"),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// LoadFromEnv overrides fields from PREFIX_HOST, PREFIX_PORT, PREFIX_USER,
// PREFIX_PASSWORD, PREFIX_NAME, PREFIX_SSLMODE, PREFIX_MAX_CONNS,
// PREFIX_MAX_IDLE and PREFIX_CONN_MAX_LIFETIME when set.
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	e := env(prefix)
	e.str("HOST", &c.Host)
	e.int("PORT", &c.Port)
	e.str("USER", &c.User)
	e.str("PASSWORD", &c.Password)
	e.str("NAME", &c.Database)
	e.str("SSLMODE", &c.SSLMode)
	e.int("MAX_CONNS", &c.MaxConns)
	e.int("MAX_IDLE", &c.MaxIdle)
	e.duration("CONN_MAX_LIFETIME", &c.ConnMaxLifetime)
}

func (c *RedisConfig) LoadFromEnv(prefix string) {
	e := env(prefix)
	e.str("ADDR", &c.Addr)
	e.str("PASSWORD", &c.Password)
	e.int("DB", &c.DB)
}

// LoadFromEnv reads PREFIX_QOS as well; values above 2 are ignored.
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	e := env(prefix)
	e.str("BROKER", &c.Broker)
	e.str("CLIENT_ID", &c.ClientID)
	e.str("USERNAME", &c.Username)
	e.str("PASSWORD", &c.Password)
	qos := int(c.QoS)
	e.int("QOS", &qos)
	if qos >= 0 && qos <= 2 {
		c.QoS = byte(qos)
	}
}

type env string

func (p env) lookup(key string) (string, bool) {
	v := os.Getenv(string(p) + "_" + key)
	return v, v != ""
}

func (p env) str(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

// unparsable values leave dst untouched
func (p env) int(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (p env) duration(key string, dst *time.Duration) {
	if v, ok := p.lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func quote(s string) string {
	return "'" + escape(s) + "'"
}

func escape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\'' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
