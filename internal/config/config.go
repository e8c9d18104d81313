package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; DATABASE_URL and JWT_SECRET are required, every
// other value has a default.
type Config struct {
	Env            string        // application environment (dev, test, prod)
	Port           string        // HTTP port to listen on
	DatabaseURL    string        // mysql://, postgres:// or sqlite: URL
	JWTSecret      string        // HMAC secret used to sign tokens
	JWTTTL         time.Duration // token lifetime; 0 disables the exp claim
	BcryptCost     int           // bcrypt cost for password hashing
	AuthHeader     string        // request header carrying the token
	CORSOrigins    []string      // allowed CORS origins
	MigrateOnStart bool          // apply pending migrations before serving

	Redis RedisConfig
	Cache CacheConfig
	Queue QueueConfig
}

// QueueConfig configures the RabbitMQ event publisher and the audit consumer.
// An empty URL disables both.
type QueueConfig struct {
	URL          string
	Name         string
	AuditLogPath string
}

// Load reads configuration values from environment variables. Missing
// required variables and unparsable values are collected and returned
// together so a misconfigured deployment reports everything at once.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "5000"),
		DatabaseURL:    required("DATABASE_URL", &errs),
		JWTSecret:      required("JWT_SECRET", &errs),
		JWTTTL:         envDuration("JWT_TTL", 24*time.Hour, &errs),
		BcryptCost:     envInt("BCRYPT_COST", 10, &errs),
		AuthHeader:     getenv("AUTH_HEADER", "auth-token"),
		CORSOrigins:    splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		MigrateOnStart: envBool("MIGRATE_ON_START", true, &errs),
		Redis:          loadRedisConfig(&errs),
		Cache:          loadCacheConfig(&errs),
		Queue: QueueConfig{
			// AMQP_URL is accepted for compatibility with older deployments
			URL:          getenv("RABBITMQ_URL", getenv("AMQP_URL", "")),
			Name:         getenv("EVENTS_QUEUE", "notes.events"),
			AuditLogPath: getenv("AUDIT_LOG_PATH", "logs/audit.log"),
		},
	}

	if cfg.JWTTTL < 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must not be negative: %s", cfg.JWTTTL))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
