package config

import (
	"strings"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Database DatabaseConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Auth     AuthConfig
}

type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	CORSAllowOrigins  []string      `env:"HTTP_CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" env-default:"postgres"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE" env-default:"tasks"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" env-default:"10"`
	Migrate        bool          `env:"POSTGRES_MIGRATE" env-default:"true"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" env-default:"tasks.db"`
}

type AuthConfig struct {
	TokenIssuer     string `env:"AUTH_TOKEN_ISSUER" env-default:"task-manager-api"`
	TokenSigningKey string `env:"AUTH_TOKEN_SIGNING_KEY" env-required:"true"`
	// Zero means issued tokens only end through logout or a new login.
	TokenTTL       time.Duration `env:"AUTH_TOKEN_TTL" env-default:"0s"`
	RateLimitRPS   float64       `env:"AUTH_RATE_LIMIT_RPS" env-default:"1"`
	RateLimitBurst int           `env:"AUTH_RATE_LIMIT_BURST" env-default:"5"`
}

// Validate checks the values cleanenv cannot express with tags.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return &InvalidValueError{Key: "ENV", Value: c.Env}
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return &InvalidValueError{Key: "DB_DRIVER", Value: c.Database.Driver}
	}

	if strings.TrimSpace(c.Auth.TokenSigningKey) == "" {
		return &InvalidValueError{Key: "AUTH_TOKEN_SIGNING_KEY", Value: c.Auth.TokenSigningKey}
	}
	if c.Auth.TokenTTL < 0 {
		return &InvalidValueError{Key: "AUTH_TOKEN_TTL", Value: c.Auth.TokenTTL.String()}
	}
	return nil
}

type InvalidValueError struct {
	Key   string
	Value string
}

func (e *InvalidValueError) Error() string {
	return "invalid value for " + e.Key + ": " + e.Value
}
