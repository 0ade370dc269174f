package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// devSessionSecret signs sessions when JWT_SECRET is unset in development.
const devSessionSecret = "insecure-development-session-secret"

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	OAuth         OAuthConfig
	Observability ObservabilityConfig
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"3000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:*"`
}

// DatabaseConfig holds storage configuration. An empty URL means storage is
// unavailable and the service runs in degraded mode.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	Driver          string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// AuthConfig holds session and identity settings
type AuthConfig struct {
	SessionSecret string `env:"JWT_SECRET"`
	OwnerOpenID   string `env:"OWNER_OPEN_ID"`
	DevMode       bool   `env:"DEV_MODE" envDefault:"false"`
}

// OAuthConfig describes the upstream identity provider
type OAuthConfig struct {
	ServerURL   string        `env:"OAUTH_SERVER_URL"`
	PortalURL   string        `env:"OAUTH_PORTAL_URL"`
	AppID       string        `env:"APP_ID"`
	PublicURL   string        `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`
	HTTPTimeout time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json or console
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if port, err := env.ParseAs[portEnv](); err == nil && port.Port > 0 {
		cfg.Server.Port = port.Port
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.OAuth.ServerURL = strings.TrimRight(cfg.OAuth.ServerURL, "/")
	cfg.OAuth.PublicURL = strings.TrimRight(cfg.OAuth.PublicURL, "/")

	if cfg.Auth.SessionSecret == "" && cfg.IsDevelopment() {
		cfg.Auth.SessionSecret = devSessionSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// portEnv picks up the conventional PORT variable, which wins over SERVER_PORT.
type portEnv struct {
	Port int `env:"PORT"`
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && c.Auth.DevMode {
		return fmt.Errorf("DEV_MODE cannot be enabled in production")
	}
	if !c.Auth.DevMode && c.OAuth.ServerURL == "" {
		return fmt.Errorf("OAUTH_SERVER_URL is required unless DEV_MODE is enabled")
	}
	if c.OAuth.ServerURL != "" {
		if _, err := url.ParseRequestURI(c.OAuth.ServerURL); err != nil {
			return fmt.Errorf("invalid OAUTH_SERVER_URL: %w", err)
		}
	}
	if c.OAuth.HTTPTimeout <= 0 {
		return fmt.Errorf("OAUTH_HTTP_TIMEOUT must be positive")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Observability.LogLevel)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Enabled reports whether a storage connection string is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// LogString returns a safe string for logging (no password).
func (c *DatabaseConfig) LogString() string {
	if c.URL == "" {
		return "driver=" + c.Driver + " url=<unset>"
	}
	if c.Driver == DriverSQLite {
		return "driver=sqlite path=" + c.URL
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return "driver=" + c.Driver + " host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("driver=%s host=%s database=%s", c.Driver, u.Host, strings.TrimPrefix(u.Path, "/"))
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoginCallbackURL is the absolute URL the provider redirects back to.
func (c *OAuthConfig) LoginCallbackURL() string {
	return c.PublicURL + "/api/oauth/callback"
}
