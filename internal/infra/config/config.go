package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/usergate/internal/domain/auth"
)

// Repository backends selectable through users.backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendValkey   = "valkey"
)

const minSecretLen = 32

// Config aggregates runtime configuration used across the service.
type Config struct {
	App   AppConfig   `yaml:"app"`
	HTTP  HTTPConfig  `yaml:"http"`
	Auth  AuthConfig  `yaml:"auth"`
	Users UsersConfig `yaml:"users"`
}

// AppConfig describes the deployment posture.
type AppConfig struct {
	Environment string `yaml:"environment"`
}

// IsDevelopment reports whether internal error details may be returned to callers.
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig holds the signing configuration and the admin credential.
type AuthConfig struct {
	Secret        string        `yaml:"secret"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	TokenTTL      time.Duration `yaml:"tokenTtl"`
	AdminUsername string        `yaml:"adminUsername"`
	AdminPassword string        `yaml:"adminPassword"`
}

// UsersConfig selects the repository backend and the collection policies.
type UsersConfig struct {
	Backend              string         `yaml:"backend"`
	Public               bool           `yaml:"public"`
	RejectDuplicateNames bool           `yaml:"rejectDuplicateNames"`
	Seed                 bool           `yaml:"seed"`
	Postgres             PostgresConfig `yaml:"postgres"`
	SQLite               SQLiteConfig   `yaml:"sqlite"`
	Valkey               ValkeyConfig   `yaml:"valkey"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SQLiteConfig points at the embedded database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ValkeyConfig contains connection information for the key-value backend.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Environment = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("AUTH_AUDIENCE"); v != "" {
		cfg.Auth.Audience = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_ADMIN_USERNAME"); v != "" {
		cfg.Auth.AdminUsername = v
	}
	if v := os.Getenv("AUTH_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("USERS_BACKEND"); v != "" {
		cfg.Users.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("USERS_PUBLIC"); v != "" {
		cfg.Users.Public = parseBool(v)
	}
	if v := os.Getenv("USERS_REJECT_DUPLICATE_NAMES"); v != "" {
		cfg.Users.RejectDuplicateNames = parseBool(v)
	}
	if v := os.Getenv("USERS_SEED"); v != "" {
		cfg.Users.Seed = parseBool(v)
	}
	if v := os.Getenv("USERS_POSTGRES_DSN"); v != "" {
		cfg.Users.Postgres.DSN = v
	}
	if v := os.Getenv("USERS_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Users.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("USERS_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Users.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("USERS_SQLITE_PATH"); v != "" {
		cfg.Users.SQLite.Path = v
	}
	if v := os.Getenv("USERS_VALKEY_ADDR"); v != "" {
		cfg.Users.Valkey.Addr = v
	}
	if v := os.Getenv("USERS_VALKEY_PREFIX"); v != "" {
		cfg.Users.Valkey.Prefix = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "production",
		},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 100 * time.Millisecond,
				Exclude: []string{
					"/login",
				},
			},
		},
		Auth: AuthConfig{
			Issuer:   "usergate",
			Audience: "usergate-clients",
			TokenTTL: auth.DefaultTokenTTL,
		},
		Users: UsersConfig{
			Backend: BackendMemory,
			Seed:    true,
			SQLite: SQLiteConfig{
				Path: "usergate.db",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Valkey: ValkeyConfig{
				Prefix: "usergate",
			},
		},
	}
}

// Validate ensures the configuration is safe to use. A missing or weak signing
// configuration is rejected here so the process never starts without one.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if len(c.Auth.Secret) < minSecretLen {
		return errors.New("auth.secret must be at least 32 bytes")
	}
	if strings.TrimSpace(c.Auth.Issuer) == "" {
		return errors.New("auth.issuer cannot be empty")
	}
	if strings.TrimSpace(c.Auth.Audience) == "" {
		return errors.New("auth.audience cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	switch c.Users.Backend {
	case BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(c.Users.Postgres.DSN) == "" {
			return errors.New("users.postgres.dsn cannot be empty when backend is postgres")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Users.SQLite.Path) == "" {
			return errors.New("users.sqlite.path cannot be empty when backend is sqlite")
		}
	case BackendValkey:
		if strings.TrimSpace(c.Users.Valkey.Addr) == "" {
			return errors.New("users.valkey.addr cannot be empty when backend is valkey")
		}
	default:
		return fmt.Errorf("users.backend %q is not supported", c.Users.Backend)
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
