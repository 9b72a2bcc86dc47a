package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ehr/intake/internal/normalize"
)

// Store and upload backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	UploadLocal = "local"
	UploadHTTP  = "http"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	Store              string        `mapstructure:"STORE"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir      string        `mapstructure:"MIGRATIONS_DIR"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	CacheTTL           time.Duration `mapstructure:"CACHE_TTL"`
	AuthJWTSecret      string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer         string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience       string        `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit          string        `mapstructure:"BODY_LIMIT"`
	UploadBackend      string        `mapstructure:"UPLOAD_BACKEND"`
	UploadDir          string        `mapstructure:"UPLOAD_DIR"`
	UploadBaseURL      string        `mapstructure:"UPLOAD_BASE_URL"`
	UploadMaxBytes     int64         `mapstructure:"UPLOAD_MAX_BYTES"`
	DefaultCountryCode string        `mapstructure:"DEFAULT_COUNTRY_CODE"`
	DateInputFormat    string        `mapstructure:"DATE_INPUT_FORMAT"`
}

var keys = []string{
	"PORT", "ENV", "STORE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"MIGRATIONS_DIR", "REDIS_URL", "CACHE_TTL", "AUTH_JWT_SECRET", "AUTH_ISSUER",
	"AUTH_AUDIENCE", "CORS_ORIGINS", "BODY_LIMIT", "UPLOAD_BACKEND", "UPLOAD_DIR",
	"UPLOAD_BASE_URL", "UPLOAD_MAX_BYTES", "DEFAULT_COUNTRY_CODE", "DATE_INPUT_FORMAT",
}

// Load reads the environment and an optional .env file. It does not
// validate; call Validate before serving.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BODY_LIMIT", "2M")
	v.SetDefault("UPLOAD_BACKEND", UploadLocal)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("DEFAULT_COUNTRY_CODE", normalize.DefaultCountryCode)
	v.SetDefault("DATE_INPUT_FORMAT", string(normalize.DMY))

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// NormalizeOptions returns the deployment defaults the section handlers
// normalize input with. Call after Validate.
func (c *Config) NormalizeOptions() normalize.Options {
	opts := normalize.DefaultOptions()
	if f, err := normalize.ParseDateFormat(c.DateInputFormat); err == nil {
		opts.AmbiguousDate = f
	}
	if c.DefaultCountryCode != "" {
		opts.CountryCode = c.DefaultCountryCode
	}
	return opts
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	switch c.UploadBackend {
	case UploadLocal:
	case UploadHTTP:
		if c.UploadBaseURL == "" {
			return fmt.Errorf("UPLOAD_BASE_URL is required when UPLOAD_BACKEND=%s", UploadHTTP)
		}
	default:
		return fmt.Errorf("UPLOAD_BACKEND must be %q or %q, got %q", UploadLocal, UploadHTTP, c.UploadBackend)
	}

	if c.IsProduction() && c.AuthJWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required in production")
	}

	f, err := normalize.ParseDateFormat(c.DateInputFormat)
	if err != nil || f == normalize.ISO {
		return fmt.Errorf("DATE_INPUT_FORMAT must be %q or %q, got %q", normalize.DMY, normalize.MDY, c.DateInputFormat)
	}

	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
