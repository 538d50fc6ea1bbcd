// Package config loads and validates application configuration.
//
// Values are layered: built-in defaults, then the YAML file named by
// GALLERY_CONFIG (if any), then environment variables. A .env file in the
// working directory is loaded into the environment first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/case-gallery/internal/domain"
)

// Config holds all configuration values for the gallery server and CLI.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `yaml:"database_url"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CORSOrigins is the list of origins allowed to call /api.
	CORSOrigins []string `yaml:"cors_origins"`

	// Base is the virtual address segment. Defaults to "gallery".
	Base string `yaml:"base"`

	// Mode selects native or virtual addressing. Defaults to virtual.
	Mode domain.Mode `yaml:"mode"`

	// ThemeDir and ParentThemeDir are optional template override roots,
	// searched in that order before the bundled templates.
	ThemeDir       string `yaml:"theme_dir"`
	ParentThemeDir string `yaml:"parent_theme_dir"`

	// RedisURL selects the shared Redis cache. Empty means in-process cache.
	RedisURL string `yaml:"redis_url"`

	// CacheTTL is the lifetime of cached query results. Defaults to 1h.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool `yaml:"migrate_on_start"`

	// AdminToken is the bearer token for POST /api/cache/clear. Empty
	// leaves that route unmounted.
	AdminToken string `yaml:"admin_token"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port:        "8080",
		LogLevel:    "info",
		CORSOrigins: []string{"http://localhost:5173"},
		Base:        "gallery",
		Mode:        domain.ModeVirtual,
		CacheTTL:    time.Hour,
	}
}

// Load reads .env, the optional YAML overlay and the environment, and returns
// the validated Config. The error lists every invalid or missing key.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("GALLERY_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	var problems []string

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	cfg.Base = strings.Trim(getEnv("GALLERY_BASE", cfg.Base), "/")
	cfg.ThemeDir = getEnv("THEME_DIR", cfg.ThemeDir)
	cfg.ParentThemeDir = getEnv("PARENT_THEME_DIR", cfg.ParentThemeDir)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.AdminToken = getEnv("ADMIN_TOKEN", cfg.AdminToken)

	mode, err := domain.ParseMode(getEnv("GALLERY_MODE", string(cfg.Mode)))
	if err != nil {
		problems = append(problems, "GALLERY_MODE: "+err.Error())
	}
	cfg.Mode = mode

	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			problems = append(problems, fmt.Sprintf("CACHE_TTL: invalid duration %q", v))
		} else {
			cfg.CacheTTL = ttl
		}
	}
	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("MIGRATE_ON_START: invalid boolean %q", v))
		}
		cfg.MigrateOnStart = b
	}

	if cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL: required")
	}
	if cfg.Base == "" {
		problems = append(problems, "GALLERY_BASE: must not be empty")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL: unknown level %q", cfg.LogLevel))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// loadFile overlays the YAML document at path onto cfg.
func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config.Load: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config.Load: parse %s: %w", path, err)
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
