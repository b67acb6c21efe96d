package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig
	Log      LogConfig
	Registry RegistryConfig
}

type AppConfig struct {
	Name string `validate:"required"`
	Env  string `validate:"oneof=local production testing"`
	Port uint   `validate:"port"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=text json"`
}

type RegistryConfig struct {
	FactoryPrefix string `validate:"required,printascii"`
	StrictTypes   bool
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name: env("APP_NAME", "GoRegistry"),
			Env:  env("APP_ENV", "local"),
			Port: envPort("APP_PORT", 8000),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "text"),
		},
		Registry: RegistryConfig{
			FactoryPrefix: env("REGISTRY_FACTORY_PREFIX", "&"),
			StrictTypes:   envBool("REGISTRY_STRICT_TYPES", false),
		},
	}
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envPort parses a port number. Anything that is not an unsigned integer
// becomes 0, which Validate rejects.
func envPort(key string, fallback uint) uint {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	p, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0
	}
	return uint(p)
}
