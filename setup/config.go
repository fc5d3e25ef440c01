package setup

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig selects the gorm driver and connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// Config is the service configuration, loaded from setup.yaml with
// environment overrides from .env / the process environment.
type Config struct {
	Port      int            `yaml:"port"`
	BaseURL   string         `yaml:"base_url"`
	Database  DatabaseConfig `yaml:"database"`
	JWTSecret string         `yaml:"jwt_secret"`

	// Registrations allowed per IP per minute.
	RegisterRatePerMinute int `yaml:"register_rate_per_minute"`
}

func defaults() Config {
	return Config{
		Port:    8089,
		BaseURL: "http://localhost:8089",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "agentbazaar.db",
		},
		RegisterRatePerMinute: 10,
	}
}

// LoadConfig reads setup.yaml (path overridable via BAZAAR_SETUP_PATH) and
// applies environment overrides. A missing setup.yaml is not an error; the
// defaults plus environment are enough to run.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("BAZAAR_SETUP_PATH")
	if path == "" {
		path = "setup.yaml"
	}
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv("BAZAAR_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("BAZAAR_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("BAZAAR_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("BAZAAR_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret not configured (set BAZAAR_JWT_SECRET or jwt_secret in setup.yaml)")
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return &cfg, nil
}
