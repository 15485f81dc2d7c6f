// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type SessionConfig struct {
	TokenFile string `yaml:"token_file"`
	Token     string `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name        string        `yaml:"name"`
		Environment string        `yaml:"environment"`
		Port        int           `yaml:"port"`
		TokenTTL    time.Duration `yaml:"token_ttl"`
		TrustProxy  bool          `yaml:"trust_proxy"`
		SecretKey   string        `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	API APIConfig `yaml:"api"`

	Session SessionConfig `yaml:"session"`

	Database DatabaseConfig `yaml:"database"`

	Housekeeping struct {
		PurgeCron     string `yaml:"purge_cron"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"housekeeping"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.App.Name = "quadras"
	cfg.App.Environment = "development"
	cfg.App.Port = 3000
	cfg.App.TokenTTL = 8 * time.Hour
	cfg.API.BaseURL = "http://localhost:3000"
	cfg.API.Timeout = 10 * time.Second
	cfg.API.RequestsPerSecond = 10
	cfg.API.Burst = 5
	cfg.Database.Driver = "sqlite"
	cfg.Database.Filename = "data/quadras.db"
	cfg.Housekeeping.PurgeCron = "0 3 * * *"
	cfg.Housekeeping.RetentionDays = 90
	return &cfg
}

// Load loads both .env and yaml configuration. A missing yaml file leaves
// the defaults in place.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Session.Token = os.Getenv("QUADRAS_TOKEN")
	if baseURL := os.Getenv("QUADRAS_API_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app port must be between 1 and 65535")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("api base_url must be an http(s) URL")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api requests_per_second cannot be negative")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Housekeeping.RetentionDays < 0 {
		return fmt.Errorf("housekeeping retention_days cannot be negative")
	}

	return nil
}

// ValidateServer checks what only the sandbox server needs.
func (c *Config) ValidateServer() error {
	if len(c.App.SecretKey) < 16 {
		return fmt.Errorf("APP_SECRET_KEY must be at least 16 characters")
	}
	if c.App.TokenTTL <= 0 {
		return fmt.Errorf("app token_ttl must be positive")
	}
	return nil
}
