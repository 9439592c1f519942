// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type EmailConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	Sender  string `yaml:"sender"`
	// Loaded from environment
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type PhotosConfig struct {
	// Backend is "local" or "s3".
	Backend string `yaml:"backend"`
	// Local backend
	Directory string `yaml:"directory"`
	BaseURL   string `yaml:"base_url"`
	// S3 backend
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

type RemindersConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		// TrustProxy controls whether client IPs are taken from
		// X-Forwarded-For. Enable only behind a trusted reverse proxy.
		TrustProxy bool `yaml:"trust_proxy"`
		// AdminKeyHash is a bcrypt hash of the admin key, loaded from the
		// ADMIN_KEY_HASH environment variable.
		AdminKeyHash string `yaml:"-"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Photos    PhotosConfig    `yaml:"photos"`
	Reminders RemindersConfig `yaml:"reminders"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.App.AdminKeyHash = os.Getenv("ADMIN_KEY_HASH")
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required for sqlite")
	}

	if c.Email.Enabled {
		if c.Email.Region == "" {
			return fmt.Errorf("email region is required when email is enabled")
		}
		if c.Email.Sender == "" {
			return fmt.Errorf("email sender is required when email is enabled")
		}
	}

	switch c.Photos.Backend {
	case "", "local":
		if c.Photos.Directory == "" {
			c.Photos.Directory = "data/photos"
		}
	case "s3":
		if c.Photos.Bucket == "" {
			return fmt.Errorf("photos bucket is required for the s3 backend")
		}
		if c.Photos.Region == "" {
			return fmt.Errorf("photos region is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported photos backend: %s", c.Photos.Backend)
	}

	if c.Reminders.Enabled && c.Reminders.Cron == "" {
		c.Reminders.Cron = "0 18 * * *"
	}

	return nil
}
