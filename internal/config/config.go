package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Journal JournalConfig `yaml:"journal"`
	Scan    ScanConfig    `yaml:"scan"`
}

// ServerConfig holds the forecast API settings
type ServerConfig struct {
	Port       int           `yaml:"port"`
	AuthSecret string        `yaml:"auth_secret"` // empty disables auth
	TokenTTL   time.Duration `yaml:"token_ttl"`
	RateLimit  int           `yaml:"rate_limit"` // requests per minute per client
}

// JournalConfig holds the forecast journal settings
type JournalConfig struct {
	Path string `yaml:"path"` // empty disables the journal
}

// ScanConfig holds batch scan settings
type ScanConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       8087,
			AuthSecret: os.Getenv("DAYBIAS_AUTH_SECRET"),
			TokenTTL:   24 * time.Hour,
			RateLimit:  60,
		},
		Journal: JournalConfig{
			Path: os.Getenv("DAYBIAS_JOURNAL"),
		},
		Scan: ScanConfig{
			Workers: 8,
			Timeout: 30 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	// Pick up a local .env first so defaults can see the variables
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if secret := os.Getenv("DAYBIAS_AUTH_SECRET"); secret != "" {
		cfg.Server.AuthSecret = secret
	}
	if journal := os.Getenv("DAYBIAS_JOURNAL"); journal != "" {
		cfg.Journal.Path = journal
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("rate_limit must be at least 1")
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}
