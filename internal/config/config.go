package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete toolkit configuration. There is no ambient global
// state: the loaded Config is passed explicitly to adapter constructors.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" envconfig:"HTTP"`
	FRED      FREDConfig      `yaml:"fred" envconfig:"FRED"`
	WorldBank WorldBankConfig `yaml:"world_bank" envconfig:"WORLD_BANK"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// HTTPConfig holds transport settings shared by all adapters.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// FREDConfig configures the FRED adapter. The API key is required for any
// FRED call; get one at https://fred.stlouisfed.org/docs/api/api_key.html.
type FREDConfig struct {
	APIKey  string  `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL string  `yaml:"base_url" envconfig:"BASE_URL"`
	// RateLimit is the client-side request budget in requests per second.
	// FRED allows 120 requests per minute per key.
	RateLimit float64 `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Burst     int     `yaml:"burst" envconfig:"BURST"`
}

// WorldBankConfig configures the World Bank adapter. No key is required.
type WorldBankConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`
	// PerPage is the page size requested from the paginated indicator API.
	PerPage int `yaml:"per_page" envconfig:"PER_PAGE"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		FRED: FREDConfig{
			BaseURL:   "https://api.stlouisfed.org",
			RateLimit: 2,
			Burst:     4,
		},
		WorldBank: WorldBankConfig{
			BaseURL: "https://api.worldbank.org/v2",
			PerPage: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
	}
}

// Load builds the configuration in three layers: built-in defaults, an
// optional YAML file, then ECONDATA_* environment variables on top.
// An empty path skips the file layer; a named file that does not exist is an
// error so misconfigured paths are not silently ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("ECONDATA", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// validate checks cross-field constraints the type system cannot express.
func (c *Config) validate() error {
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if c.FRED.RateLimit <= 0 {
		return fmt.Errorf("fred rate limit must be positive, got %g", c.FRED.RateLimit)
	}
	if c.FRED.Burst <= 0 {
		return fmt.Errorf("fred burst must be positive, got %d", c.FRED.Burst)
	}
	// The World Bank API caps per_page at 32500.
	if c.WorldBank.PerPage <= 0 || c.WorldBank.PerPage > 32500 {
		return fmt.Errorf("world bank per_page must be in 1..32500, got %d", c.WorldBank.PerPage)
	}
	for name, raw := range map[string]string{
		"fred":       c.FRED.BaseURL,
		"world bank": c.WorldBank.BaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s base_url %q is not an absolute URL", name, raw)
		}
	}
	return nil
}
