package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// Defaults applied when the file leaves a field empty.
const (
	DefaultPageSize       = 9
	DefaultReviewPageSize = 10
	DefaultOrderPageSize  = 5
	DefaultRentalPageSize = 9
	DefaultTimeout        = 10 * time.Second
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	BaseURL        string `yaml:"baseURL"`
	LogLevel       string `yaml:"logLevel"`
	PageSize       int    `yaml:"pageSize"`
	ReviewPageSize int    `yaml:"reviewPageSize"`
	OrderPageSize  int    `yaml:"orderPageSize"`
	RentalPageSize int    `yaml:"rentalPageSize"`
	RequestTimeout string `yaml:"requestTimeout"`
}

// Load reads config from path (defaults to config.yaml) and applies
// STOREFRONT_* environment overrides on top.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if cfg.BaseURL == "" {
		return cfg, fmt.Errorf("config: baseURL is required")
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("STOREFRONT_BASE_URL"); v != "" {
		cfg.BaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("STOREFRONT_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = strings.TrimSpace(v)
	}
}

func applyDefaults(cfg *FileConfig) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.ReviewPageSize <= 0 {
		cfg.ReviewPageSize = DefaultReviewPageSize
	}
	if cfg.OrderPageSize <= 0 {
		cfg.OrderPageSize = DefaultOrderPageSize
	}
	if cfg.RentalPageSize <= 0 {
		cfg.RentalPageSize = DefaultRentalPageSize
	}
}

// ParseRequestTimeout converts the configured timeout to a duration,
// falling back to the default when unset.
func ParseRequestTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse requestTimeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("requestTimeout must be positive, got %s", d)
	}
	return d, nil
}
