package feed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration types

type Config struct {
	URL       string          `yaml:"url"`
	Settings  ConfigSettings  `yaml:"settings"`
	Watchlist ConfigWatchlist `yaml:"watchlist"`
	Names     ConfigNames     `yaml:"names"`
}

type ConfigSettings struct {
	Timeout     int     `yaml:"timeout"`      // seconds, feed fetch
	PageTimeout int     `yaml:"page_timeout"` // seconds, product page fetch
	CacheTTL    int     `yaml:"cache_ttl"`    // seconds, negative disables the feed cache
	Workers     int     `yaml:"workers"`
	RequestRPS  float64 `yaml:"request_rps"` // product page requests per second, 0 = unlimited
}

type ConfigWatchlist struct {
	Triggers   []string `yaml:"triggers"`
	Exclusions []string `yaml:"exclusions"`
}

type ConfigNames struct {
	Boilerplate       []string `yaml:"boilerplate"`
	VariantDelimiters []string `yaml:"variant_delimiters"`
	SizeLabels        []string `yaml:"size_labels"`
	DisplayBaseName   bool     `yaml:"display_base_name"`
	OutOfStockToken   string   `yaml:"out_of_stock_token"`
}

func (s ConfigSettings) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s ConfigSettings) GetPageTimeout() time.Duration {
	return time.Duration(s.PageTimeout) * time.Second
}

func (s ConfigSettings) GetCacheTTL() time.Duration {
	if s.CacheTTL < 0 {
		return 0
	}
	return time.Duration(s.CacheTTL) * time.Second
}

// LoadConfig reads, defaults and validates the audit definition at path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(config *Config) {
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 15
	}
	if config.Settings.PageTimeout == 0 {
		config.Settings.PageTimeout = 12
	}
	if config.Settings.CacheTTL == 0 {
		config.Settings.CacheTTL = 300
	}
	if config.Settings.Workers == 0 {
		config.Settings.Workers = 8
	}
	if config.Names.VariantDelimiters == nil {
		config.Names.VariantDelimiters = []string{" - ", " | ", " ("}
	}
	if config.Names.OutOfStockToken == "" {
		config.Names.OutOfStockToken = "out_of_stock"
	}
}

func validateConfig(config *Config) error {
	if config.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	nonNegativeFields := map[string]int{
		"timeout":      config.Settings.Timeout,
		"page timeout": config.Settings.PageTimeout,
		"workers":      config.Settings.Workers,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if config.Settings.RequestRPS < 0 {
		return fmt.Errorf("request rps must be non-negative")
	}

	for i, trigger := range config.Watchlist.Triggers {
		if trigger == "" {
			return fmt.Errorf("watchlist trigger at index %d is empty", i)
		}
	}
	for i, exclusion := range config.Watchlist.Exclusions {
		if exclusion == "" {
			return fmt.Errorf("watchlist exclusion at index %d is empty", i)
		}
	}
	for i, delimiter := range config.Names.VariantDelimiters {
		if delimiter == "" {
			return fmt.Errorf("variant delimiter at index %d is empty", i)
		}
	}

	return nil
}
