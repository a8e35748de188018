package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigValid(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://www.mdmlingbakery.com/wp-content/uploads/rex-feed/feed-261114.xml"

settings:
  timeout: 20
  page_timeout: 10
  cache_ttl: 600
  workers: 4
  request_rps: 2.5

watchlist:
  triggers:
    - "Red Velvet Biscoff"
    - "Pineapple"
  exclusions:
    - "Pandan"

names:
  boilerplate:
    - " - Mdm Ling Bakery"
    - "[CNY 2026]"
  size_labels:
    - "Fun Size"
  display_base_name: true
`

	path := filepath.Join(tempDir, "audit.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if config.URL != "https://www.mdmlingbakery.com/wp-content/uploads/rex-feed/feed-261114.xml" {
		t.Errorf("Unexpected URL '%s'", config.URL)
	}
	if config.Settings.GetTimeout() != 20*time.Second {
		t.Errorf("Expected timeout 20s, got %v", config.Settings.GetTimeout())
	}
	if config.Settings.GetPageTimeout() != 10*time.Second {
		t.Errorf("Expected page timeout 10s, got %v", config.Settings.GetPageTimeout())
	}
	if config.Settings.GetCacheTTL() != 10*time.Minute {
		t.Errorf("Expected cache ttl 10m, got %v", config.Settings.GetCacheTTL())
	}
	if config.Settings.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", config.Settings.Workers)
	}
	if config.Settings.RequestRPS != 2.5 {
		t.Errorf("Expected request rps 2.5, got %v", config.Settings.RequestRPS)
	}
	if len(config.Watchlist.Triggers) != 2 || len(config.Watchlist.Exclusions) != 1 {
		t.Errorf("Unexpected watchlist: %+v", config.Watchlist)
	}
	if !config.Names.DisplayBaseName {
		t.Error("Expected display_base_name to be true")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	config, err := ParseConfig([]byte(`url: "https://example.com/feed.xml"`))
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.Timeout != 15 {
		t.Errorf("Expected default timeout 15, got %d", config.Settings.Timeout)
	}
	if config.Settings.PageTimeout != 12 {
		t.Errorf("Expected default page timeout 12, got %d", config.Settings.PageTimeout)
	}
	if config.Settings.GetCacheTTL() != 5*time.Minute {
		t.Errorf("Expected default cache ttl 5m, got %v", config.Settings.GetCacheTTL())
	}
	if config.Settings.Workers != 8 {
		t.Errorf("Expected default 8 workers, got %d", config.Settings.Workers)
	}
	if len(config.Names.VariantDelimiters) != 3 {
		t.Errorf("Expected 3 default delimiters, got %v", config.Names.VariantDelimiters)
	}
	if config.Names.OutOfStockToken != "out_of_stock" {
		t.Errorf("Expected default token 'out_of_stock', got '%s'", config.Names.OutOfStockToken)
	}
	if config.Names.DisplayBaseName {
		t.Error("Expected display_base_name to default to false")
	}
}

func TestParseConfigNegativeCacheTTLDisablesCache(t *testing.T) {
	config, err := ParseConfig([]byte("url: \"https://example.com/feed.xml\"\nsettings:\n  cache_ttl: -1\n"))
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.GetCacheTTL() != 0 {
		t.Errorf("Expected disabled cache, got %v", config.Settings.GetCacheTTL())
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing url", `settings: {timeout: 10}`, "feed URL is required"},
		{"negative workers", "url: x\nsettings:\n  workers: -2\n", "workers must be non-negative"},
		{"negative rps", "url: x\nsettings:\n  request_rps: -1\n", "request rps must be non-negative"},
		{"empty trigger", "url: x\nwatchlist:\n  triggers: [\"\"]\n", "watchlist trigger at index 0 is empty"},
		{"empty exclusion", "url: x\nwatchlist:\n  exclusions: [\"ok\", \"\"]\n", "watchlist exclusion at index 1 is empty"},
		{"bad yaml", "url: [", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing '%s', got: %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}
