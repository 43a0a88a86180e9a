package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		StoreURL:      "https://project.supabase.co",
		StoreKey:      "test-key",
		MaxPages:      5,
		MaxListings:   100,
		MaxPriceEUR:   180000,
		PageDelay:     3,
		UserAgent:     "Test Agent",
		FiltersFile:   "./filters.yml",
		CacheFile:     "./url_cache.json",
		SessionFile:   "./state.json",
		SessionMaxAge: 12,
		Timezone:      "UTC",
		Debug:         true,
		Version:       "test-version",
	}

	if cfg.StoreURL != "https://project.supabase.co" {
		t.Errorf("Expected store URL 'https://project.supabase.co', got '%s'", cfg.StoreURL)
	}
	if cfg.StoreKey != "test-key" {
		t.Errorf("Expected store key 'test-key', got '%s'", cfg.StoreKey)
	}
	if cfg.MaxPages != 5 {
		t.Errorf("Expected max pages 5, got %d", cfg.MaxPages)
	}
	if cfg.MaxListings != 100 {
		t.Errorf("Expected max listings 100, got %d", cfg.MaxListings)
	}
	if cfg.MaxPriceEUR != 180000 {
		t.Errorf("Expected max price 180000, got %d", cfg.MaxPriceEUR)
	}
	if cfg.PageDelay != 3 {
		t.Errorf("Expected page delay 3, got %d", cfg.PageDelay)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.SessionMaxAge != 12 {
		t.Errorf("Expected session max age 12, got %d", cfg.SessionMaxAge)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}
