package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Store (persistence collaborator) configuration
	StoreURL string `long:"store-url" env:"STORE_URL" default:"http://localhost:54321" description:"Base URL of the hosted listings store"`
	StoreKey string `long:"store-key" env:"STORE_KEY" description:"API key for the listings store (required)" required:"true"`

	// Scraping configuration
	MaxPages      int    `long:"max-pages" env:"MAX_PAGES" default:"3" description:"Maximum pages to fetch per source"`
	MaxListings   int    `long:"max-listings" env:"MAX_LISTINGS" default:"200" description:"Stop a source after collecting this many listings"`
	MaxPriceEUR   int    `long:"max-price" env:"MAX_PRICE_EUR" default:"200000" description:"Price ceiling passed to source search URLs (EUR)"`
	PageDelay     int    `long:"page-delay" env:"PAGE_DELAY" default:"2" description:"Mandatory delay between page fetches in seconds"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36" description:"User agent string for HTTP requests"`
	FiltersFile   string `long:"filters-file" env:"FILTERS_FILE" default:"./filters.yml" description:"YAML file with keyword filter rules"`
	CacheFile     string `long:"cache-file" env:"CACHE_FILE" default:"./url_cache.json" description:"Local URL cache file"`
	SessionFile   string `long:"session-file" env:"SESSION_FILE" default:"./imobiliare_state.json" description:"Browser session state file for imobiliare.ro"`
	SessionMaxAge int    `long:"session-max-age" env:"SESSION_MAX_AGE" default:"12" description:"Session state max age in hours before re-auth is required"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Bucharest)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		StoreURL:      raw.StoreURL,
		StoreKey:      raw.StoreKey,
		MaxPages:      raw.MaxPages,
		MaxListings:   raw.MaxListings,
		MaxPriceEUR:   raw.MaxPriceEUR,
		PageDelay:     raw.PageDelay,
		UserAgent:     raw.UserAgent,
		FiltersFile:   raw.FiltersFile,
		CacheFile:     raw.CacheFile,
		SessionFile:   raw.SessionFile,
		SessionMaxAge: raw.SessionMaxAge,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
