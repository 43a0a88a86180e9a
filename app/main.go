package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/apetrei/casa-scout/app/cfg"
	"github.com/apetrei/casa-scout/app/dedup"
	"github.com/apetrei/casa-scout/app/filter"
	"github.com/apetrei/casa-scout/app/pipeline"
	"github.com/apetrei/casa-scout/app/scraper"
	"github.com/apetrei/casa-scout/app/store"
)

func main() {
	// A missing .env is fine, configuration falls back to the
	// environment and command-line flags.
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting casa-scout", "version", appCfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := scraper.LoadSession(appCfg.SessionFile)
	if err != nil {
		slog.Error("Failed to load session state", "error", err)
		os.Exit(1)
	}
	if session.NeedsRefresh(time.Duration(appCfg.SessionMaxAge) * time.Hour) {
		slog.Warn("Session state is stale or missing, imobiliare.ro may serve challenge pages",
			"file", appCfg.SessionFile, "max_age_hours", appCfg.SessionMaxAge)
	}

	rules, err := filter.LoadRules(appCfg.FiltersFile)
	if err != nil {
		slog.Error("Failed to load filter rules", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	pageDelay := time.Duration(appCfg.PageDelay) * time.Second

	// The DataDome session belongs to imobiliare.ro; storia gets no
	// cookies.
	fetchers := []pipeline.SourceFetcher{
		scraper.NewFetcher(scraper.NewImobiliareExtractor(), httpClient, session, appCfg.UserAgent,
			pageDelay, appCfg.MaxPages, appCfg.MaxListings, appCfg.MaxPriceEUR),
		scraper.NewFetcher(scraper.NewStoriaExtractor(), httpClient, nil, appCfg.UserAgent,
			pageDelay, appCfg.MaxPages, appCfg.MaxListings, appCfg.MaxPriceEUR),
	}

	storeClient := store.NewClient(appCfg.StoreURL, appCfg.StoreKey)
	cache := dedup.LoadCache(appCfg.CacheFile)
	gate := dedup.NewGate(cache, storeClient)

	run := pipeline.NewPipeline(fetchers, filter.NewFilterer(rules), gate, storeClient)
	stats, err := run.Run(ctx)
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Run summary",
		"fetched", stats.TotalFetched,
		"rejected", stats.Rejected,
		"filtered", stats.Filtered,
		"duplicates", stats.Duplicates,
		"new", stats.Inserted)
	for source, count := range stats.PerSource {
		slog.Info("Source summary", "source", source, "fetched", count)
	}
	for _, source := range stats.BlockedSources {
		slog.Warn("Source was blocked during the run", "source", source)
	}

	// Zero listings across every source means the run silently failed
	// somewhere (markup drift, blocking). Exit loudly so schedulers
	// notice.
	if stats.TotalFetched == 0 {
		slog.Error("No listings fetched from any source")
		os.Exit(1)
	}
}
