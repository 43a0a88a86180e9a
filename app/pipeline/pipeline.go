package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apetrei/casa-scout/app/dedup"
	"github.com/apetrei/casa-scout/app/filter"
	"github.com/apetrei/casa-scout/app/listing"
	"github.com/apetrei/casa-scout/app/scraper"
)

// SourceFetcher walks one site's result pages. Implemented by
// scraper.Fetcher; tests substitute their own.
type SourceFetcher interface {
	Source() listing.Source
	Run(ctx context.Context) ([]scraper.RawItem, error)
}

// Store is the persistence collaborator the pipeline writes through.
type Store interface {
	UpsertListings(ctx context.Context, listings []listing.Listing) ([]string, error)
	CreateEvent(ctx context.Context, eventType string, payload map[string]any) error
	CreateMission(ctx context.Context, missionType, status string, payload map[string]any) error
	LogAgentState(ctx context.Context, agent, state string, details map[string]any) error
}

// Stats summarizes one pipeline run.
type Stats struct {
	TotalFetched   int
	PerSource      map[listing.Source]int
	Rejected       int
	Filtered       int
	Duplicates     int
	Inserted       int
	BlockedSources []listing.Source
}

// Pipeline runs the full scrape: fetch each source, normalize and
// validate every item, apply keyword rules, gate against known URLs
// and persist what survives.
type Pipeline struct {
	fetchers []SourceFetcher
	filterer *filter.Filterer
	gate     *dedup.Gate
	store    Store
}

func NewPipeline(fetchers []SourceFetcher, filterer *filter.Filterer, gate *dedup.Gate, store Store) *Pipeline {
	return &Pipeline{
		fetchers: fetchers,
		filterer: filterer,
		gate:     gate,
		store:    store,
	}
}

func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{PerSource: make(map[listing.Source]int)}
	var collected []listing.Listing
	var runErr error

	for _, fetcher := range p.fetchers {
		items, blocked, err := p.runSource(ctx, fetcher)
		if blocked {
			stats.BlockedSources = append(stats.BlockedSources, fetcher.Source())
		}

		stats.TotalFetched += len(items)
		stats.PerSource[fetcher.Source()] = len(items)

		accepted := p.buildListings(fetcher.Source(), items, stats)
		collected = append(collected, accepted...)

		if err != nil {
			// Cancellation stops further fetching, but everything
			// collected so far still goes through the gate. There is
			// no all-or-nothing transaction across a run.
			slog.Warn("Run interrupted, flushing collected listings", "source", fetcher.Source(), "error", err)
			runErr = err
			break
		}
	}

	flushCtx := ctx
	if runErr != nil {
		flushCtx = context.WithoutCancel(ctx)
	}

	passed := p.applyFilters(collected, stats)

	fresh, duplicates, err := p.gate.Partition(flushCtx, passed)
	if err != nil {
		return stats, err
	}
	stats.Duplicates = duplicates

	if len(fresh) > 0 {
		ids, err := p.store.UpsertListings(flushCtx, fresh)
		if err != nil {
			return stats, fmt.Errorf("failed to persist listings: %w", err)
		}
		stats.Inserted = len(fresh)
		p.recordInsertion(flushCtx, fresh, ids)
	}

	// Commit even when nothing was inserted: Partition may have
	// learned URLs the remote store already holds, and caching them
	// saves the next run's existence check.
	if err := p.gate.Commit(fresh); err != nil {
		slog.Warn("Failed to save dedup cache", "error", err)
	}

	p.logAgentState(flushCtx, stats)

	slog.Info("Pipeline run completed",
		"fetched", stats.TotalFetched,
		"rejected", stats.Rejected,
		"filtered", stats.Filtered,
		"duplicates", stats.Duplicates,
		"new", stats.Inserted,
		"blocked_sources", len(stats.BlockedSources))

	return stats, runErr
}

// runSource contains one source's failure so the sibling source still
// runs. Only context cancellation stops the whole run.
func (p *Pipeline) runSource(ctx context.Context, fetcher SourceFetcher) (items []scraper.RawItem, blocked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Source panicked", "source", fetcher.Source(), "panic", r)
			items, blocked, err = nil, false, nil
		}
	}()

	items, runErr := fetcher.Run(ctx)
	if runErr != nil {
		if errors.Is(runErr, scraper.ErrBlocked) {
			return items, true, nil
		}
		if ctx.Err() != nil {
			return items, false, ctx.Err()
		}
		slog.Error("Source failed", "source", fetcher.Source(), "error", runErr)
		return items, false, nil
	}
	return items, false, nil
}

func (p *Pipeline) buildListings(source listing.Source, items []scraper.RawItem, stats *Stats) []listing.Listing {
	accepted := make([]listing.Listing, 0, len(items))
	for _, item := range items {
		l := buildListing(source, item)

		if ok, detail := listing.CheckPriceConsistency(&l); !ok {
			slog.Debug("Price consistency check failed", "source", source, "url", l.URL, "detail", detail)
		}

		if ok, reason := listing.Validate(&l); !ok {
			slog.Debug("Listing rejected", "source", source, "url", l.URL, "reason", reason)
			stats.Rejected++
			continue
		}
		slog.Debug("Listing accepted",
			"source", source, "id", l.ID(), "price", listing.FormatPrice(l.PriceEUR), "location", l.Location)
		accepted = append(accepted, l)
	}
	return accepted
}

func (p *Pipeline) applyFilters(listings []listing.Listing, stats *Stats) []listing.Listing {
	passed := make([]listing.Listing, 0, len(listings))
	for _, result := range p.filterer.Run(listings) {
		if result.Filtered {
			slog.Debug("Listing filtered", "url", result.Listing.URL, "reason", result.Reason)
			stats.Filtered++
			continue
		}
		passed = append(passed, result.Listing)
	}
	return passed
}

func buildListing(source listing.Source, item scraper.RawItem) listing.Listing {
	priceRaw, priceEUR := listing.NormalizePrice(item.PriceText)
	searchText := item.Title + " " + item.LocationText + " " + item.FeaturesText

	return listing.Listing{
		Source:      source,
		ExternalID:  item.ExternalID,
		URL:         item.URL,
		Title:       item.Title,
		PriceRaw:    priceRaw,
		PriceEUR:    priceEUR,
		Location:    item.LocationText,
		SurfaceMP:   listing.NormalizeSurface(item.FeaturesText),
		Rooms:       listing.NormalizeRooms(item.FeaturesText),
		FeaturesRaw: item.FeaturesText,
		MetroNearby: listing.HasMetroProximity(searchText),
		ScrapedAt:   time.Now().UTC(),
		RawContext:  item.RawContext,
	}
}

// recordInsertion leaves the downstream trail: an event for consumers
// and a pending analysis mission. Bookkeeping failures are logged, not
// fatal; the listings themselves are already persisted.
func (p *Pipeline) recordInsertion(ctx context.Context, fresh []listing.Listing, ids []string) {
	urls := make([]string, len(fresh))
	for i, l := range fresh {
		urls[i] = l.URL
	}

	eventPayload := map[string]any{"count": len(fresh), "urls": urls}
	if err := p.store.CreateEvent(ctx, "listings_scraped", eventPayload); err != nil {
		slog.Warn("Failed to create event", "error", err)
	}

	missionPayload := map[string]any{"listing_ids": ids, "listing_count": len(fresh)}
	if err := p.store.CreateMission(ctx, "analyze", "pending", missionPayload); err != nil {
		slog.Warn("Failed to create mission", "error", err)
	}
}

func (p *Pipeline) logAgentState(ctx context.Context, stats *Stats) {
	details := map[string]any{
		"fetched":    stats.TotalFetched,
		"rejected":   stats.Rejected,
		"filtered":   stats.Filtered,
		"duplicates": stats.Duplicates,
		"new":        stats.Inserted,
	}
	if err := p.store.LogAgentState(ctx, "scout", "completed", details); err != nil {
		slog.Warn("Failed to log agent state", "error", err)
	}
}
