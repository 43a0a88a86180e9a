package dedup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apetrei/casa-scout/app/listing"
)

// RemoteChecker answers which of the given URLs the remote store
// already holds.
type RemoteChecker interface {
	ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
}

// Gate is the single decision point for new versus duplicate. It
// consults the local cache first and asks the remote store only about
// URLs the cache has never seen.
type Gate struct {
	cache  *Cache
	remote RemoteChecker
}

func NewGate(cache *Cache, remote RemoteChecker) *Gate {
	return &Gate{cache: cache, remote: remote}
}

// Partition splits listings into new and duplicate. Within-run
// repeats of the same URL keep their first occurrence and count the
// rest as duplicates.
func (g *Gate) Partition(ctx context.Context, listings []listing.Listing) (fresh []listing.Listing, duplicates int, err error) {
	seen := make(map[string]struct{}, len(listings))
	var unknown []string
	var candidates []listing.Listing
	cacheHits := 0

	for _, l := range listings {
		if _, ok := seen[l.URL]; ok {
			duplicates++
			continue
		}
		seen[l.URL] = struct{}{}

		if g.cache.Contains(l.URL) {
			duplicates++
			cacheHits++
			continue
		}
		candidates = append(candidates, l)
		unknown = append(unknown, l.URL)
	}

	if len(unknown) == 0 {
		slog.Debug("Dedup partition done", "total", len(listings), "cache_hits", cacheHits, "new", 0)
		return nil, duplicates, nil
	}

	existing, err := g.remote.ExistingURLs(ctx, unknown)
	if err != nil {
		return nil, duplicates, fmt.Errorf("failed to check remote store: %w", err)
	}

	for _, l := range candidates {
		if _, ok := existing[l.URL]; ok {
			duplicates++
			// Cache what the store already holds so the next run skips
			// the remote round trip for it.
			g.cache.Add(l.URL)
			continue
		}
		fresh = append(fresh, l)
	}

	slog.Debug("Dedup partition done",
		"total", len(listings),
		"cache_hits", cacheHits,
		"remote_hits", len(existing),
		"new", len(fresh))

	return fresh, duplicates, nil
}

// Commit records persisted URLs in the cache and saves it. Call only
// after the store accepted the listings.
func (g *Gate) Commit(persisted []listing.Listing) error {
	for _, l := range persisted {
		g.cache.Add(l.URL)
	}
	return g.cache.Save()
}
