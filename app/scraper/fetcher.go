package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/apetrei/casa-scout/app/listing"
)

const requestTimeout = 30 * time.Second

// Fetcher walks a source's result pages in order, extracting items
// from each, until a stop condition is reached.
type Fetcher struct {
	extractor   Extractor
	httpClient  *http.Client
	limiter     *rate.Limiter
	session     *Session
	userAgent   string
	maxPages    int
	maxListings int
	maxPriceEUR int
}

func NewFetcher(extractor Extractor, httpClient *http.Client, session *Session, userAgent string, pageDelay time.Duration, maxPages int, maxListings int, maxPriceEUR int) *Fetcher {
	return &Fetcher{
		extractor:   extractor,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Every(pageDelay), 1),
		session:     session,
		userAgent:   userAgent,
		maxPages:    maxPages,
		maxListings: maxListings,
		maxPriceEUR: maxPriceEUR,
	}
}

// Source reports which site this fetcher walks.
func (f *Fetcher) Source() listing.Source {
	return f.extractor.Source()
}

// Run fetches pages starting from page 1 and collects extracted items.
// It stops on the first empty page, when maxListings items have been
// collected, after maxPages pages, or when the source serves a
// bot-detection page. Items collected before a stop condition are
// always returned; ErrBlocked is the only error returned alongside a
// non-empty result.
func (f *Fetcher) Run(ctx context.Context) ([]RawItem, error) {
	source := f.extractor.Source()
	var collected []RawItem

	for page := 1; page <= f.maxPages; page++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return collected, err
		}

		url := f.extractor.PageURL(page, f.maxPriceEUR)
		payload, err := f.fetchPage(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return collected, ctx.Err()
			}
			if errors.Is(err, ErrBlocked) {
				slog.Warn("Bot detection triggered", "source", source, "page", page)
				return collected, ErrBlocked
			}
			slog.Warn("Page fetch failed, stopping source", "source", source, "page", page, "error", err)
			return collected, nil
		}

		if Blocked(payload) {
			slog.Warn("Bot detection triggered", "source", source, "page", page)
			return collected, ErrBlocked
		}

		items, err := f.extractor.ExtractPage(page, payload)
		if err != nil {
			slog.Warn("Page extraction failed, stopping source", "source", source, "page", page, "error", err)
			return collected, nil
		}

		if len(items) == 0 {
			slog.Debug("Empty result page, stopping source", "source", source, "page", page)
			return collected, nil
		}

		for _, item := range items {
			collected = append(collected, item)
			if len(collected) >= f.maxListings {
				slog.Info("Listing cap reached", "source", source, "page", page, "count", len(collected))
				return collected, nil
			}
		}

		slog.Debug("Page fetched", "source", source, "page", page, "items", len(items), "total", len(collected))
	}

	return collected, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ro-RO,ro;q=0.9,en;q=0.8")
	f.session.Apply(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrBlocked
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
