package dedup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

type cacheDocument struct {
	URLs []string `json:"urls"`
}

// Cache is the local record of listing URLs already persisted in
// earlier runs. It exists to keep repeat runs from re-checking the
// whole result set against the remote store.
type Cache struct {
	path string
	urls map[string]struct{}
}

// LoadCache reads the cache file. A missing or corrupt file degrades
// to an empty cache; correctness is preserved because every unknown
// URL still goes through the remote existence check.
func LoadCache(path string) *Cache {
	cache := &Cache{path: path, urls: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("No dedup cache found, starting empty", "path", path)
		return cache
	}
	if err != nil {
		slog.Warn("Failed to read dedup cache, starting empty", "path", path, "error", err)
		return cache
	}

	var doc cacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("Dedup cache is corrupt, starting empty", "path", path, "error", err)
		return cache
	}

	for _, url := range doc.URLs {
		cache.urls[url] = struct{}{}
	}
	slog.Debug("Dedup cache loaded", "path", path, "urls", len(cache.urls))
	return cache
}

// Contains reports whether a URL was seen in an earlier run.
func (c *Cache) Contains(url string) bool {
	_, ok := c.urls[url]
	return ok
}

// Add records URLs without persisting them. Save writes them out.
func (c *Cache) Add(urls ...string) {
	for _, url := range urls {
		c.urls[url] = struct{}{}
	}
}

func (c *Cache) Size() int {
	return len(c.urls)
}

// Save writes the full URL set sorted, through a temp file and an
// atomic rename so a crash mid-write never leaves a truncated cache.
func (c *Cache) Save() error {
	urls := make([]string, 0, len(c.urls))
	for url := range c.urls {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	data, err := json.MarshalIndent(cacheDocument{URLs: urls}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dedup cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".dedup-cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	slog.Debug("Dedup cache saved", "path", c.path, "urls", len(urls))
	return nil
}
