package listing

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Source identifies which site a listing was scraped from.
type Source string

const (
	SourceImobiliare Source = "imobiliare.ro"
	SourceStoria     Source = "storia.ro"
)

// Listing is the canonical record every extractor output is normalized
// into. Records are immutable once built; every pipeline stage either
// produces a new value or rejects.
type Listing struct {
	Source     Source `json:"source"`
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
	Title      string `json:"title"`

	PriceRaw string `json:"price_raw"`
	PriceEUR *int   `json:"price_eur"`

	Location    string `json:"location"`
	SurfaceMP   *int   `json:"surface_mp"`
	Rooms       *int   `json:"rooms"`
	FeaturesRaw string `json:"features_raw"`

	MetroNearby bool      `json:"metro_nearby"`
	ScrapedAt   time.Time `json:"scraped_at"`

	// RawContext carries provenance (page number, selector used).
	// Downstream stages never interpret it.
	RawContext map[string]any `json:"raw_data"`
}

// URLHash returns the 12-character identity hash used when a source
// supplies no native id. The URL is the sole deduplication key, so the
// hash only ever derives from it.
func URLHash(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:12]
}

// ID returns the source-supplied external id, falling back to the URL hash.
func (l *Listing) ID() string {
	if l.ExternalID != "" {
		return l.ExternalID
	}
	return URLHash(l.URL)
}
