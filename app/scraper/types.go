package scraper

import (
	"errors"

	"github.com/apetrei/casa-scout/app/listing"
)

// RawItem is one listing's field set as extracted from a page, before
// normalization. Missing fields stay empty; the record model decides
// what is acceptable.
type RawItem struct {
	URL          string
	ExternalID   string
	Title        string
	PriceText    string
	LocationText string
	FeaturesText string

	// RawContext records provenance (strategy, selector, page number).
	RawContext map[string]any
}

// Extractor turns one source's raw page payload into raw field sets.
// Extractors never fail on "no data found"; an empty result is the
// pagination terminal. Only transport-level failures surface as errors,
// and those belong to the Fetcher, not here.
type Extractor interface {
	Source() listing.Source
	PageURL(page, maxPriceEUR int) string
	ExtractPage(page int, payload []byte) ([]RawItem, error)
}

// ErrBlocked signals a bot-detection or authentication-required
// response. It is terminal for the source within a run and requires an
// out-of-band session refresh.
var ErrBlocked = errors.New("blocked by anti-bot protection")
