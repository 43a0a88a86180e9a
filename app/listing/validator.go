package listing

import (
	"fmt"
	"strings"
)

// Price sanity bounds in EUR. A listing priced exactly at a bound is
// accepted; one unit outside is rejected.
const (
	MinPriceEUR = 10000
	MaxPriceEUR = 1000000
)

// testDomains guards against fixture data leaking into production.
var testDomains = []string{"test.com", "example.com", "localhost"}

// allowedSources are the only domains records may originate from.
var allowedSources = []string{string(SourceImobiliare), string(SourceStoria)}

// genericLocations are city-only sentinels that carry no usable area
// information.
var genericLocations = []string{"", "n/a", "bucuresti"}

// Validate applies the rejection rules in order and reports the first
// failure. It is pure and total: every input maps to a definite
// accept/reject plus a human-readable reason.
func Validate(l *Listing) (bool, string) {
	if l.URL == "" {
		return false, "URL is empty"
	}

	for _, td := range testDomains {
		if strings.Contains(l.URL, td) {
			return false, fmt.Sprintf("test URL rejected: %s", l.URL)
		}
	}

	fromAllowed := false
	for _, src := range allowedSources {
		if strings.Contains(l.URL, src) {
			fromAllowed = true
			break
		}
	}
	if !fromAllowed {
		return false, fmt.Sprintf("URL not from allowed source: %s", l.URL)
	}

	if l.PriceEUR == nil {
		return false, "price is missing"
	}
	if *l.PriceEUR < MinPriceEUR {
		return false, fmt.Sprintf("price too low: %d EUR", *l.PriceEUR)
	}
	if *l.PriceEUR > MaxPriceEUR {
		return false, fmt.Sprintf("price too high: %d EUR", *l.PriceEUR)
	}

	location := Fold(strings.TrimSpace(l.Location))
	for _, generic := range genericLocations {
		if location == generic {
			return false, fmt.Sprintf("location missing or too generic: %q", l.Location)
		}
	}

	return true, "OK"
}
