package filter

import (
	"fmt"
	"strings"

	"github.com/apetrei/casa-scout/app/listing"
)

// Result carries one listing's filter verdict.
type Result struct {
	Listing  listing.Listing
	Filtered bool
	Reason   string
}

// Filterer applies keyword rules to listings. Matching is
// case-insensitive and diacritic-folded, so "București" and
// "bucuresti" are the same keyword.
type Filterer struct {
	rules *Rules
}

func NewFilterer(rules *Rules) *Filterer {
	return &Filterer{rules: rules}
}

func (f *Filterer) Run(listings []listing.Listing) []Result {
	results := make([]Result, 0, len(listings))
	for _, l := range listings {
		filtered, reason := f.apply(l)
		results = append(results, Result{Listing: l, Filtered: filtered, Reason: reason})
	}
	return results
}

func (f *Filterer) apply(l listing.Listing) (bool, string) {
	for _, rule := range f.rules.Filters {
		value := fieldValue(l, rule.Field)

		for _, exclude := range rule.Excludes {
			if matches(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", rule.Field, exclude)
			}
		}

		if len(rule.Includes) > 0 {
			matched := false
			for _, include := range rule.Includes {
				if matches(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", rule.Field, rule.Includes)
			}
		}
	}

	return false, ""
}

func matches(value, keyword string) bool {
	return strings.Contains(listing.Fold(value), listing.Fold(keyword))
}

func fieldValue(l listing.Listing, field string) string {
	switch field {
	case "title":
		return l.Title
	case "location":
		return l.Location
	case "features":
		return l.FeaturesRaw
	case "url":
		return l.URL
	default:
		return ""
	}
}
