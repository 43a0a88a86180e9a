package scraper

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/apetrei/casa-scout/app/listing"
)

const imobiliareBaseURL = "https://www.imobiliare.ro"

// Candidate selectors, most recent markup first. The first selector
// that yields any match wins, so a site redesign degrades to the next
// candidate instead of an empty run.
var (
	imobiliareCardSelectors = []string{
		"div.box-anunt",
		"div.anunt",
		`[data-testid="listing-card"]`,
		"article.property",
		".listing-item",
	}
	imobiliareTitleSelectors    = []string{".titlu-anunt", "h2", "h3", ".titlu", ".title"}
	imobiliarePriceSelectors    = []string{".pret", ".price", `[data-testid="price"]`}
	imobiliareLocationSelectors = []string{".locatie", ".location", `[data-testid="location"]`}
	imobiliareFeatureSelectors  = []string{".caracteristici", ".features"}
)

// ImobiliareExtractor scans the rendered markup of imobiliare.ro search
// pages. The site ships no structured data block, so each field is
// resolved through its own ordered candidate-selector list.
type ImobiliareExtractor struct{}

func NewImobiliareExtractor() *ImobiliareExtractor {
	return &ImobiliareExtractor{}
}

func (e *ImobiliareExtractor) Source() listing.Source {
	return listing.SourceImobiliare
}

func (e *ImobiliareExtractor) PageURL(page, maxPriceEUR int) string {
	return fmt.Sprintf("%s/vanzare-case-vile/bucuresti?pret-max=%d&pagina=%d",
		imobiliareBaseURL, maxPriceEUR, page)
}

func (e *ImobiliareExtractor) ExtractPage(page int, payload []byte) ([]RawItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var cards *goquery.Selection
	var matched string
	for _, selector := range imobiliareCardSelectors {
		found := doc.Find(selector)
		if found.Length() > 0 {
			cards = found
			matched = selector
			break
		}
	}
	if cards == nil {
		slog.Debug("No listing cards found on page", "source", e.Source(), "page", page)
		return nil, nil
	}

	var items []RawItem
	cards.Each(func(i int, card *goquery.Selection) {
		item, ok := e.parseCard(card, matched, page)
		if !ok {
			slog.Warn("Skipping card without listing link",
				"source", e.Source(), "page", page, "index", i,
				"title", firstText(card, imobiliareTitleSelectors))
			return
		}
		items = append(items, item)
	})

	return items, nil
}

func (e *ImobiliareExtractor) parseCard(card *goquery.Selection, selector string, page int) (RawItem, bool) {
	href, ok := card.Find(`a[href*="/vanzare"]`).First().Attr("href")
	if !ok || href == "" {
		return RawItem{}, false
	}

	url := href
	if !strings.HasPrefix(href, "http") {
		url = imobiliareBaseURL + href
	}

	item := RawItem{
		URL:          url,
		ExternalID:   externalIDFromPath(href),
		Title:        firstText(card, imobiliareTitleSelectors),
		PriceText:    firstText(card, imobiliarePriceSelectors),
		LocationText: firstText(card, imobiliareLocationSelectors),
		FeaturesText: firstText(card, imobiliareFeatureSelectors),
		RawContext:   map[string]any{"strategy": "structure-scan", "selector": selector, "page": page},
	}
	if item.Title == "" {
		item.Title = "N/A"
	}

	return item, true
}

// firstText resolves a field through its candidate selectors in order,
// returning the first non-empty text. A field missing under every
// candidate yields "" rather than failing the card.
func firstText(sel *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(sel.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// externalIDFromPath takes the last path segment as the source-native
// id, matching the site's /vanzare-.../<id> URL shape.
func externalIDFromPath(href string) string {
	trimmed := strings.TrimRight(strings.SplitN(href, "?", 2)[0], "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return ""
}
