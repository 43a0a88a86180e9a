package scraper

import (
	"strings"
	"testing"

	"github.com/apetrei/casa-scout/app/listing"
)

func storiaPage(islandJSON string) []byte {
	return []byte(`<!DOCTYPE html>
<html>
<head><title>Case de vanzare Bucuresti</title></head>
<body>
<div id="__next">rendered content</div>
<script id="__NEXT_DATA__" type="application/json">` + islandJSON + `</script>
</body>
</html>`)
}

func TestStoriaExtractPage(t *testing.T) {
	island := `{
  "props": {
    "pageProps": {
      "data": {
        "searchAds": {
          "items": [
            {
              "id": 65432101,
              "title": "Casa 4 camere Pipera",
              "slug": "casa-4-camere-pipera-ID65432101",
              "totalPrice": {"value": 285000, "currency": "EUR"},
              "location": {"address": {"city": {"name": "Bucuresti"}, "province": {"name": "Ilfov"}}},
              "areaInSquareMeters": 180.5,
              "roomsNumber": 4
            },
            {
              "id": 65432102,
              "title": "Vila Baneasa",
              "slug": "vila-baneasa-ID65432102",
              "totalPrice": {"value": 1417500, "currency": "RON"},
              "areaInSquareMeters": 0,
              "roomsNumber": 0
            }
          ]
        }
      }
    }
  }
}`

	extractor := NewStoriaExtractor()
	items, err := extractor.ExtractPage(1, storiaPage(island))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	first := items[0]
	if first.URL != "https://www.storia.ro/ro/oferta/casa-4-camere-pipera-ID65432101" {
		t.Errorf("Expected slug-based URL, got: %s", first.URL)
	}
	if first.ExternalID != "65432101" {
		t.Errorf("Expected external id '65432101', got: %s", first.ExternalID)
	}
	if first.Title != "Casa 4 camere Pipera" {
		t.Errorf("Expected title 'Casa 4 camere Pipera', got: %s", first.Title)
	}
	if first.PriceText != "285000 EUR" {
		t.Errorf("Expected price text '285000 EUR', got: %s", first.PriceText)
	}
	if first.LocationText != "Bucuresti, Ilfov" {
		t.Errorf("Expected location 'Bucuresti, Ilfov', got: %s", first.LocationText)
	}
	if first.FeaturesText != "180 mp, 4 camere" {
		t.Errorf("Expected features '180 mp, 4 camere', got: %s", first.FeaturesText)
	}
	if first.RawContext["strategy"] != "data-island" {
		t.Errorf("Expected data-island strategy, got: %v", first.RawContext["strategy"])
	}
	if first.RawContext["page"] != 1 {
		t.Errorf("Expected page 1 in provenance, got: %v", first.RawContext["page"])
	}

	second := items[1]
	if second.PriceText != "1417500 RON" {
		t.Errorf("Expected price text '1417500 RON', got: %s", second.PriceText)
	}
	if second.LocationText != "" {
		t.Errorf("Expected empty location for ad without address, got: %s", second.LocationText)
	}
	if second.FeaturesText != "" {
		t.Errorf("Expected empty features for zero-valued ad, got: %s", second.FeaturesText)
	}
}

func TestStoriaExtractPageSkipsMalformedEntries(t *testing.T) {
	island := `{
  "props": {
    "pageProps": {
      "data": {
        "searchAds": {
          "items": [
            {"id": "not-a-number", "slug": "broken"},
            {"id": 100, "title": "Valid", "slug": "valid-ID100"},
            {"id": 101, "title": "No slug"}
          ]
        }
      }
    }
  }
}`

	extractor := NewStoriaExtractor()
	items, err := extractor.ExtractPage(1, storiaPage(island))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item after skipping malformed entries, got: %d", len(items))
	}
	if items[0].ExternalID != "100" {
		t.Errorf("Expected the valid entry to survive, got id: %s", items[0].ExternalID)
	}
}

func TestStoriaExtractPageMissingIsland(t *testing.T) {
	page := []byte(`<html><body><div id="__next">nothing embedded</div></body></html>`)

	extractor := NewStoriaExtractor()
	items, err := extractor.ExtractPage(1, page)

	if err != nil {
		t.Fatalf("Expected no error for missing data island, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected 0 items for missing data island, got: %d", len(items))
	}
}

func TestStoriaExtractPageInvalidIsland(t *testing.T) {
	items, err := NewStoriaExtractor().ExtractPage(1, storiaPage(`{"props": broken`))

	if err != nil {
		t.Fatalf("Expected no error for invalid island JSON, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected 0 items for invalid island JSON, got: %d", len(items))
	}
}

func TestStoriaPageURL(t *testing.T) {
	url := NewStoriaExtractor().PageURL(3, 350000)

	if !strings.Contains(url, "page=3") {
		t.Errorf("Expected page parameter in URL, got: %s", url)
	}
	if !strings.Contains(url, "priceMax=350000") {
		t.Errorf("Expected price cap parameter in URL, got: %s", url)
	}
	if !strings.HasPrefix(url, "https://www.storia.ro/") {
		t.Errorf("Expected storia base URL, got: %s", url)
	}
}

func TestStoriaSource(t *testing.T) {
	if got := NewStoriaExtractor().Source(); got != listing.SourceStoria {
		t.Errorf("Expected source %s, got: %s", listing.SourceStoria, got)
	}
}
