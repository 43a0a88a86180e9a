package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/apetrei/casa-scout/app/listing"
)

const storiaBaseURL = "https://www.storia.ro"

// storiaDataMarker delimits the embedded data island storia ships with
// every search page.
const storiaDataMarker = "__NEXT_DATA__"

// StoriaExtractor reads listings from the JSON data island embedded in
// storia.ro search pages. The island follows a published data contract,
// which makes this strategy far more drift-resistant than scanning the
// rendered markup.
type StoriaExtractor struct{}

func NewStoriaExtractor() *StoriaExtractor {
	return &StoriaExtractor{}
}

func (e *StoriaExtractor) Source() listing.Source {
	return listing.SourceStoria
}

func (e *StoriaExtractor) PageURL(page, maxPriceEUR int) string {
	return fmt.Sprintf("%s/ro/rezultate/vanzare/casa/bucuresti?limit=36&page=%d&priceMax=%d",
		storiaBaseURL, page, maxPriceEUR)
}

// nextData mirrors the fixed path through the island:
// props.pageProps.data.searchAds.items.
type nextData struct {
	Props struct {
		PageProps struct {
			Data struct {
				SearchAds struct {
					Items []json.RawMessage `json:"items"`
				} `json:"searchAds"`
			} `json:"data"`
		} `json:"pageProps"`
	} `json:"props"`
}

type storiaAd struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`

	TotalPrice *struct {
		Value    float64 `json:"value"`
		Currency string  `json:"currency"`
	} `json:"totalPrice"`

	Location *struct {
		Address struct {
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			Province struct {
				Name string `json:"name"`
			} `json:"province"`
		} `json:"address"`
	} `json:"location"`

	AreaInSquareMeters float64 `json:"areaInSquareMeters"`
	RoomsNumber        int     `json:"roomsNumber"`
}

func (e *StoriaExtractor) ExtractPage(page int, payload []byte) ([]RawItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	raw := doc.Find("script#" + storiaDataMarker).Text()
	if strings.TrimSpace(raw) == "" {
		slog.Debug("No data island found on page", "source", e.Source(), "page", page, "marker", storiaDataMarker)
		return nil, nil
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("Data island is not valid JSON, treating page as empty",
			"source", e.Source(), "page", page, "error", err)
		return nil, nil
	}

	entries := data.Props.PageProps.Data.SearchAds.Items
	items := make([]RawItem, 0, len(entries))
	for i, entry := range entries {
		// Entries are decoded one by one so a single malformed ad never
		// discards the rest of the page.
		var ad storiaAd
		if err := json.Unmarshal(entry, &ad); err != nil {
			slog.Warn("Skipping malformed listing entry",
				"source", e.Source(), "page", page, "index", i, "error", err)
			continue
		}
		if ad.Slug == "" {
			slog.Warn("Skipping entry without slug",
				"source", e.Source(), "page", page, "index", i, "title", ad.Title)
			continue
		}
		items = append(items, e.toRawItem(ad, page))
	}

	return items, nil
}

func (e *StoriaExtractor) toRawItem(ad storiaAd, page int) RawItem {
	item := RawItem{
		URL:        storiaBaseURL + "/ro/oferta/" + ad.Slug,
		Title:      strings.TrimSpace(ad.Title),
		RawContext: map[string]any{"strategy": "data-island", "marker": storiaDataMarker, "page": page},
	}
	if ad.ID != 0 {
		item.ExternalID = strconv.FormatInt(ad.ID, 10)
	}

	if ad.TotalPrice != nil {
		item.PriceText = strings.TrimSpace(fmt.Sprintf("%s %s",
			strconv.FormatFloat(ad.TotalPrice.Value, 'f', -1, 64), ad.TotalPrice.Currency))
	}

	if ad.Location != nil {
		parts := []string{}
		if city := ad.Location.Address.City.Name; city != "" {
			parts = append(parts, city)
		}
		if province := ad.Location.Address.Province.Name; province != "" {
			parts = append(parts, province)
		}
		item.LocationText = strings.Join(parts, ", ")
	}

	features := []string{}
	if ad.AreaInSquareMeters > 0 {
		features = append(features, fmt.Sprintf("%d mp", int(ad.AreaInSquareMeters)))
	}
	if ad.RoomsNumber > 0 {
		features = append(features, fmt.Sprintf("%d camere", ad.RoomsNumber))
	}
	item.FeaturesText = strings.Join(features, ", ")

	return item
}
