package listing

import (
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func validListing() *Listing {
	return &Listing{
		Source:   SourceStoria,
		URL:      "https://www.storia.ro/ro/oferta/casa-berceni-ID123",
		Title:    "Casa 4 camere Berceni",
		PriceEUR: intPtr(150000),
		Location: "Berceni, Sector 4",
	}
}

func TestValidateAccept(t *testing.T) {
	ok, reason := Validate(validListing())
	if !ok {
		t.Errorf("Expected valid listing to be accepted, got reason: %s", reason)
	}
	if reason != "OK" {
		t.Errorf("Expected reason 'OK', got: %s", reason)
	}
}

func TestValidateEmptyURL(t *testing.T) {
	l := validListing()
	l.URL = ""

	ok, reason := Validate(l)
	if ok {
		t.Error("Expected empty URL to be rejected")
	}
	if reason != "URL is empty" {
		t.Errorf("Expected 'URL is empty', got: %s", reason)
	}
}

func TestValidateTestDomains(t *testing.T) {
	for _, url := range []string{
		"https://test.com/casa-1",
		"https://example.com/listing",
		"http://localhost:8080/fixture",
	} {
		l := validListing()
		l.URL = url

		ok, reason := Validate(l)
		if ok {
			t.Errorf("Expected test URL %s to be rejected", url)
		}
		if !strings.Contains(reason, "test URL") {
			t.Errorf("Expected test-URL reason, got: %s", reason)
		}
	}
}

func TestValidateUnknownSource(t *testing.T) {
	l := validListing()
	l.URL = "https://www.olx.ro/oferta/casa-123"

	ok, reason := Validate(l)
	if ok {
		t.Error("Expected URL from unknown source to be rejected")
	}
	if !strings.Contains(reason, "not from allowed source") {
		t.Errorf("Expected allowed-source reason, got: %s", reason)
	}
}

func TestValidateMissingPrice(t *testing.T) {
	l := validListing()
	l.PriceEUR = nil

	ok, reason := Validate(l)
	if ok {
		t.Error("Expected nil price to be rejected")
	}
	if reason != "price is missing" {
		t.Errorf("Expected 'price is missing', got: %s", reason)
	}
}

func TestValidatePriceBounds(t *testing.T) {
	// Exact bounds are accepted
	l := validListing()
	l.PriceEUR = intPtr(MinPriceEUR)
	if ok, reason := Validate(l); !ok {
		t.Errorf("Price at minimum bound should be accepted, got: %s", reason)
	}

	l.PriceEUR = intPtr(MaxPriceEUR)
	if ok, reason := Validate(l); !ok {
		t.Errorf("Price at maximum bound should be accepted, got: %s", reason)
	}

	// One unit outside is rejected
	l.PriceEUR = intPtr(MinPriceEUR - 1)
	if ok, _ := Validate(l); ok {
		t.Error("Price one unit below minimum should be rejected")
	}

	l.PriceEUR = intPtr(MaxPriceEUR + 1)
	if ok, _ := Validate(l); ok {
		t.Error("Price one unit above maximum should be rejected")
	}
}

func TestValidateGenericLocation(t *testing.T) {
	for _, loc := range []string{"", "N/A", "Bucuresti", "bucuresti", "  București "} {
		l := validListing()
		l.Location = loc

		ok, reason := Validate(l)
		if ok {
			t.Errorf("Expected generic location %q to be rejected", loc)
		}
		if !strings.Contains(reason, "location") {
			t.Errorf("Expected location reason, got: %s", reason)
		}
	}

	// Specific area within the city is fine
	l := validListing()
	l.Location = "Bucuresti, Sector 4, Berceni"
	if ok, reason := Validate(l); !ok {
		t.Errorf("Specific location should be accepted, got: %s", reason)
	}
}

func TestValidateIsIdempotentOverNormalizedPrice(t *testing.T) {
	// Feeding an already-normalized price back through validation never
	// changes the outcome.
	l := validListing()
	first, _ := Validate(l)
	second, _ := Validate(l)
	if first != second {
		t.Error("Validation outcome changed between identical calls")
	}
}

func TestValidateRuleOrder(t *testing.T) {
	// First failing rule wins: an empty URL is reported even when the
	// price is also missing.
	l := &Listing{}
	ok, reason := Validate(l)
	if ok {
		t.Fatal("Expected empty record to be rejected")
	}
	if reason != "URL is empty" {
		t.Errorf("Expected URL rule to fire first, got: %s", reason)
	}
}
