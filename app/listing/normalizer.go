package listing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EURRateRON is the fixed RON to EUR conversion rate applied when a
// price carries a RON/lei currency marker.
const EURRateRON = 4.97

var (
	surfaceRegexp = regexp.MustCompile(`(\d+)\s*(?:mp|m²|m2|sqm)`)
	roomsRegexp   = regexp.MustCompile(`(\d+)\s*(?:cam|camera|camere|rooms?)`)
	digitsRegexp  = regexp.MustCompile(`\d+`)
	allDigits     = regexp.MustCompile(`[^\d]`)
)

// NormalizePrice converts raw localized price text into an integer EUR
// amount. The cleaned (whitespace-normalized) original text is always
// returned for audit; the amount is nil when the text is unparseable.
//
// Separator disambiguation is deterministic: with both "." and ","
// present, "." groups thousands and "," marks decimals; a lone "." is a
// thousands separator only if every group after it has exactly 3
// digits; a lone "," is a decimal separator.
func NormalizePrice(raw string) (string, *int) {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return "", nil
	}

	numeral := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, raw)
	if numeral == "" {
		return cleaned, nil
	}

	hasDot := strings.Contains(numeral, ".")
	hasComma := strings.Contains(numeral, ",")

	switch {
	case hasDot && hasComma:
		numeral = strings.ReplaceAll(numeral, ".", "")
		numeral = strings.ReplaceAll(numeral, ",", ".")
	case hasDot:
		if dotsAreThousands(numeral) {
			numeral = strings.ReplaceAll(numeral, ".", "")
		}
	case hasComma:
		numeral = strings.ReplaceAll(numeral, ",", ".")
	}

	value, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return cleaned, nil
	}

	lower := strings.ToLower(raw)
	if strings.Contains(lower, "ron") || strings.Contains(lower, "lei") {
		value /= EURRateRON
	}

	amount := int(value)
	if amount < 0 {
		return cleaned, nil
	}
	return cleaned, &amount
}

// dotsAreThousands reports whether every dot-delimited group after the
// first has exactly 3 digits ("875.000", "1.234.567").
func dotsAreThousands(numeral string) bool {
	parts := strings.Split(numeral, ".")
	for _, part := range parts[1:] {
		if len(part) != 3 {
			return false
		}
	}
	return true
}

// NormalizeSurface extracts a surface area in square meters. A number
// qualified by an area unit wins; otherwise the first bare integer is
// used; nil when the text carries no digits.
func NormalizeSurface(raw string) *int {
	return extractQualified(raw, surfaceRegexp)
}

// NormalizeRooms extracts a room count, preferring unit-qualified
// matches ("4 camere") over bare integers.
func NormalizeRooms(raw string) *int {
	return extractQualified(raw, roomsRegexp)
}

func extractQualified(raw string, re *regexp.Regexp) *int {
	if raw == "" {
		return nil
	}
	lower := strings.ToLower(raw)

	if m := re.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}
	if m := digitsRegexp.FindString(lower); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return &n
		}
	}
	return nil
}

// CheckPriceConsistency cross-checks the parsed amount against the bare
// digit run of the raw text. A mismatch is an expected artifact for RON
// prices and grouped decimals, so this is a diagnostic for operators,
// never a rejection.
func CheckPriceConsistency(l *Listing) (bool, string) {
	if l.PriceEUR == nil || l.PriceRaw == "" {
		return true, ""
	}
	digits := allDigits.ReplaceAllString(l.PriceRaw, "")
	if digits == "" {
		return true, ""
	}
	rawValue, err := strconv.Atoi(digits)
	if err != nil {
		return true, ""
	}
	if rawValue != *l.PriceEUR {
		return false, fmt.Sprintf("price digits mismatch: raw=%s parsed=%d", l.PriceRaw, *l.PriceEUR)
	}
	return true, ""
}

// FormatPrice renders an EUR amount for run summaries ("187.000 EUR").
func FormatPrice(price *int) string {
	if price == nil {
		return "N/A"
	}
	s := strconv.Itoa(*price)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String() + " EUR"
}
