package listing

import "strings"

// MetroKeywords is the transit gazetteer used for the metro-proximity
// flag. Downstream scoring matches against the same list, so it is
// defined exactly once here.
var MetroKeywords = []string{
	"metrou", "statie", "statia", "metro",
	"m1", "m2", "m3", "m4", "m5", "m6",
	"pipera", "universitate", "romana", "victoriei", "piata victoriei",
	"pallady", "berceni", "dimitrie leonida", "tudor arghezi",
	"aparatorii patriei", "constantin brancoveanu", "piata sudului",
	"crangasi", "gorjului", "lujerului",
	"politehnica", "eroilor", "izvor", "piata unirii", "timpuri noi",
	"mihai bravu", "dristor", "grigorescu", "obor", "piata spaniei",
	"romancierilor", "parcul carol", "tineretului", "calarasilor",
	"republica", "pantelimon", "anghel saligny",
	"bragadiru", "popesti-leordeni", "chiajna", "voluntari",
	"otopeni", "buftea", "magurele", "corbeanca", "snagov",
}

// HasMetroProximity reports whether the combined listing text mentions
// any transit keyword. Matching is case-insensitive and diacritic-folded.
func HasMetroProximity(text string) bool {
	if text == "" {
		return false
	}
	folded := Fold(text)
	for _, kw := range MetroKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
