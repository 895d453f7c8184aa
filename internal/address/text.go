package address

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold upper-cases s and strips combining accents.
func fold(s string) string {
	out, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToUpper(strings.TrimSpace(s)),
	)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

var lowerInTitle = map[string]bool{
	"de": true, "la": true, "du": true, "des": true, "le": true, "les": true,
	"aux": true, "au": true, "et": true, "of": true, "the": true, "and": true,
}

// TitleCase formats an address for display and geocoding. Tokens holding
// digits (postcodes, house numbers) stay upper case and French or English
// articles after the first word stay lower case.
func TitleCase(s string) string {
	caser := cases.Title(language.Und)
	words := strings.Fields(s)
	for i, w := range words {
		lw := strings.ToLower(w)
		switch {
		case strings.IndexFunc(w, unicode.IsDigit) >= 0:
			words[i] = strings.ToUpper(w)
		case i > 0 && lowerInTitle[lw]:
			words[i] = lw
		case strings.HasPrefix(lw, "l'") || strings.HasPrefix(lw, "d'"):
			words[i] = lw[:2] + caser.String(lw[2:])
		default:
			words[i] = caser.String(lw)
		}
	}
	return strings.Join(words, " ")
}
