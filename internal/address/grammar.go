package address

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sells-group/georesolve/internal/geo"
)

// Grammar is one locale's street-address shape.
type Grammar struct {
	Locale   geo.Locale
	patterns []*regexp.Regexp
	// nameFirst is true when the street name precedes the street type
	// ("Spring Gardens") and false when it follows ("Rue de la Roquette").
	nameFirst bool
	// nameGroup is the capture group index holding the street name.
	nameGroup int
}

const frArticle = `(?:de\s+la\s+|du\s+|des\s+|de\s+l'\s*|de\s+l\s+|d'\s*|de\s+)?`

const frName = `(\p{L}[\p{L}\-']+(?:\s+\p{L}[\p{L}\-']+)*)`

const ukStreetTypes = `Street|St|Road|Rd|Lane|Ln|Avenue|Ave|Place|Pl|Gardens|Gdns|Square|Sq|Terrace|Ter|Court|Ct|Mews|Row|Way|Close|Drive|Dr|Crescent|Cres|Grove|Hill|Walk|Yard|Passage|Alley|Gate|Green|Park|Bridge|Wharf|Quay`

const ukBuildingTypes = `House|Building|Tower|Hall|Centre|Center|Theatre|Theater|Opera|Museum|Gallery|Hotel|Station|Church|Cathedral|Palace|Castle|Abbey|Market|Exchange|Bank|Library|College|School|Hospital|Office|Arcade|Chambers|Lodge|Manor|Villa|Mansion|Arms|Inn|Pub|Bar|Shop|Store|Studios?`

// ukPostcodeShape matches an outward (and optional inward) UK postcode.
const ukPostcodeShape = `[A-Z]{1,2}\d{1,2}[A-Z]?(?:\s*\d[A-Z]{2})?`

var (
	// FrenchGrammar matches "12 rue de la Roquette" style addresses.
	FrenchGrammar = &Grammar{
		Locale:    geo.LocaleFR,
		nameGroup: 2,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d+[,\s]*(?:bis|ter)?[,\s]*)?\b(?:rue|r\.|avenue|av\.?|boulevard|bd\.?|quai|cours|chemin|faubourg|fbg)\s+` + frArticle + frName),
			regexp.MustCompile(`(?i)()\b(?:place|pl\.|passage|impasse|allée|allee|square|villa|cité|cite|galerie|sentier|parvis|esplanade)\s+` + frArticle + frName),
		},
	}

	// UKGrammar matches "Spring Gardens SW1" and "133 Ilford House" style addresses.
	UKGrammar = &Grammar{
		Locale:    geo.LocaleUK,
		nameFirst: true,
		nameGroup: 2,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:(\d+[A-Za-z]?)\s+)?([A-Z][A-Za-z']+(?:\s+[A-Z][A-Za-z']+)*)\s+(?:` + ukStreetTypes + `)\b\.?\s*(` + ukPostcodeShape + `)?`),
			regexp.MustCompile(`(?i)(?:(\d+[A-Za-z]?)\s+)?([A-Z][A-Za-z']+(?:\s+[A-Z][A-Za-z']+)*)\s+(?:` + ukBuildingTypes + `)\b`),
		},
	}
)

// GrammarsFor returns the grammars to try for a locale, strongest first.
// UK regions try the UK grammar first; everything else tries French first.
func GrammarsFor(locale geo.Locale) []*Grammar {
	if locale == geo.LocaleUK {
		return []*Grammar{UKGrammar, FrenchGrammar}
	}
	return []*Grammar{FrenchGrammar, UKGrammar}
}

var (
	postcodeTail  = regexp.MustCompile(`[A-Z]{1,2}\d[A-Z]?$`)
	shortWordTail = regexp.MustCompile(`\s+[A-Za-z]{1,2}$`)
)

// Match runs the grammar over one line and returns every valid address in
// encounter order.
func (g *Grammar) Match(line string) []string {
	clean := normalizeLine(strings.NewReplacer("|", " ", "_", " ").Replace(line))
	var out []string
	for _, re := range g.patterns {
		for _, m := range re.FindAllStringSubmatch(clean, -1) {
			full := normalizeLine(m[0])
			name := strings.TrimSpace(m[g.nameGroup])
			if !validStreetName(full, name) {
				continue
			}
			if !postcodeTail.MatchString(full) {
				full = shortWordTail.ReplaceAllString(full, "")
			}
			if len([]rune(full)) > 5 {
				out = append(out, full)
			}
		}
	}
	return out
}

var articleWords = map[string]bool{
	"DE": true, "LA": true, "DU": true, "DES": true, "LE": true, "LES": true,
	"L'": true, "D'": true, "THE": true, "OF": true,
}

// validStreetName rejects captures that look like OCR debris.
func validStreetName(full, name string) bool {
	words := contentWords(strings.Fields(full))
	if len(words) > 3 && shortShare(words) > 0.4 {
		return false
	}

	if len([]rune(name)) < 3 {
		return false
	}
	letters := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 3 {
		return false
	}
	if strings.Contains(strings.ToLower(name), "ii") {
		return false
	}
	nameWords := contentWords(strings.Fields(name))
	if len(nameWords) > 2 && shortShare(nameWords) > 0.5 {
		return false
	}
	return caseShapeOK(nameWords)
}

// contentWords drops articles, numbers and postcodes.
func contentWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if articleWords[strings.ToUpper(w)] || strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			continue
		}
		out = append(out, w)
	}
	return out
}

func shortShare(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	short := 0
	for _, w := range words {
		if len([]rune(w)) <= 2 {
			short++
		}
	}
	return float64(short) / float64(len(words))
}

// caseShapeOK accepts ALL CAPS, all lower, or Title Case. Other mixes are
// OCR noise.
func caseShapeOK(words []string) bool {
	var upper, lower int
	for _, w := range words {
		for _, r := range w {
			switch {
			case unicode.IsUpper(r):
				upper++
			case unicode.IsLower(r):
				lower++
			}
		}
	}
	if upper == 0 || lower == 0 {
		return true
	}
	for _, w := range words {
		first := []rune(w)[0]
		if unicode.IsLetter(first) && !unicode.IsUpper(first) {
			return false
		}
	}
	return true
}
