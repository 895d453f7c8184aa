package address

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/georesolve/internal/geo"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
	note string
}

var trailingCountries = regexp.MustCompile(`(?i),?\s*(?:Royaume-Uni|United Kingdom|UK|France|Italia|Italy|España|Spain|USA|United States|England)\s*$`)

var frRewrites = []rewrite{
	{regexp.MustCompile(`\bBd\b\.?`), "Boulevard", "Bd"},
	{regexp.MustCompile(`\bBoul\b\.?`), "Boulevard", "Boul"},
	{regexp.MustCompile(`\bAv\b\.?`), "Avenue", "Av"},
	{regexp.MustCompile(`\bGal\b\.?`), "Galerie", "Gal"},
	{regexp.MustCompile(`\bPl\b\.?`), "Place", "Pl"},
	{regexp.MustCompile(`\bR\.(\s)`), "Rue$1", "R."},
	{regexp.MustCompile(`\bSt\b\.?(\s+[A-Z])`), "Saint$1", "St"},
	{regexp.MustCompile(`\bSte\b\.?(\s+[A-Z])`), "Sainte$1", "Ste"},
	{regexp.MustCompile(`\bImp\b\.?`), "Impasse", "Imp"},
	{regexp.MustCompile(`\bPass\b\.?`), "Passage", "Pass"},
	{regexp.MustCompile(`\bFbg\b\.?`), "Faubourg", "Fbg"},
	{regexp.MustCompile(`\bCrs\b\.?`), "Cours", "Crs"},
}

var enRewrites = []rewrite{
	{regexp.MustCompile(`\bSt\b\.?(\s*,|\s*$|\s+[A-Z][a-z])`), "Street$1", "St"},
	{regexp.MustCompile(`\bRd\b\.?`), "Road", "Rd"},
	{regexp.MustCompile(`\bAve\b\.?`), "Avenue", "Ave"},
	{regexp.MustCompile(`\bBlvd\b\.?`), "Boulevard", "Blvd"},
	{regexp.MustCompile(`\bLn\b\.?`), "Lane", "Ln"},
	{regexp.MustCompile(`\bDr\b\.?(\s*,|\s*$)`), "Drive$1", "Dr"},
	{regexp.MustCompile(`\bCt\b\.?(\s*,|\s*$)`), "Court$1", "Ct"},
	{regexp.MustCompile(`\bPl\b\.?(\s*,|\s*$)`), "Place$1", "Pl"},
	{regexp.MustCompile(`\bSq\b\.?`), "Square", "Sq"},
}

var (
	arrondissement = regexp.MustCompile(`(?i)\s*in the (\d+)(?:st|nd|rd|th)?\s*arrondissement\s*`)
	multiSpace     = regexp.MustCompile(`\s+`)
	doubleComma    = regexp.MustCompile(`,\s*,`)
	commaSpacing   = regexp.MustCompile(`\s*,\s*`)
)

// Standardize expands street abbreviations, drops trailing country names and
// makes sure the region's city is part of the address. It returns the
// cleaned address and a note per change made.
func Standardize(address string, region geo.RegionProfile) (string, []string) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", nil
	}
	var changes []string

	address = strings.NewReplacer("’", "'", "‘", "'").Replace(address)

	if trailingCountries.MatchString(address) {
		address = trailingCountries.ReplaceAllString(address, "")
		changes = append(changes, "country removed")
	}

	rules := frRewrites
	if region.Locale == geo.LocaleUK {
		rules = enRewrites
	}
	for _, r := range rules {
		if r.re.MatchString(address) {
			address = r.re.ReplaceAllString(address, r.repl)
			changes = append(changes, "expanded "+r.note)
		}
	}

	if strings.Contains(address, "Londres") {
		address = strings.ReplaceAll(address, "Londres", "London")
		changes = append(changes, "Londres -> London")
	}

	if m := arrondissement.FindStringSubmatch(address); m != nil && region.Code == "PA" {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= 20 {
			address = arrondissement.ReplaceAllString(address, "")
			address = fmt.Sprintf("%s, 750%02d Paris", address, n)
			changes = append(changes, fmt.Sprintf("arrondissement %d -> postcode", n))
		}
	}

	if region.Name != "" && !mentionsCity(address, region) {
		address = strings.TrimRight(strings.TrimSpace(address), ",")
		address = address + ", " + region.Name
		changes = append(changes, "city added: "+region.Name)
	}

	before := address
	address = multiSpace.ReplaceAllString(address, " ")
	address = doubleComma.ReplaceAllString(address, ",")
	address = commaSpacing.ReplaceAllString(address, ", ")
	address = strings.TrimSpace(strings.Trim(strings.TrimSpace(address), ","))
	if address != before {
		changes = append(changes, "whitespace cleaned")
	}
	return address, changes
}

// mentionsCity reports whether the address already names the region's city
// or carries one of its postcodes.
func mentionsCity(address string, region geo.RegionProfile) bool {
	lower := strings.ToLower(fold(address))
	if strings.Contains(lower, strings.ToLower(fold(region.Name))) {
		return true
	}
	if region.PostcodePattern != "" {
		if re, err := regexp.Compile(region.PostcodePattern); err == nil && re.MatchString(address) {
			return true
		}
	}
	return false
}
