package address

import (
	"regexp"

	"github.com/sells-group/georesolve/internal/geo"
)

// Vocabulary is the closed set of keywords and known names one locale's
// recombination pass works with. All entries are upper case and accent-free.
type Vocabulary struct {
	Locale geo.Locale
	// StreetTypes are street-type keywords ("STREET", "RUE").
	StreetTypes map[string]bool
	// BuildingTypes are building or venue keywords ("HOUSE", "GARE").
	BuildingTypes map[string]bool
	// Gazetteer lists common local street and place names.
	Gazetteer map[string]bool
	// Articles are skipped between a type keyword and its name.
	Articles map[string]bool
	// NameFirst is true when names precede the type keyword.
	NameFirst bool
	// Postcode matches a postcode-shaped token for this locale.
	Postcode *regexp.Regexp
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// UKVocabulary covers UK and US street signage.
var UKVocabulary = &Vocabulary{
	Locale:    geo.LocaleUK,
	NameFirst: true,
	Postcode:  regexp.MustCompile(`^[A-Z]{1,2}\d{1,2}[A-Z]?$`),
	StreetTypes: set("STREET", "ST", "ROAD", "RD", "LANE", "LN", "AVENUE", "AVE",
		"PLACE", "PL", "GARDENS", "GDNS", "SQUARE", "SQ", "TERRACE",
		"TER", "COURT", "CT", "MEWS", "ROW", "WAY", "CLOSE", "DRIVE",
		"DR", "CRESCENT", "CRES", "GROVE", "HILL", "WALK", "YARD",
		"PASSAGE", "ALLEY", "GATE", "GREEN", "PARK", "BRIDGE", "WHARF", "QUAY"),
	BuildingTypes: set("HOUSE", "BUILDING", "TOWER", "HALL", "CENTRE", "CENTER",
		"THEATRE", "THEATER", "OPERA", "MUSEUM", "GALLERY", "HOTEL",
		"STATION", "CHURCH", "CATHEDRAL", "PALACE", "CASTLE", "ABBEY",
		"MARKET", "EXCHANGE", "BANK", "LIBRARY", "COLLEGE", "SCHOOL",
		"HOSPITAL", "OFFICE", "ARCADE", "CHAMBERS", "LODGE", "MANOR",
		"VILLA", "MANSION", "ARMS", "INN", "PUB", "BAR", "SHOP", "STORE"),
	Gazetteer: set("SPRING", "OXFORD", "BAKER", "ABBEY", "KINGS", "QUEENS",
		"VICTORIA", "REGENT", "BOND", "FLEET", "STRAND", "SOHO",
		"BRICK", "DEAN", "GREEK", "POLAND", "CARNABY", "COVENT",
		"TRAFALGAR", "LEICESTER", "PICCADILLY", "CHELSEA", "DANSEY",
		"ARBLAY", "D'ARBLAY", "ILFORD", "WARDOUR", "BERWICK", "FRITH",
		"WHITEHALL", "DOWNING", "PORTOBELLO", "CAMDEN", "BRIXTON",
		"SHOREDITCH", "HOXTON", "REDCHURCH", "CHARING", "HOLBORN", "CHANCERY",
		"BROADWAY", "MARKET", "CANAL", "MELROSE", "SUNSET", "BOWERY", "HOUSTON"),
	Articles: set("THE", "OF"),
}

// FrenchVocabulary covers French, Belgian and Swiss street signage.
var FrenchVocabulary = &Vocabulary{
	Locale:   geo.LocaleFR,
	Postcode: regexp.MustCompile(`^\d{5}$`),
	StreetTypes: set("RUE", "AVENUE", "AV", "BOULEVARD", "BD", "PLACE", "PL",
		"QUAI", "PASSAGE", "IMPASSE", "ALLEE", "COURS", "CHEMIN", "SQUARE",
		"VILLA", "CITE", "FAUBOURG", "FBG", "GALERIE", "SENTIER", "PARVIS",
		"ESPLANADE", "PROMENADE", "ROUTE", "MONTEE", "QUARTIER"),
	BuildingTypes: set("GARE", "EGLISE", "MAIRIE", "MUSEE", "THEATRE", "HOTEL",
		"MARCHE", "ECOLE", "LYCEE", "COLLEGE", "HOPITAL", "PALAIS", "CHATEAU",
		"CINEMA", "BIBLIOTHEQUE", "PISCINE", "STADE", "PHARMACIE", "BOULANGERIE",
		"BRASSERIE", "CAFE", "RESIDENCE", "IMMEUBLE", "GALERIES"),
	Gazetteer: set("ROQUETTE", "RIVOLI", "SAINT", "SAINTE", "REPUBLIQUE", "BASTILLE",
		"MONTMARTRE", "VICTOR", "HUGO", "GAMBETTA", "JAURES", "PASTEUR", "VOLTAIRE",
		"OBERKAMPF", "CHARONNE", "TEMPLE", "BELLEVILLE", "MENILMONTANT", "MARTYRS",
		"ABBESSES", "LEPIC", "NATION", "CONCORDE", "OPERA", "LOUVRE", "MARAIS",
		"BEAUBOURG", "FAUBOURG", "TURENNE", "ROSIERS", "ARCHIVES", "GRAVILLIERS",
		"ODEON", "CHATELET", "HALLES", "DENIS", "MARTIN", "ANTOINE", "HONORE",
		"GERMAIN", "MICHEL", "JACQUES", "MONTPARNASSE", "VAUGIRARD", "GRENELLE",
		"CLICHY", "PIGALLE", "BARBES", "CHAPELLE", "VILLETTE", "JOURDAIN",
		"LIBERTE", "LIBERATION", "GAULLE", "FOCH", "CLEMENCEAU", "JEAN", "MOULIN",
		"PAIX", "GARE", "PORT", "MARCHE", "POSTE", "EGLISE", "MAIRIE", "CHATEAU",
		"COMMERCE", "HALLE", "FONTAINE", "PONT", "MOULINS", "VIEUX", "GRANDE"),
	Articles: set("DE", "LA", "DU", "DES", "LE", "LES", "L", "D", "L'", "D'", "AUX", "AU"),
}

// VocabulariesFor returns the vocabularies to recombine with for a locale.
func VocabulariesFor(locale geo.Locale) []*Vocabulary {
	switch locale {
	case geo.LocaleUK:
		return []*Vocabulary{UKVocabulary}
	case geo.LocaleFR:
		return []*Vocabulary{FrenchVocabulary}
	default:
		return []*Vocabulary{FrenchVocabulary, UKVocabulary}
	}
}
