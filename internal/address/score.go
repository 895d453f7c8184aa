package address

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sells-group/georesolve/internal/geo"
)

// Default recombination weights. Bonuses are positive, penalties negative.
const (
	WeightGazetteer         = 50
	WeightVowelRatio        = 20
	WeightPostcode          = 30
	WeightAdjacency         = 10
	WeightDegenerate        = -30
	WeightConsonantRun      = -20
	WeightNumberPrefix      = 25
	WeightNumberOccurrence  = 5
	WeightBuildingGazetteer = 20

	ThresholdUK = 40
	ThresholdFR = 50

	DefaultTopK = 5
)

// Weights tunes fragment recombination scoring.
type Weights struct {
	Gazetteer         int `mapstructure:"gazetteer" json:"gazetteer"`
	VowelRatio        int `mapstructure:"vowel_ratio" json:"vowel_ratio"`
	Postcode          int `mapstructure:"postcode" json:"postcode"`
	Adjacency         int `mapstructure:"adjacency" json:"adjacency"`
	Degenerate        int `mapstructure:"degenerate" json:"degenerate"`
	ConsonantRun      int `mapstructure:"consonant_run" json:"consonant_run"`
	NumberPrefix      int `mapstructure:"number_prefix" json:"number_prefix"`
	NumberOccurrence  int `mapstructure:"number_occurrence" json:"number_occurrence"`
	BuildingGazetteer int `mapstructure:"building_gazetteer" json:"building_gazetteer"`
	ThresholdUK       int `mapstructure:"threshold_uk" json:"threshold_uk"`
	ThresholdFR       int `mapstructure:"threshold_fr" json:"threshold_fr"`
	TopK              int `mapstructure:"top_k" json:"top_k"`
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Gazetteer:         WeightGazetteer,
		VowelRatio:        WeightVowelRatio,
		Postcode:          WeightPostcode,
		Adjacency:         WeightAdjacency,
		Degenerate:        WeightDegenerate,
		ConsonantRun:      WeightConsonantRun,
		NumberPrefix:      WeightNumberPrefix,
		NumberOccurrence:  WeightNumberOccurrence,
		BuildingGazetteer: WeightBuildingGazetteer,
		ThresholdUK:       ThresholdUK,
		ThresholdFR:       ThresholdFR,
		TopK:              DefaultTopK,
	}
}

// Threshold returns the minimum keep score for a locale.
func (w Weights) Threshold(locale geo.Locale) int {
	if locale == geo.LocaleUK {
		return w.ThresholdUK
	}
	return w.ThresholdFR
}

// ScoreBreakdown itemizes a candidate's score so each contribution can be
// checked on its own.
type ScoreBreakdown struct {
	Gazetteer    int `json:"gazetteer,omitempty"`
	VowelRatio   int `json:"vowel_ratio,omitempty"`
	Postcode     int `json:"postcode,omitempty"`
	Adjacency    int `json:"adjacency,omitempty"`
	Degenerate   int `json:"degenerate,omitempty"`
	ConsonantRun int `json:"consonant_run,omitempty"`
	Building     int `json:"building,omitempty"`
	Number       int `json:"number,omitempty"`
}

// Total sums every contribution.
func (b ScoreBreakdown) Total() int {
	return b.Gazetteer + b.VowelRatio + b.Postcode + b.Adjacency +
		b.Degenerate + b.ConsonantRun + b.Building + b.Number
}

var (
	ukFragmentPostcode = regexp.MustCompile(`[A-Z]{1,2}\d`)
	frFragmentPostcode = regexp.MustCompile(`\b\d{5}\b`)
	consonantRun       = regexp.MustCompile(`[BCDFGHJKLMNPQRSTVWXZ]{4,}`)
)

// Score rates a (name, fragment) pairing with the default weights.
func Score(name, fragment string, v *Vocabulary) ScoreBreakdown {
	return DefaultWeights().Score(name, fragment, v)
}

// Score rates a (name, fragment) pairing. name is the street or place name
// and fragment is the type keyword plus anything attached to it, such as a
// postcode. Adjacency and number bonuses are added by the caller.
func (w Weights) Score(name, fragment string, v *Vocabulary) ScoreBreakdown {
	name = fold(name)
	fragment = fold(fragment)
	var b ScoreBreakdown

	if inGazetteer(name, v) {
		b.Gazetteer = w.Gazetteer
	}

	letters := lettersOnly(name)
	vowels := 0
	for _, r := range letters {
		if strings.ContainsRune("AEIOU", r) {
			vowels++
		}
	}
	if vowels >= 1 && vowels <= len([]rune(letters))-2 {
		b.VowelRatio = w.VowelRatio
	}

	pc := frFragmentPostcode
	if v.Locale == geo.LocaleUK {
		pc = ukFragmentPostcode
	}
	if pc.MatchString(fragment) {
		b.Postcode = w.Postcode
	}

	if degenerate(letters) {
		b.Degenerate = w.Degenerate
	}
	for _, word := range strings.Fields(name) {
		if consonantRun.MatchString(lettersOnly(word)) {
			b.ConsonantRun = w.ConsonantRun
			break
		}
	}
	return b
}

func inGazetteer(name string, v *Vocabulary) bool {
	if v.Gazetteer[name] {
		return true
	}
	for _, word := range strings.Fields(name) {
		if v.Gazetteer[lettersOnly(word)] {
			return true
		}
	}
	return false
}

// degenerate flags a doubled I, a run of three identical letters, or fewer
// than four distinct letters.
func degenerate(letters string) bool {
	if strings.Contains(letters, "II") {
		return true
	}
	unique := make(map[rune]struct{})
	var prev rune
	run := 0
	for _, r := range letters {
		unique[r] = struct{}{}
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run >= 3 {
			return true
		}
	}
	return len(unique) < 4
}

func lettersOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
