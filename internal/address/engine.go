// Package address turns noisy OCR text from street photographs into ranked
// address guesses and tidies free-text addresses before geocoding.
package address

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/geo"
)

// MinLineLength is the shortest line the direct grammar pass looks at.
const MinLineLength = 5

// Engine extracts address candidates from OCR lines.
type Engine struct {
	weights Weights
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights overrides the recombination weights. Zero fields keep their
// defaults.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		d := DefaultWeights()
		pick := func(v, def int) int {
			if v == 0 {
				return def
			}
			return v
		}
		e.weights = Weights{
			Gazetteer:         pick(w.Gazetteer, d.Gazetteer),
			VowelRatio:        pick(w.VowelRatio, d.VowelRatio),
			Postcode:          pick(w.Postcode, d.Postcode),
			Adjacency:         pick(w.Adjacency, d.Adjacency),
			Degenerate:        pick(w.Degenerate, d.Degenerate),
			ConsonantRun:      pick(w.ConsonantRun, d.ConsonantRun),
			NumberPrefix:      pick(w.NumberPrefix, d.NumberPrefix),
			NumberOccurrence:  pick(w.NumberOccurrence, d.NumberOccurrence),
			BuildingGazetteer: pick(w.BuildingGazetteer, d.BuildingGazetteer),
			ThresholdUK:       pick(w.ThresholdUK, d.ThresholdUK),
			ThresholdFR:       pick(w.ThresholdFR, d.ThresholdFR),
			TopK:              pick(w.TopK, d.TopK),
		}
	}
}

// NewEngine creates an Engine with default weights.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Weights returns the engine's scoring weights.
func (e *Engine) Weights() Weights { return e.weights }

// Direct runs the locale grammars line by line over noise-filtered text and
// returns unique matches in encounter order.
func (e *Engine) Direct(lines []string, locale geo.Locale) []string {
	grammars := GrammarsFor(locale)
	seen := make(map[string]struct{})
	var out []string
	for _, line := range FilterLines(lines) {
		if utf8.RuneCountInString(line) < MinLineLength {
			continue
		}
		for _, g := range grammars {
			for _, m := range g.Match(line) {
				if _, dup := seen[m]; dup {
					continue
				}
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	return out
}

// Recombine runs fragment recombination for a locale.
func (e *Engine) Recombine(lines []string, locale geo.Locale) []Candidate {
	return e.weights.Recombine(lines, VocabulariesFor(locale)...)
}

// Extract returns every address candidate for the text, recombined
// candidates first, then direct matches. The region name is appended when
// the candidate does not already mention it.
func (e *Engine) Extract(lines []string, region geo.RegionProfile) []Candidate {
	locale := region.Locale
	if locale == "" {
		locale = geo.LocaleOther
	}

	recombined := e.Recombine(lines, locale)
	direct := e.Direct(lines, locale)

	seen := make(map[string]struct{}, len(recombined)+len(direct))
	out := make([]Candidate, 0, len(recombined)+len(direct))
	add := func(c Candidate) {
		key := strings.ToUpper(c.Text)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	for _, c := range recombined {
		add(c)
	}
	for _, d := range direct {
		add(Candidate{Text: d, Locale: locale, Kind: KindDirect})
	}

	if region.Name != "" {
		for i := range out {
			if !strings.Contains(strings.ToLower(out[i].Text), strings.ToLower(region.Name)) {
				out[i].Text = out[i].Text + ", " + region.Name
			}
		}
	}

	zap.L().Debug("address: extracted candidates",
		zap.String("region", region.Code),
		zap.Int("lines", len(lines)),
		zap.Int("recombined", len(recombined)),
		zap.Int("direct", len(direct)),
	)
	return out
}

// Texts returns the candidate texts in order.
func Texts(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Text
	}
	return out
}
