package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/coherence"
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/provider"
)

// State is a step of the resolution state machine.
type State string

// Terminal and intermediate states. Provider stages are named after their
// provider, so the visited states of a run read catalog_a, catalog_b,
// coherence, crowdsourced and so on.
const (
	StateCoherence  State = "coherence"
	StateSuspended  State = "suspended"
	StateResolved   State = "resolved"
	StateUnresolved State = "unresolved"
)

// ConfidenceFor maps where a run ended to the confidence it earns. Two
// agreeing catalogs are High, any other single observation is Medium and
// the region-center placeholder is Low.
func ConfidenceFor(state State, status model.CoherenceStatus) model.Confidence {
	switch state {
	case StateUnresolved:
		return model.ConfidenceLow
	case StateCoherence:
		if status == model.CoherenceExcellent || status == model.CoherenceGood {
			return model.ConfidenceHigh
		}
		return model.ConfidenceMedium
	default:
		return model.ConfidenceMedium
	}
}

// TieBreak picks the coordinate when both catalogs are valid.
type TieBreak string

// Tie-break policies.
const (
	PreferA TieBreak = "prefer_a"
	PreferB TieBreak = "prefer_b"
	// MidpointWhenCoherent averages the catalogs when they agree (Excellent
	// or Good) and prefers A otherwise.
	MidpointWhenCoherent TieBreak = "midpoint_when_coherent"
)

// ParseTieBreak reads a config value. Empty means PreferA.
func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(strings.ToLower(strings.TrimSpace(s))); tb {
	case "":
		return PreferA, nil
	case PreferA, PreferB, MidpointWhenCoherent:
		return tb, nil
	default:
		return "", eris.Errorf("pipeline: unknown tie_break %q", s)
	}
}

// SourceCatalogMidpoint is the Source of midpoint resolutions.
const SourceCatalogMidpoint = provider.NameCatalogA + "+" + provider.NameCatalogB

// pick applies the policy to two region-valid catalog candidates. It returns
// the chosen candidate and the one set aside, which is nil for a midpoint.
func (tb TieBreak) pick(a, b *model.Candidate, res coherence.Result) (chosen, loser *model.Candidate) {
	switch {
	case tb == PreferB:
		return b, a
	case tb == MidpointWhenCoherent && res.Agrees():
		mid := model.NewCandidate(SourceCatalogMidpoint, geo.Midpoint(a.Coordinate, b.Coordinate))
		mid.Address = firstNonEmpty(addressOf(a), addressOf(b))
		for k, v := range b.Evidence {
			mid.Evidence[provider.NameCatalogB+"."+k] = v
		}
		for k, v := range a.Evidence {
			mid.Evidence[provider.NameCatalogA+"."+k] = v
		}
		return mid, nil
	default:
		return a, b
	}
}

// addressOf returns the candidate's address, falling back to the address
// evidence a catalog recorded.
func addressOf(c *model.Candidate) string {
	if c == nil {
		return ""
	}
	return firstNonEmpty(c.Address, c.Evidence[model.EvidenceAddress])
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
