package provider

import (
	"context"
	"errors"

	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/pkg/geocode"
)

// AddressSelector turns candidate address texts into one coordinate.
// *geocode.Selector implements it.
type AddressSelector interface {
	SelectAny(ctx context.Context, addresses []string, regionCode string) (*geocode.Match, error)
}

// regionProfile returns the table profile for code, or a bare profile with
// the Other locale when the code is unknown.
func regionProfile(table *geo.Table, code string) geo.RegionProfile {
	if p, ok := table.Lookup(code); ok {
		return p
	}
	return geo.RegionProfile{Code: code, Locale: geo.LocaleOther}
}

// matchCandidate builds the candidate for a geocoded address.
func matchCandidate(name string, m *geocode.Match) *model.Candidate {
	addr := m.Place.ShortAddress()
	if addr == "" {
		addr = m.Address
	}
	c := model.NewCandidate(name, m.Coordinate())
	c.Address = addr
	return c.
		WithEvidence(model.EvidenceAddress, m.Address).
		WithEvidence(model.EvidenceQuery, m.Query)
}

// worseErr keeps the more informative of two selection failures: ambiguity
// beats unavailability.
func worseErr(cur, next error) error {
	switch {
	case next == nil:
		return cur
	case cur == nil:
		return next
	case errors.Is(next, model.ErrGeocodingAmbiguous) && !errors.Is(cur, model.ErrGeocodingAmbiguous):
		return next
	}
	return cur
}
