package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
)

// Match is the place a Selector picked for an address.
type Match struct {
	Place Place `json:"place"`
	// Address is the candidate text the match was found for.
	Address    string `json:"address"`
	Query      string `json:"query"`
	Structured bool   `json:"structured"`
	// DistanceMeters is the distance to the region center, nil when the
	// region is unknown or unbounded.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	// Discarded counts places dropped as zero or outside the region.
	Discarded int `json:"discarded"`
}

// Coordinate returns the matched coordinate.
func (m *Match) Coordinate() model.Coordinate { return m.Place.Coordinate }

// Selector picks, among the places a Client returns, the one nearest the
// expected region's center.
type Selector struct {
	client    Client
	validator *geo.Validator
}

// NewSelector pairs a client with the region validator.
func NewSelector(client Client, validator *geo.Validator) *Selector {
	return &Selector{client: client, validator: validator}
}

// Client returns the underlying geocoder.
func (s *Selector) Client() Client { return s.client }

// Select geocodes address for regionCode. It tries a structured query first
// and falls back to a free-form one. The result is nil with a nil error when
// the service knows nothing about the address; ErrGeocodingAmbiguous when it
// answered but no place lies inside the region; ErrProviderUnavailable when
// every query failed.
func (s *Selector) Select(ctx context.Context, address, regionCode string) (*Match, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	region, known := s.validator.Table().Lookup(regionCode)

	var (
		failures  []error
		discarded int
		answered  bool
	)
	for _, q := range queriesFor(address, region, known) {
		places, err := s.client.Search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Warn("geocode: query failed", zap.String("query", q.String()), zap.Error(err))
			failures = append(failures, err)
			continue
		}
		if len(places) > 0 {
			answered = true
		}
		m, dropped := s.pick(places, regionCode, known && !region.Unbounded)
		discarded += dropped
		if m != nil {
			m.Address = address
			m.Query = q.String()
			m.Structured = q.Structured()
			m.Discarded = discarded
			return m, nil
		}
	}

	switch {
	case answered:
		return nil, eris.Wrapf(model.ErrGeocodingAmbiguous, "geocode: %d places for %q outside %s",
			discarded, address, regionCode)
	case len(failures) > 0:
		return nil, eris.Wrap(model.Classify(model.ErrProviderUnavailable, errors.Join(failures...)), "geocode")
	}
	return nil, nil
}

// SelectAny tries addresses in order and returns the first match. When none
// match, the error reports ambiguity before unavailability.
func (s *Selector) SelectAny(ctx context.Context, addresses []string, regionCode string) (*Match, error) {
	var ambiguous, unavailable error
	for _, a := range addresses {
		m, err := s.Select(ctx, a, regionCode)
		if m != nil {
			return m, nil
		}
		switch {
		case err == nil:
		case errors.Is(err, model.ErrGeocodingAmbiguous):
			if ambiguous == nil {
				ambiguous = err
			}
		case errors.Is(err, model.ErrProviderUnavailable):
			if unavailable == nil {
				unavailable = err
			}
		default:
			return nil, err
		}
	}
	if ambiguous != nil {
		return nil, ambiguous
	}
	return nil, unavailable
}

// pick drops zero-sentinel places and, when bounded, places outside the
// region, then keeps the one closest to the center. Without a bounded
// region the first non-zero place wins.
func (s *Selector) pick(places []Place, regionCode string, bounded bool) (*Match, int) {
	var (
		best     *Match
		bestDist float64
		dropped  int
	)
	for _, p := range places {
		if p.Coordinate.IsZero() || !p.Coordinate.InRange() {
			dropped++
			continue
		}
		if !bounded {
			return &Match{Place: p}, dropped
		}
		res := s.validator.Validate(p.Coordinate, regionCode)
		if !res.Valid || res.DistanceMeters == nil {
			dropped++
			continue
		}
		if best == nil || *res.DistanceMeters < bestDist {
			d := *res.DistanceMeters
			best, bestDist = &Match{Place: p, DistanceMeters: &d}, d
		}
	}
	return best, dropped
}

// queriesFor builds the structured query (first comma part as street, the
// region's city and country) and the free-form query with the city appended
// when the text does not already name it.
func queriesFor(address string, region geo.RegionProfile, known bool) []Query {
	if !known || region.Unbounded {
		return []Query{{Text: address}}
	}
	street, _, _ := strings.Cut(address, ",")
	street = strings.TrimSpace(street)

	free := address
	if region.Name != "" && !strings.Contains(strings.ToLower(address), strings.ToLower(region.Name)) {
		free = address + ", " + region.Name
	}

	var qs []Query
	if street != "" {
		qs = append(qs, Query{Street: street, City: region.Name, CountryCode: region.CountryCode})
	}
	return append(qs, Query{Text: free, CountryCode: region.CountryCode})
}
