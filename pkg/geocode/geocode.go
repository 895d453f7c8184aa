// Package geocode turns free-text addresses into coordinates through an
// OpenStreetMap Nominatim compatible service, and picks the match that best
// fits an expected region.
package geocode

import (
	"context"
	"strings"

	"github.com/sells-group/georesolve/internal/model"
)

// Client is the address to coordinate service the resolver needs.
type Client interface {
	// Search returns every place the service matched, in its own order.
	// An empty slice with a nil error means no match.
	Search(ctx context.Context, q Query) ([]Place, error)

	// Reverse returns the place nearest to c.
	Reverse(ctx context.Context, c model.Coordinate) (*Place, error)
}

// Query is either structured (Street, City, CountryCode) or free-form (Text).
type Query struct {
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Text        string `json:"text,omitempty"`
}

// Structured reports whether q uses the field form.
func (q Query) Structured() bool {
	return q.Text == "" && q.Street != ""
}

// String renders q for logs and audit evidence.
func (q Query) String() string {
	if !q.Structured() {
		return q.Text
	}
	parts := []string{q.Street}
	if q.City != "" {
		parts = append(parts, q.City)
	}
	if q.CountryCode != "" {
		parts = append(parts, strings.ToUpper(q.CountryCode))
	}
	return strings.Join(parts, ", ")
}

// Place is one geocoder answer.
type Place struct {
	Coordinate  model.Coordinate  `json:"coordinate"`
	DisplayName string            `json:"display_name"`
	Class       string            `json:"class,omitempty"`
	Type        string            `json:"type,omitempty"`
	Importance  float64           `json:"importance,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
}

// ShortAddress renders "number road, city postcode" from the structured
// address parts, falling back to DisplayName.
func (p Place) ShortAddress() string {
	a := p.Address
	if len(a) == 0 {
		return p.DisplayName
	}
	var parts []string
	street := first(a, "road", "pedestrian", "footway", "square")
	if n := a["house_number"]; n != "" && street != "" {
		street = n + " " + street
	}
	if street != "" {
		parts = append(parts, street)
	}
	city := first(a, "city", "town", "village", "municipality")
	if pc := a["postcode"]; pc != "" {
		city = strings.TrimSpace(pc + " " + city)
	}
	if city != "" {
		parts = append(parts, city)
	}
	if len(parts) == 0 {
		return p.DisplayName
	}
	return strings.Join(parts, ", ")
}

func first(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
