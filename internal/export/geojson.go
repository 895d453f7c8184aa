// Package export writes resolved locations as GeoJSON and as an audit workbook.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/uber/h3-go/v4"

	"github.com/sells-group/georesolve/internal/model"
)

// DefaultH3Resolution buckets points into cells of roughly 0.1 km².
const DefaultH3Resolution = 9

// GeoJSONOptions tunes WriteGeoJSON.
type GeoJSONOptions struct {
	H3Resolution int  // 0 means DefaultH3Resolution
	Placeholders bool // include region-center placeholders
}

// WriteGeoJSON writes locs as a FeatureCollection of points. Region-center
// placeholders are left out.
func WriteGeoJSON(w io.Writer, locs []model.ResolvedLocation) error {
	return WriteGeoJSONWith(w, locs, GeoJSONOptions{})
}

// WriteGeoJSONWith is WriteGeoJSON with explicit options.
func WriteGeoJSONWith(w io.Writer, locs []model.ResolvedLocation, opts GeoJSONOptions) error {
	res := opts.H3Resolution
	if res == 0 {
		res = DefaultH3Resolution
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(locs))}
	for i := range locs {
		loc := &locs[i]
		if !loc.HasCoordinate() || (loc.IsPlaceholder() && !opts.Placeholders) {
			continue
		}
		f, err := feature(loc, res)
		if err != nil {
			return err
		}
		fc.Features = append(fc.Features, f)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "geojson: encode feature collection")
	}
	return nil
}

func feature(loc *model.ResolvedLocation, res int) (*geojson.Feature, error) {
	c := loc.Coordinate
	if !c.InRange() {
		return nil, eris.Errorf("geojson: object %s has coordinate %s out of range", loc.Object.ID, c)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lng), res)
	if err != nil {
		return nil, eris.Wrapf(err, "geojson: h3 cell for %s", loc.Object.ID)
	}

	props := map[string]any{
		"id":          loc.Object.ID,
		"region_code": loc.Object.RegionCode,
		"confidence":  string(loc.Confidence),
		"source":      loc.Source,
		"exhausted":   loc.Exhausted,
		"resolved_at": loc.ResolvedAt.UTC().Format(time.RFC3339),
		"h3_cell":     cell.String(),
		"rejected":    len(loc.Rejected),
	}
	if loc.Address != "" {
		props["address"] = loc.Address
		props["address_geocoded"] = loc.AddressGeocoded
	}
	if loc.Coherence != nil {
		props["coherence"] = string(loc.Coherence.Status)
		if loc.Coherence.DistanceMeters != nil {
			props["coherence_distance_m"] = *loc.Coherence.DistanceMeters
		}
	}

	return &geojson.Feature{
		ID:         loc.Object.ID,
		Geometry:   geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat}),
		Properties: props,
	}, nil
}
