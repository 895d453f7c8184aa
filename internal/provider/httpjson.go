package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/resilience"
)

// maxBody caps JSON and image downloads.
const maxBody = 20 << 20

// expandURL fills {id}, {region} and {number} in a URL template.
func expandURL(tmpl string, ref model.ObjectRef) string {
	return strings.NewReplacer(
		"{id}", url.PathEscape(ref.ID),
		"{region}", url.PathEscape(ref.RegionCode),
		"{number}", url.PathEscape(ref.Number()),
	).Replace(tmpl)
}

// getJSON fetches u into out. It reports found=false on 404 so sources
// without the object are absences, not failures.
func getJSON(ctx context.Context, hc *http.Client, service, u, apiKey string, out any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, eris.Wrapf(err, "%s: create request", service)
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return false, eris.Wrapf(err, "%s: http request", service)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := resilience.CheckStatus(service, resp.StatusCode); err != nil {
		return false, err
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return false, eris.Wrapf(err, "%s: decode response", service)
	}
	return true, nil
}

// flexFloat accepts JSON numbers and numeric strings, the two shapes
// catalog sites emit for coordinates.
type flexFloat struct {
	v   float64
	set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return eris.Wrapf(err, "parse coordinate %q", s)
	}
	f.v, f.set = v, true
	return nil
}

// point is the coordinate record catalog-like sources return. Field names
// vary between sources.
type point struct {
	Lat       flexFloat `json:"lat"`
	Latitude  flexFloat `json:"latitude"`
	Lng       flexFloat `json:"lng"`
	Lon       flexFloat `json:"lon"`
	Longitude flexFloat `json:"longitude"`
	Address   string    `json:"address"`
	Accuracy  float64   `json:"accuracy"`
	URL       string    `json:"url"`
}

// coordinate returns the point's position, or false when either axis is
// missing.
func (p point) coordinate() (model.Coordinate, bool) {
	lat := pick(p.Lat, p.Latitude)
	lng := pick(p.Lng, p.Lon, p.Longitude)
	if !lat.set || !lng.set {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Lat: lat.v, Lng: lng.v}, true
}

func pick(fs ...flexFloat) flexFloat {
	for _, f := range fs {
		if f.set {
			return f
		}
	}
	return flexFloat{}
}
