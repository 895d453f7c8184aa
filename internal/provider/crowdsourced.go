package provider

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/model"
)

// EvidenceOffset records the correction applied to crowdsourced positions.
const EvidenceOffset = "offset"

// Crowdsourced reads a community map whose positions carry a known,
// systematic offset, and removes it.
type Crowdsourced struct {
	tmpl      string
	latOffset float64
	lngOffset float64
	http      *http.Client
}

// NewCrowdsourced builds the provider. The offsets are added to every
// returned position.
func NewCrowdsourced(urlTemplate string, latOffset, lngOffset float64, hc *http.Client) (*Crowdsourced, error) {
	if urlTemplate == "" {
		return nil, eris.New("provider: crowdsourced has no url_template")
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Crowdsourced{tmpl: urlTemplate, latOffset: latOffset, lngOffset: lngOffset, http: hc}, nil
}

// Name implements Provider.
func (c *Crowdsourced) Name() string { return NameCrowdsourced }

// Resolve implements Provider.
func (c *Crowdsourced) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	u := expandURL(c.tmpl, ref)

	var rec point
	found, err := getJSON(ctx, c.http, NameCrowdsourced, u, "", &rec)
	if err != nil {
		return nil, unavailable(NameCrowdsourced, err)
	}
	raw, ok := rec.coordinate()
	if !found || !ok {
		return nil, nil
	}
	// A zero sentinel stays a zero sentinel; shifting it would make it look real.
	coord := raw
	if !raw.IsZero() {
		coord = model.Coordinate{Lat: raw.Lat + c.latOffset, Lng: raw.Lng + c.lngOffset}
	}

	return model.NewCandidate(NameCrowdsourced, coord).
		WithEvidence(model.EvidenceSourceURL, u).
		WithEvidence(model.EvidenceAddress, rec.Address).
		WithEvidence(EvidenceOffset, strconv.FormatFloat(c.latOffset, 'f', -1, 64)+","+strconv.FormatFloat(c.lngOffset, 'f', -1, 64)), nil
}
