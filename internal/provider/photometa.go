package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/model"
)

// PhotoMetadata queries a photo-sharing service for geotagged photos of the
// object and takes the most accurate usable geotag.
type PhotoMetadata struct {
	tmpl   string
	apiKey string
	http   *http.Client
}

// NewPhotoMetadata builds the provider.
func NewPhotoMetadata(urlTemplate, apiKey string, hc *http.Client) (*PhotoMetadata, error) {
	if urlTemplate == "" {
		return nil, eris.New("provider: photo metadata has no url_template")
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &PhotoMetadata{tmpl: urlTemplate, apiKey: apiKey, http: hc}, nil
}

// Name implements Provider.
func (p *PhotoMetadata) Name() string { return NamePhotoMetadata }

type photoSearch struct {
	Photos []point `json:"photos"`
}

// Resolve implements Provider. Zero geotags are skipped here since photo
// services fill missing positions with (0,0).
func (p *PhotoMetadata) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	u := expandURL(p.tmpl, ref)

	var res photoSearch
	found, err := getJSON(ctx, p.http, NamePhotoMetadata, u, p.apiKey, &res)
	if err != nil {
		return nil, unavailable(NamePhotoMetadata, err)
	}
	if !found {
		return nil, nil
	}

	var best *point
	var bestCoord model.Coordinate
	for i := range res.Photos {
		c, ok := res.Photos[i].coordinate()
		if !ok || c.IsZero() {
			continue
		}
		if best == nil || res.Photos[i].Accuracy > best.Accuracy {
			best, bestCoord = &res.Photos[i], c
		}
	}
	if best == nil {
		return nil, nil
	}

	src := best.URL
	if src == "" {
		src = u
	}
	return model.NewCandidate(NamePhotoMetadata, bestCoord).
		WithEvidence(model.EvidenceSourceURL, src).
		WithEvidence(model.EvidenceAddress, best.Address), nil
}
