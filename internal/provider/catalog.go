package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/model"
)

// HTTPCatalog reads an object's published coordinate from a catalog that
// serves one JSON record per object.
type HTTPCatalog struct {
	name   string
	tmpl   string
	apiKey string
	http   *http.Client
}

// NewHTTPCatalog builds a catalog provider. urlTemplate holds {id}, {region}
// or {number} placeholders.
func NewHTTPCatalog(name, urlTemplate, apiKey string, hc *http.Client) (*HTTPCatalog, error) {
	if urlTemplate == "" {
		return nil, eris.Errorf("provider: catalog %s has no url_template", name)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPCatalog{name: name, tmpl: urlTemplate, apiKey: apiKey, http: hc}, nil
}

// Name implements Provider.
func (c *HTTPCatalog) Name() string { return c.name }

// Resolve implements Provider.
func (c *HTTPCatalog) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	u := expandURL(c.tmpl, ref)

	var rec point
	found, err := getJSON(ctx, c.http, c.name, u, c.apiKey, &rec)
	if err != nil {
		return nil, unavailable(c.name, err)
	}
	coord, ok := rec.coordinate()
	if !found || !ok {
		zap.L().Debug("provider: catalog has no coordinate", zap.String("provider", c.name), zap.String("object", ref.ID))
		return nil, nil
	}

	return model.NewCandidate(c.name, coord).
		WithEvidence(model.EvidenceSourceURL, u).
		WithEvidence(model.EvidenceAddress, rec.Address), nil
}
