// Package provider adapts each evidence source (catalogs, crowdsourced maps,
// photo metadata, EXIF, OCR, vision, operator input) to one interface that
// yields at most one candidate coordinate per object.
package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/model"
)

// Provider names used in candidates, rejections and config.
const (
	NameCatalogA      = "catalog_a"
	NameCatalogB      = "catalog_b"
	NameCrowdsourced  = "crowdsourced"
	NamePhotoMetadata = "photo_metadata"
	NameEXIF          = "exif"
	NameOCR           = "ocr"
	NameVision        = "vision"
	NameInteractive   = "interactive"
)

// Provider resolves an object to a candidate. A nil candidate with a nil
// error means the source has nothing for the object. Errors wrap one of the
// model sentinels so the pipeline can record why the source failed.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error)
}

// Func adapts a function to Provider.
type Func struct {
	ProviderName string
	Fn           func(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error)
}

// Name implements Provider.
func (f Func) Name() string { return f.ProviderName }

// Resolve implements Provider.
func (f Func) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	return f.Fn(ctx, ref)
}

// Registry maps provider names to providers.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Provider
}

// NewRegistry registers the given providers.
func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{m: make(map[string]Provider)}
	for _, p := range ps {
		r.Register(p)
	}
	return r
}

// Register adds or replaces p under its name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[p.Name()] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[name]
	return p, ok
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.m))
	for n := range r.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Ordered returns the providers for names in order. Unknown names are an
// error so a typo in the stage list fails at startup.
func (r *Registry) Ordered(names ...string) ([]Provider, error) {
	out := make([]Provider, 0, len(names))
	for _, n := range names {
		p, ok := r.Get(n)
		if !ok {
			return nil, eris.Errorf("provider: %q not registered", n)
		}
		out = append(out, p)
	}
	return out, nil
}

// DefaultOrder is the fallback chain, most trusted source first.
var DefaultOrder = []string{
	NameCatalogA,
	NameCatalogB,
	NameCrowdsourced,
	NamePhotoMetadata,
	NameEXIF,
	NameOCR,
	NameVision,
	NameInteractive,
}
