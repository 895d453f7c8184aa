package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/provider"
	"github.com/sells-group/georesolve/pkg/geocode"
)

func coord(lat, lng float64) *model.Coordinate {
	return &model.Coordinate{Lat: lat, Lng: lng}
}

// stage returns a provider answering c, or nothing when c is nil.
func stage(name string, c *model.Coordinate) provider.Func {
	return provider.Func{ProviderName: name, Fn: func(context.Context, model.ObjectRef) (*model.Candidate, error) {
		if c == nil {
			return nil, nil
		}
		return model.NewCandidate(name, *c), nil
	}}
}

func failing(name string, err error) provider.Func {
	return provider.Func{ProviderName: name, Fn: func(context.Context, model.ObjectRef) (*model.Candidate, error) {
		return nil, err
	}}
}

// counting wraps a provider and counts its calls.
type counting struct {
	provider.Provider
	mu    sync.Mutex
	calls int
}

func (c *counting) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Provider.Resolve(ctx, ref)
}

func (c *counting) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func testValidator(t *testing.T) *geo.Validator {
	t.Helper()
	v, err := geo.NewValidator(geo.DefaultTable())
	require.NoError(t, err)
	return v
}

func newTestResolver(t *testing.T, cfg Config, stages ...provider.Provider) *Resolver {
	t.Helper()
	r, err := NewResolver(cfg, testValidator(t), stages...)
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return r
}

func rejectionFor(loc *model.ResolvedLocation, name string) *model.Rejection {
	for i := range loc.Rejected {
		if loc.Rejected[i].Provider == name {
			return &loc.Rejected[i]
		}
	}
	return nil
}

// fakeImages serves fixed bytes for any URL it knows.
type fakeImages map[string][]byte

func (f fakeImages) Fetch(_ context.Context, url string) ([]byte, error) {
	if b, ok := f[url]; ok {
		return b, nil
	}
	return nil, errors.New("images: unexpected status 404")
}

// fakeOCR returns the text registered for an image's bytes.
type fakeOCR map[string]string

func (f fakeOCR) ExtractText(_ context.Context, img []byte) (string, error) {
	return f[string(img)], nil
}

// fakeGeocoder answers any query mentioning a known street.
type fakeGeocoder struct {
	mu      sync.Mutex
	streets map[string]geocode.Place
	queries []string
	reverse *geocode.Place
}

func (f *fakeGeocoder) Search(_ context.Context, q geocode.Query) ([]geocode.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q.String())
	text := strings.ToLower(q.String())
	for street, p := range f.streets {
		if strings.Contains(text, street) {
			return []geocode.Place{p}, nil
		}
	}
	return nil, nil
}

func (f *fakeGeocoder) Reverse(context.Context, model.Coordinate) (*geocode.Place, error) {
	return f.reverse, nil
}
