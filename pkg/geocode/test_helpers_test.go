package geocode

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/resilience"
)

// newTestLimiter creates a rate limiter that effectively does not limit for tests.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// newTestPolicy retries quickly so tests exercising 5xx stay fast.
func newTestPolicy() resilience.Policy {
	return resilience.NewPolicy("nominatim", resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}, nil, time.Second)
}

// newRewriteClient creates an HTTP client that rewrites requests to a test server URL.
// All requests matching the target prefix are redirected to the test server.
func newRewriteClient(testServerURL, targetPrefix string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:         http.DefaultTransport,
			testServer:   testServerURL,
			targetPrefix: targetPrefix,
		},
	}
}

type rewriteTransport struct {
	base         http.RoundTripper
	testServer   string
	targetPrefix string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	origURL := req.URL.String()
	if strings.HasPrefix(origURL, t.targetPrefix) {
		suffix := origURL[len(t.targetPrefix):]
		newReq := req.Clone(req.Context())
		parsed, err := req.URL.Parse(t.testServer + suffix)
		if err != nil {
			return nil, err
		}
		newReq.URL = parsed
		newReq.Host = parsed.Host
		return t.base.RoundTrip(newReq)
	}
	return t.base.RoundTrip(req)
}

// fakeClient answers Search from a map keyed by Query.String().
type fakeClient struct {
	mu      sync.Mutex
	answers map[string][]Place
	errs    map[string]error
	queries []Query
}

func (f *fakeClient) Search(_ context.Context, q Query) ([]Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err := f.errs[q.String()]; err != nil {
		return nil, err
	}
	return f.answers[q.String()], nil
}

func (f *fakeClient) Reverse(context.Context, model.Coordinate) (*Place, error) {
	return nil, nil
}

func place(lat, lng float64, name string) Place {
	return Place{Coordinate: model.Coordinate{Lat: lat, Lng: lng}, DisplayName: name}
}
