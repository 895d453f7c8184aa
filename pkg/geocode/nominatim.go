package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/resilience"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// DefaultUserAgent identifies requests to the public endpoint, which rejects
// anonymous clients.
const DefaultUserAgent = "georesolve/1.0"

// Option configures a NominatimClient.
type Option func(*NominatimClient)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *NominatimClient) { c.http = hc }
}

// WithBaseURL points the client at a self-hosted Nominatim.
func WithBaseURL(u string) Option {
	return func(c *NominatimClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *NominatimClient) { c.userAgent = ua }
}

// WithEmail adds the contact address Nominatim's usage policy asks for.
func WithEmail(email string) Option {
	return func(c *NominatimClient) { c.email = email }
}

// WithRateLimit sets a private requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *NominatimClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithLimiter shares one limiter across clients and goroutines. The public
// endpoint allows one request per second per application, not per object.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *NominatimClient) { c.limiter = l }
}

// WithCache enables answer caching.
func WithCache(cache Cache) Option {
	return func(c *NominatimClient) { c.cache = cache }
}

// WithPolicy sets the retry and timeout policy applied to each request.
func WithPolicy(p resilience.Policy) Option {
	return func(c *NominatimClient) { c.policy = p }
}

// WithLimit caps the number of places returned per search.
func WithLimit(n int) Option {
	return func(c *NominatimClient) { c.limit = n }
}

// NominatimClient implements Client against the Nominatim HTTP API.
type NominatimClient struct {
	http      *http.Client
	baseURL   string
	userAgent string
	email     string
	limit     int
	limiter   *rate.Limiter
	cache     Cache
	policy    resilience.Policy
}

// NewNominatimClient returns a client limited to one request per second.
func NewNominatimClient(opts ...Option) *NominatimClient {
	c := &NominatimClient{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		limit:     5,
		limiter:   rate.NewLimiter(1, 1),
		policy:    resilience.NewPolicy("nominatim", resilience.DefaultRetryConfig(), nil, 20*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type nominatimPlace struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Class       string            `json:"class"`
	Type        string            `json:"type"`
	Importance  float64           `json:"importance"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

func (p nominatimPlace) place() (Place, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Place{}, eris.Wrapf(err, "geocode: parse lat %q", p.Lat)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Place{}, eris.Wrapf(err, "geocode: parse lon %q", p.Lon)
	}
	return Place{
		Coordinate:  model.Coordinate{Lat: lat, Lng: lng},
		DisplayName: p.DisplayName,
		Class:       p.Class,
		Type:        p.Type,
		Importance:  p.Importance,
		Address:     p.Address,
	}, nil
}

// Search implements Client.
func (c *NominatimClient) Search(ctx context.Context, q Query) ([]Place, error) {
	if q.Text == "" && q.Street == "" {
		return nil, eris.New("geocode: empty query")
	}

	key := CacheKey(q)
	if c.cache != nil {
		places, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			zap.L().Warn("geocode: cache get failed", zap.Error(err))
		} else if ok {
			zap.L().Debug("geocode cache hit", zap.String("key", keyPrefix(key)), zap.Int("places", len(places)))
			return places, nil
		}
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("addressdetails", "1")
	if q.Structured() {
		params.Set("street", q.Street)
		if q.City != "" {
			params.Set("city", q.City)
		}
	} else {
		params.Set("q", q.Text)
	}
	if q.CountryCode != "" {
		params.Set("countrycodes", strings.ToLower(q.CountryCode))
	}

	var raw []nominatimPlace
	if err := c.get(ctx, "/search", params, &raw); err != nil {
		return nil, eris.Wrapf(err, "geocode: search %q", q.String())
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		p, err := r.place()
		if err != nil {
			zap.L().Debug("geocode: skipping unparseable place", zap.Error(err))
			continue
		}
		places = append(places, p)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, places); err != nil {
			zap.L().Warn("geocode: cache set failed", zap.Error(err))
		}
	}
	return places, nil
}

// Reverse implements Client. A coordinate Nominatim cannot place yields a nil
// place and a nil error.
func (c *NominatimClient) Reverse(ctx context.Context, coord model.Coordinate) (*Place, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("zoom", "18")
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', 7, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lng, 'f', 7, 64))

	var raw nominatimPlace
	if err := c.get(ctx, "/reverse", params, &raw); err != nil {
		return nil, eris.Wrapf(err, "geocode: reverse %s", coord)
	}
	if raw.Error != "" {
		zap.L().Debug("geocode: reverse found nothing", zap.Stringer("coordinate", coord), zap.String("reason", raw.Error))
		return nil, nil
	}
	p, err := raw.place()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *NominatimClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.email != "" {
		params.Set("email", c.email)
	}
	u := c.baseURL + path + "?" + params.Encode()

	return c.policy.Run(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return eris.Wrap(err, "create request")
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "http request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if err := resilience.CheckStatus("nominatim", resp.StatusCode); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return eris.Wrap(err, "decode response")
		}
		return nil
	})
}
