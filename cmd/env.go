package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/address"
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/monitoring"
	"github.com/sells-group/georesolve/internal/ocr"
	"github.com/sells-group/georesolve/internal/pipeline"
	"github.com/sells-group/georesolve/internal/provider"
	"github.com/sells-group/georesolve/internal/resilience"
	"github.com/sells-group/georesolve/internal/store"
	"github.com/sells-group/georesolve/internal/vision"
	anthropicpkg "github.com/sells-group/georesolve/pkg/anthropic"
	"github.com/sells-group/georesolve/pkg/geocode"
)

// resolverEnv holds the store, geocoder and resolver needed by the
// resolve, exhausted and serve commands.
type resolverEnv struct {
	Table     *geo.Table
	Validator *geo.Validator
	Store     store.Store
	Geocoder  *geocode.NominatimClient
	Resolver  *pipeline.Resolver

	redis    *geocode.RedisCache
	breakers *resilience.Breakers
}

// Close releases resources held by the environment.
func (e *resolverEnv) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// loadTable returns the built-in regions with the configured override file
// and per-region locale overrides applied.
func loadTable() (*geo.Table, error) {
	table, err := geo.LoadTable(cfg.Regions.Path, geo.DefaultTable())
	if err != nil {
		return nil, err
	}
	if len(cfg.Pipeline.Locales) == 0 {
		return table, nil
	}

	overrides := make([]geo.RegionProfile, 0, len(cfg.Pipeline.Locales))
	for code, loc := range cfg.Pipeline.Locales {
		p, ok := table.Lookup(code)
		if !ok {
			return nil, eris.Errorf("locale override for unknown region %q", code)
		}
		p.Locale = geo.ParseLocale(loc)
		overrides = append(overrides, p)
	}
	return table.Merge(overrides), nil
}

// initResolver opens the store, builds the geocoder and every configured
// provider, and assembles the Resolver. Callers should defer env.Close().
func initResolver(ctx context.Context) (*resolverEnv, error) {
	table, err := loadTable()
	if err != nil {
		return nil, err
	}
	validator, err := geo.NewValidator(table)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	env := &resolverEnv{Table: table, Validator: validator, Store: st}

	cache, err := env.geocodeCache(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}

	breakers := resilience.NewBreakers(cfg.Circuit.Breaker())
	env.breakers = breakers
	policy := func(name string, timeout time.Duration) resilience.Policy {
		return resilience.NewPolicy(name, cfg.Retry.Schedule(), breakers.Get(name), timeout)
	}

	gcOpts := []geocode.Option{
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithEmail(cfg.Geocode.Email),
		geocode.WithRateLimit(cfg.Geocode.RateLimitRPS),
		geocode.WithPolicy(policy("nominatim", cfg.Geocode.Timeout())),
	}
	if cache != nil {
		gcOpts = append(gcOpts, geocode.WithCache(cache))
	}
	env.Geocoder = geocode.NewNominatimClient(gcOpts...)

	reg, err := buildProviders(table, geocode.NewSelector(env.Geocoder, validator))
	if err != nil {
		env.Close()
		return nil, err
	}

	stages, err := orderedStages(reg, func(p provider.Provider) provider.Provider {
		if p.Name() == provider.NameInteractive {
			return p
		}
		return provider.Guard(p, policy(p.Name(), cfg.Pipeline.ProviderTimeout()))
	})
	if err != nil {
		env.Close()
		return nil, err
	}

	pcfg, err := pipeline.ConfigFrom(cfg.Pipeline)
	if err != nil {
		env.Close()
		return nil, err
	}
	res, err := pipeline.NewResolver(pcfg, validator, stages...)
	if err != nil {
		env.Close()
		return nil, err
	}
	if cfg.Geocode.Reverse {
		res.WithReverseGeocoder(env.Geocoder)
	}
	if env.Store != nil {
		res.WithAbandoned(storeSink(env.Store))
	}
	env.Resolver = res

	zap.L().Info("resolver ready",
		zap.Strings("stages", res.Stages()),
		zap.Int("regions", table.Len()),
		zap.String("store", cfg.Store.Driver),
		zap.String("geocode_cache", cfg.Geocode.Cache.Driver),
	)
	return env, nil
}

// alert evaluates a finished batch and posts any alerts to the webhook.
func (e *resolverEnv) alert(ctx context.Context, stats pipeline.Stats) {
	snap := &monitoring.Snapshot{Stats: stats}
	if e.breakers != nil {
		snap.OpenCircuits = e.breakers.Open()
	}
	a := monitoring.NewAlerter(cfg.Monitoring)
	alerts := a.Evaluate(snap)
	for _, al := range alerts {
		zap.L().Warn("batch alert", zap.String("type", string(al.Type)), zap.String("message", al.Message))
	}
	a.SendAlerts(ctx, alerts)
}

func (e *resolverEnv) geocodeCache(ctx context.Context) (geocode.Cache, error) {
	ttl := time.Duration(cfg.Geocode.Cache.TTLHours) * time.Hour
	switch cfg.Geocode.Cache.Driver {
	case "", "none":
		return nil, nil
	case "store":
		return store.NewGeocodeCache(e.Store, ttl), nil
	case "redis":
		rc, err := geocode.DialRedisCache(ctx, cfg.Redis.URL, ttl)
		if err != nil {
			return nil, err
		}
		e.redis = rc
		return rc, nil
	default:
		return nil, eris.Errorf("unsupported geocode cache driver: %s", cfg.Geocode.Cache.Driver)
	}
}

// buildProviders registers every provider whose configuration is present.
func buildProviders(table *geo.Table, sel *geocode.Selector) (*provider.Registry, error) {
	hc := &http.Client{Timeout: cfg.Pipeline.ProviderTimeout()}
	reg := provider.NewRegistry()

	catalogs := []struct {
		name string
		conf string
		key  string
	}{
		{provider.NameCatalogA, cfg.Catalogs.A.URLTemplate, cfg.Catalogs.A.APIKey},
		{provider.NameCatalogB, cfg.Catalogs.B.URLTemplate, cfg.Catalogs.B.APIKey},
	}
	for _, c := range catalogs {
		if c.conf == "" {
			zap.L().Warn("catalog not configured", zap.String("provider", c.name))
			continue
		}
		p, err := provider.NewHTTPCatalog(c.name, c.conf, c.key, hc)
		if err != nil {
			return nil, err
		}
		reg.Register(p)
	}

	if cfg.Crowdsourced.URLTemplate != "" {
		p, err := provider.NewCrowdsourced(cfg.Crowdsourced.URLTemplate, cfg.Crowdsourced.LatOffset, cfg.Crowdsourced.LngOffset, hc)
		if err != nil {
			return nil, err
		}
		reg.Register(p)
	}

	if cfg.PhotoMeta.URLTemplate != "" {
		p, err := provider.NewPhotoMetadata(cfg.PhotoMeta.URLTemplate, cfg.PhotoMeta.APIKey, hc)
		if err != nil {
			return nil, err
		}
		reg.Register(p)
	}

	images := provider.NewHTTPImages(hc)
	reg.Register(provider.NewEXIFProvider(images))

	extractor, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		return nil, err
	}
	engine := address.NewEngine(address.WithWeights(cfg.Pipeline.Weights))
	reg.Register(provider.NewOCRProvider(images, extractor, engine, sel, table))

	if cfg.Vision.Enabled {
		if cfg.Vision.Key == "" {
			return nil, eris.New("vision enabled but GEORESOLVE_VISION_ANTHROPIC_API_KEY not set")
		}
		analyzer := vision.NewAnalyzer(anthropicpkg.NewClient(cfg.Vision.Key), cfg.Vision.Model, cfg.Vision.MaxTokens, cfg.Vision.MaxImagePx)
		reg.Register(provider.NewVisionProvider(images, analyzer, sel, table))
	}

	reg.Register(provider.NewInteractive(sel, table))
	return reg, nil
}

// orderedStages applies the configured stage list. Without one, every
// registered provider runs in the default order.
func orderedStages(reg *provider.Registry, wrap func(provider.Provider) provider.Provider) ([]provider.Provider, error) {
	var ps []provider.Provider
	if len(cfg.Pipeline.Stages) > 0 {
		var err error
		ps, err = reg.Ordered(cfg.Pipeline.Stages...)
		if err != nil {
			return nil, err
		}
	} else {
		for _, name := range provider.DefaultOrder {
			if p, ok := reg.Get(name); ok {
				ps = append(ps, p)
			}
		}
	}

	out := make([]provider.Provider, len(ps))
	for i, p := range ps {
		out[i] = wrap(p)
	}
	return out, nil
}
