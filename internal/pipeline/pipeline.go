// Package pipeline resolves an object's coordinate by walking an ordered
// chain of providers, validating every candidate against the object's
// region and grading the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/georesolve/internal/coherence"
	"github.com/sells-group/georesolve/internal/config"
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/provider"
	"github.com/sells-group/georesolve/pkg/geocode"
)

// Defaults applied to a zero Config.
const (
	DefaultStageTimeout = 20 * time.Second
	DefaultSessionTTL   = time.Hour
)

// Config tunes a Resolver.
type Config struct {
	// ProviderDelay is the minimum gap between two provider calls for the
	// same object.
	ProviderDelay time.Duration
	// StageTimeout bounds each provider call.
	StageTimeout time.Duration
	TieBreak     TieBreak
	// SessionTTL is how long a suspended run waits for operator input.
	SessionTTL time.Duration
}

// ConfigFrom converts the pipeline section of the loaded configuration.
func ConfigFrom(c config.PipelineConfig) (Config, error) {
	tb, err := ParseTieBreak(c.TieBreak)
	if err != nil {
		return Config{}, err
	}
	return Config{
		ProviderDelay: c.ProviderDelay(),
		StageTimeout:  c.ProviderTimeout(),
		TieBreak:      tb,
		SessionTTL:    time.Duration(c.SessionTTLMins) * time.Minute,
	}, nil
}

func (c Config) withDefaults() Config {
	if c.StageTimeout <= 0 {
		c.StageTimeout = DefaultStageTimeout
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.TieBreak == "" {
		c.TieBreak = PreferA
	}
	return c
}

// Step results recorded in an Outcome trace.
const (
	ResultAccepted   = "accepted"
	ResultRejected   = "rejected"
	ResultAbsent     = "absent"
	ResultFailed     = "failed"
	ResultNeedsInput = "needs_input"
	ResultSkipped    = "skipped"
)

// Step is one visited state of a run.
type Step struct {
	State      State  `json:"state"`
	Result     string `json:"result"`
	DurationMs int64  `json:"duration_ms"`
}

// Outcome is the result of driving a run until it resolves or suspends.
type Outcome struct {
	Object   model.ObjectRef         `json:"object"`
	Location *model.ResolvedLocation `json:"location,omitempty"`

	// Suspended runs wait for operator input under Token. Rejected carries
	// what the run has discarded so far, for the operator's benefit.
	Suspended bool              `json:"suspended,omitempty"`
	Token     string            `json:"token,omitempty"`
	Rejected  []model.Rejection `json:"rejected,omitempty"`

	Trace []Step `json:"trace"`

	// Err is set by Batch for objects that could not be run at all.
	Err error `json:"-"`
}

// Resolver runs the state machine. It is safe for concurrent use; each
// object's run owns its own state.
type Resolver struct {
	cfg       Config
	validator *geo.Validator
	catalogA  provider.Provider
	catalogB  provider.Provider
	fallbacks []provider.Provider
	reverse   geocode.Client
	now       func() time.Time

	sessions  *sessions
	abandoned Sink
}

// NewResolver builds a resolver over stages. Catalog A and B are recognized
// by name wherever they appear; every other stage is a fallback, tried in
// the given order.
func NewResolver(cfg Config, v *geo.Validator, stages ...provider.Provider) (*Resolver, error) {
	if v == nil {
		return nil, eris.Wrap(model.ErrMissingRegionTable, "pipeline: new resolver")
	}
	r := &Resolver{
		cfg:       cfg.withDefaults(),
		validator: v,
		now:       time.Now,
	}
	r.sessions = newSessions(r.cfg.SessionTTL, func() time.Time { return r.now() }, r.expireSession)

	seen := make(map[string]bool, len(stages))
	for _, p := range stages {
		if p == nil {
			continue
		}
		name := p.Name()
		if seen[name] {
			return nil, eris.Errorf("pipeline: stage %q listed twice", name)
		}
		seen[name] = true
		switch name {
		case provider.NameCatalogA:
			r.catalogA = p
		case provider.NameCatalogB:
			r.catalogB = p
		default:
			r.fallbacks = append(r.fallbacks, p)
		}
	}
	return r, nil
}

// WithReverseGeocoder enables best-effort reverse lookups for resolutions
// that carry no address.
func (r *Resolver) WithReverseGeocoder(c geocode.Client) *Resolver {
	r.reverse = c
	return r
}

// Stages lists the stage names in execution order.
func (r *Resolver) Stages() []string {
	var out []string
	for _, p := range []provider.Provider{r.catalogA, r.catalogB} {
		if p != nil {
			out = append(out, p.Name())
		}
	}
	for _, p := range r.fallbacks {
		out = append(out, p.Name())
	}
	return out
}

// run is the per-object state of one pass through the machine.
type run struct {
	ref       model.ObjectRef
	region    geo.RegionProfile
	log       *zap.Logger
	limiter   *rate.Limiter
	rejected  []model.Rejection
	trace     []Step
	coherence coherence.Result
	next      int
}

func (ru *run) step(s State, result string, d time.Duration) {
	ru.trace = append(ru.trace, Step{State: s, Result: result, DurationMs: d.Milliseconds()})
}

func (ru *run) reject(name string, c *model.Coordinate, reason model.RejectReason, detail string, dist *float64) {
	ru.rejected = append(ru.rejected, model.Rejection{
		Provider:       name,
		Coordinate:     c,
		Reason:         reason,
		Detail:         detail,
		DistanceMeters: dist,
	})
	ru.log.Info("pipeline: candidate rejected",
		zap.String("stage", name),
		zap.String("reason", string(reason)),
		zap.String("detail", detail),
	)
}

// Resolve runs ref through the chain. It errors only for a malformed ref or
// a canceled ctx; every other failure is recorded on the result. A region
// missing from the table is resolved without validation and, when
// exhausted, without a placeholder coordinate.
func (r *Resolver) Resolve(ctx context.Context, ref model.ObjectRef) (*Outcome, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	region, ok := r.validator.Table().Lookup(ref.RegionCode)
	if !ok {
		region = geo.RegionProfile{Code: ref.RegionCode, Unbounded: true}
		zap.L().Warn("pipeline: region not in table", zap.String("object", ref.ID), zap.String("region", ref.RegionCode))
	}

	ru := &run{
		ref:     ref,
		region:  region,
		log:     zap.L().With(zap.String("object", ref.ID)),
		limiter: delayLimiter(r.cfg.ProviderDelay),
	}
	ru.log.Info("pipeline: resolving", zap.String("region", region.Code))

	a, err := r.attempt(ctx, ru, r.catalogA)
	if err != nil {
		return nil, err
	}
	b, err := r.attempt(ctx, ru, r.catalogB)
	if err != nil {
		return nil, err
	}
	ru.coherence = coherence.Check(a, b)

	if a != nil && b != nil {
		return r.resolveCoherent(ctx, ru, a, b), nil
	}
	if single := firstCandidate(a, b); single != nil {
		return r.finish(ctx, ru, single, ConfidenceFor(State(single.Provider), ru.coherence.Status)), nil
	}
	return r.fallback(ctx, ru)
}

func firstCandidate(cs ...*model.Candidate) *model.Candidate {
	for _, c := range cs {
		if c != nil {
			return c
		}
	}
	return nil
}

func delayLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// resolveCoherent grades the two catalogs and applies the tie-break.
func (r *Resolver) resolveCoherent(ctx context.Context, ru *run, a, b *model.Candidate) *Outcome {
	res := ru.coherence
	ru.step(StateCoherence, string(res.Status), 0)
	ru.log.Info("pipeline: catalogs compared",
		zap.String("stage", string(StateCoherence)),
		zap.String("status", string(res.Status)),
		zap.Float64("distance_m", *res.DistanceMeters),
	)

	chosen, loser := r.cfg.TieBreak.pick(a, b, res)
	if loser != nil {
		c := loser.Coordinate
		ru.reject(loser.Provider, &c, model.RejectCoherenceLoser,
			fmt.Sprintf("%s agreement, %.1f m from %s", res.Status, *res.DistanceMeters, chosen.Provider),
			res.DistanceMeters)
	}
	return r.finish(ctx, ru, chosen, ConfidenceFor(StateCoherence, res.Status))
}

// fallback tries the remaining stages from ru.next. A stage that needs
// operator input suspends the run.
func (r *Resolver) fallback(ctx context.Context, ru *run) (*Outcome, error) {
	for ru.next < len(r.fallbacks) {
		p := r.fallbacks[ru.next]
		ru.next++

		c, err := r.attempt(ctx, ru, p)
		if errors.Is(err, model.ErrNeedsInput) {
			if _, ok := applierOf(p); ok {
				return r.suspend(ru, p), nil
			}
			ru.reject(p.Name(), nil, model.RejectNoData, "stage needs input but cannot accept it", nil)
			continue
		}
		if err != nil {
			return nil, err
		}
		if c != nil {
			return r.finish(ctx, ru, c, ConfidenceFor(State(p.Name()), ru.coherence.Status)), nil
		}
	}
	return r.unresolved(ru), nil
}

// attempt calls p under the per-object delay and the stage timeout, then
// validates what it returned. Only ErrNeedsInput and cancellation of ctx
// come back as errors.
func (r *Resolver) attempt(ctx context.Context, ru *run, p provider.Provider) (*model.Candidate, error) {
	if p == nil {
		return nil, nil
	}
	if err := ru.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(err, "pipeline: %s: wait before %s", ru.ref.ID, p.Name())
	}

	sctx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
	start := time.Now()
	c, err := p.Resolve(sctx, ru.ref)
	cancel()

	return r.check(ctx, ru, p.Name(), c, err, time.Since(start))
}

// check classifies a provider answer, recording rejections and the trace.
func (r *Resolver) check(ctx context.Context, ru *run, name string, c *model.Candidate, err error, d time.Duration) (*model.Candidate, error) {
	state := State(name)
	switch {
	case errors.Is(err, model.ErrNeedsInput):
		ru.step(state, ResultNeedsInput, d)
		return nil, err
	case err != nil && ctx.Err() != nil:
		ru.step(state, ResultFailed, d)
		return nil, eris.Wrapf(ctx.Err(), "pipeline: %s: canceled during %s", ru.ref.ID, name)
	case err != nil:
		ru.step(state, ResultFailed, d)
		reason := model.RejectProviderError
		if errors.Is(err, model.ErrGeocodingAmbiguous) {
			reason = model.RejectGeocodingAmbiguous
		}
		ru.log.Warn("pipeline: provider failed", zap.String("stage", name), zap.Error(err))
		ru.reject(name, nil, reason, err.Error(), nil)
		return nil, nil
	case c == nil:
		ru.step(state, ResultAbsent, d)
		ru.reject(name, nil, model.RejectNoData, "", nil)
		return nil, nil
	}

	if c.Provider == "" {
		c.Provider = name
	}
	vr := r.validator.Validate(c.Coordinate, ru.ref.RegionCode)
	if !vr.Valid {
		ru.step(state, ResultRejected, d)
		reason := model.RejectInvalidCoordinate
		if vr.DistanceMeters != nil {
			reason = model.RejectRegionMismatch
		}
		coord := c.Coordinate
		ru.reject(name, &coord, reason, vr.Reason, vr.DistanceMeters)
		return nil, nil
	}

	ru.step(state, ResultAccepted, d)
	ru.log.Debug("pipeline: candidate accepted", zap.String("stage", name), zap.Stringer("coordinate", c.Coordinate))
	return c, nil
}

// finish builds the resolved location for c.
func (r *Resolver) finish(ctx context.Context, ru *run, c *model.Candidate, conf model.Confidence) *Outcome {
	loc := &model.ResolvedLocation{
		Object:     ru.ref,
		Coordinate: c.Coordinate,
		Confidence: conf,
		Source:     c.Provider,
		Address:    addressOf(c),
		Coherence:  ru.coherence.Summary(),
		Rejected:   ru.rejected,
		ResolvedAt: r.now().UTC(),
	}
	if loc.Address == "" {
		r.reverseAddress(ctx, ru, loc)
	}
	ru.step(StateResolved, string(conf), 0)
	ru.log.Info("pipeline: resolved",
		zap.String("source", loc.Source),
		zap.String("confidence", string(loc.Confidence)),
		zap.Int("rejected", len(loc.Rejected)),
	)
	return &Outcome{Object: ru.ref, Location: loc, Trace: ru.trace}
}

// reverseAddress fills loc.Address from the reverse geocoder. Failures are
// logged and ignored.
func (r *Resolver) reverseAddress(ctx context.Context, ru *run, loc *model.ResolvedLocation) {
	if r.reverse == nil {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
	defer cancel()

	place, err := r.reverse.Reverse(rctx, loc.Coordinate)
	if err != nil {
		ru.log.Warn("pipeline: reverse geocode failed", zap.Error(err))
		return
	}
	if place == nil {
		return
	}
	if addr := place.ShortAddress(); addr != "" {
		loc.Address = addr
		loc.AddressGeocoded = true
	}
}

// unresolved builds the region-center placeholder. Unbounded regions have
// no meaningful center, so their placeholder carries no coordinate.
func (r *Resolver) unresolved(ru *run) *Outcome {
	now := r.now().UTC()
	loc := &model.ResolvedLocation{
		Object:      ru.ref,
		Confidence:  ConfidenceFor(StateUnresolved, ru.coherence.Status),
		Source:      model.SourceNone,
		Coherence:   ru.coherence.Summary(),
		Rejected:    ru.rejected,
		Exhausted:   true,
		ExhaustedAt: &now,
		ResolvedAt:  now,
	}
	if !ru.region.Unbounded {
		loc.Coordinate = ru.region.Center()
		loc.Source = model.SourceRegionCenter
	}
	ru.step(StateUnresolved, string(loc.Confidence), 0)
	ru.log.Warn("pipeline: all sources exhausted",
		zap.String("region", ru.region.Code),
		zap.Int("rejected", len(loc.Rejected)),
	)
	return &Outcome{Object: ru.ref, Location: loc, Trace: ru.trace}
}
