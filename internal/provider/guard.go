package provider

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/resilience"
)

// Guarded runs a provider under a resilience policy. Failures that are not
// already classified become ErrProviderUnavailable.
type Guarded struct {
	inner  Provider
	policy resilience.Policy
}

// Guard wraps p with policy.
func Guard(p Provider, policy resilience.Policy) *Guarded {
	if policy.Name == "" {
		policy.Name = p.Name()
	}
	return &Guarded{inner: p, policy: policy}
}

// Name implements Provider.
func (g *Guarded) Name() string { return g.inner.Name() }

// Unwrap returns the wrapped provider.
func (g *Guarded) Unwrap() Provider { return g.inner }

// Resolve implements Provider.
func (g *Guarded) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	c, err := resilience.Call(ctx, g.policy, func(ctx context.Context) (*model.Candidate, error) {
		return g.inner.Resolve(ctx, ref)
	})
	if err == nil {
		return c, nil
	}
	if classified(err) || ctx.Err() != nil {
		return nil, err
	}
	return nil, unavailable(g.inner.Name(), err)
}

func classified(err error) bool {
	return errors.Is(err, model.ErrProviderUnavailable) ||
		errors.Is(err, model.ErrGeocodingAmbiguous) ||
		errors.Is(err, model.ErrNeedsInput) ||
		errors.Is(err, model.ErrInvalidCoordinate) ||
		errors.Is(err, model.ErrRegionMismatch)
}

// unavailable wraps err as ErrProviderUnavailable for provider name.
func unavailable(name string, err error) error {
	return eris.Wrap(model.Classify(model.ErrProviderUnavailable, err), name)
}
