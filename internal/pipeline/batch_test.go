package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/provider"
)

func TestBatch_Run(t *testing.T) {
	byID := map[string]*model.Coordinate{
		"PA_1": coord(48.86, 2.34),
		"PA_2": nil,
		"PA_3": coord(51.5, -0.12),
	}
	catA := provider.Func{ProviderName: provider.NameCatalogA, Fn: func(_ context.Context, ref model.ObjectRef) (*model.Candidate, error) {
		c := byID[ref.ID]
		if c == nil {
			return nil, nil
		}
		return model.NewCandidate(provider.NameCatalogA, *c), nil
	}}
	r := newTestResolver(t, Config{}, catA, stage(provider.NameCatalogB, coord(48.8601, 2.3401)))

	var mu sync.Mutex
	var saved []string
	b := &Batch{Resolver: r, Concurrency: 2, Sink: func(_ context.Context, o *Outcome) error {
		mu.Lock()
		defer mu.Unlock()
		saved = append(saved, o.Object.ID)
		return nil
	}}

	refs := []model.ObjectRef{
		model.MustParseObjectRef("PA_1"),
		model.MustParseObjectRef("PA_2"),
		model.MustParseObjectRef("PA_3"),
		{ID: "broken"},
	}
	out, stats := b.Run(context.Background(), refs)
	require.Len(t, out, 4)

	assert.Equal(t, model.ConfidenceHigh, out[0].Location.Confidence)
	assert.Equal(t, model.ConfidenceMedium, out[1].Location.Confidence)
	assert.Equal(t, provider.NameCatalogB, out[1].Location.Source)
	assert.Equal(t, model.ConfidenceMedium, out[2].Location.Confidence)
	assert.Equal(t, provider.NameCatalogB, out[2].Location.Source)
	assert.ErrorIs(t, out[3].Err, model.ErrMalformedObject)
	assert.ElementsMatch(t, []string{"PA_1", "PA_2", "PA_3"}, saved)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.ByConfidence[model.ConfidenceHigh])
	assert.Equal(t, 2, stats.ByConfidence[model.ConfidenceMedium])
	assert.Equal(t, 1, stats.BySource[provider.NameCatalogA])
	assert.Equal(t, 2, stats.BySource[provider.NameCatalogB])
	assert.Equal(t, 3, stats.Resolved())
	assert.Contains(t, stats.String(), "catalog_b")
}

func TestBatch_CanceledContext(t *testing.T) {
	r := newTestResolver(t, Config{}, stage(provider.NameCatalogA, coord(48.86, 2.34)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, stats := (&Batch{Resolver: r}).Run(ctx, []model.ObjectRef{model.MustParseObjectRef("PA_1")})
	require.Len(t, out, 1)
	assert.Error(t, out[0].Err)
	assert.Equal(t, 1, stats.Failed)
}

func TestStats_Add(t *testing.T) {
	var s Stats
	s.Add(&Outcome{Suspended: true})
	s.Add(&Outcome{Location: &model.ResolvedLocation{Confidence: model.ConfidenceLow, Source: model.SourceRegionCenter, Exhausted: true}})

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Suspended)
	assert.Equal(t, 1, s.Exhausted)
	assert.Equal(t, 0, s.Resolved())
	assert.Contains(t, s.String(), "waiting")
}
