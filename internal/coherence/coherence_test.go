package coherence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/model"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		dist float64
		want model.CoherenceStatus
	}{
		{0, model.CoherenceExcellent},
		{49.9, model.CoherenceExcellent},
		{49.94, model.CoherenceExcellent},
		{49.96, model.CoherenceGood},
		{50.0, model.CoherenceGood},
		{199.9, model.CoherenceGood},
		{200.0, model.CoherenceWarning},
		{499.9, model.CoherenceWarning},
		{500.0, model.CoherenceConflict},
		{12_000, model.CoherenceConflict},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.dist), "%.2f m", tt.dist)
	}
}

func TestCheck_Presence(t *testing.T) {
	a := model.NewCandidate("catalog_a", model.Coordinate{Lat: 48.8606, Lng: 2.3376})

	none := Check(nil, nil)
	assert.Equal(t, model.CoherenceNotFound, none.Status)
	assert.False(t, none.Both())

	single := Check(a, nil)
	assert.Equal(t, model.CoherenceSingleSource, single.Status)
	assert.Nil(t, single.DistanceMeters)

	assert.Equal(t, model.CoherenceSingleSource, Check(nil, a).Status)
}

func TestCheck_Excellent(t *testing.T) {
	a := model.NewCandidate("catalog_a", model.Coordinate{Lat: 48.8606, Lng: 2.3376})
	b := model.NewCandidate("catalog_b", model.Coordinate{Lat: 48.8608, Lng: 2.3379})

	res := Check(a, b)
	require.NotNil(t, res.DistanceMeters)
	assert.Equal(t, model.CoherenceExcellent, res.Status)
	assert.True(t, res.Agrees())
	assert.InDelta(t, 31.3, *res.DistanceMeters, 1)

	sum := res.Summary()
	assert.Equal(t, res.Status, sum.Status)
	assert.Equal(t, res.DistanceMeters, sum.DistanceMeters)
}

func TestCheck_Conflict(t *testing.T) {
	a := model.NewCandidate("catalog_a", model.Coordinate{Lat: 48.86, Lng: 2.34})
	b := model.NewCandidate("catalog_b", model.Coordinate{Lat: 48.87, Lng: 2.36})

	res := Check(a, b)
	assert.Equal(t, model.CoherenceConflict, res.Status)
	assert.False(t, res.Agrees())
	assert.Equal(t, Check(b, a).DistanceMeters, res.DistanceMeters)
}
