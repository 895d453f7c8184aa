package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/georesolve/internal/model"
)

func TestDistanceMeters_KnownPairs(t *testing.T) {
	tests := []struct {
		name   string
		a, b   model.Coordinate
		wantKM float64
		tolKM  float64
	}{
		{
			name:   "paris to london",
			a:      model.Coordinate{Lat: 48.8566, Lng: 2.3522},
			b:      model.Coordinate{Lat: 51.5074, Lng: -0.1278},
			wantKM: 343.5,
			tolKM:  1.0,
		},
		{
			name:   "one degree of latitude",
			a:      model.Coordinate{Lat: 0, Lng: 10},
			b:      model.Coordinate{Lat: 1, Lng: 10},
			wantKM: 111.19,
			tolKM:  0.05,
		},
		{
			name:   "louvre neighbours",
			a:      model.Coordinate{Lat: 48.8606, Lng: 2.3376},
			b:      model.Coordinate{Lat: 48.8608, Lng: 2.3379},
			wantKM: 0.0313,
			tolKM:  0.002,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b) / 1000
			assert.InDelta(t, tt.wantKM, got, tt.tolKM)
		})
	}
}

func TestDistanceMeters_Symmetry(t *testing.T) {
	points := []model.Coordinate{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 51.5074, Lng: -0.1278},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 35.6762, Lng: 139.6503},
		{Lat: 89.9, Lng: -179.9},
		{Lat: -89.9, Lng: 179.9},
	}
	for _, a := range points {
		assert.Zero(t, DistanceMeters(a, a), "self distance for %s", a)
		for _, b := range points {
			assert.Equal(t, DistanceMeters(a, b), DistanceMeters(b, a), "%s <-> %s", a, b)
		}
	}
}

func TestDistanceMeters_Antipodal(t *testing.T) {
	d := DistanceMeters(model.Coordinate{Lat: 0, Lng: 0}, model.Coordinate{Lat: 0, Lng: 180})
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1)
}

func TestRoundMeters(t *testing.T) {
	assert.Equal(t, 49.9, RoundMeters(49.94))
	assert.Equal(t, 50.0, RoundMeters(49.95))
	assert.Equal(t, 0.0, RoundMeters(0.04))
	assert.Equal(t, 123.5, RoundMeters(123.45000001))
}

func TestMidpoint(t *testing.T) {
	a := model.Coordinate{Lat: 48.8606, Lng: 2.3376}
	b := model.Coordinate{Lat: 48.8608, Lng: 2.3379}
	m := Midpoint(a, b)
	assert.InDelta(t, 48.8607, m.Lat, 1e-6)
	assert.InDelta(t, 2.33775, m.Lng, 1e-6)
	assert.InDelta(t, DistanceMeters(a, m), DistanceMeters(m, b), 0.1)
}
