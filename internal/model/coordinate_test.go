package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinate_IsZero(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinate
		want bool
	}{
		{"origin", Coordinate{0, 0}, true},
		{"inside box", Coordinate{0.009, -0.009}, true},
		{"lat edge", Coordinate{0.01, 0}, false},
		{"lng outside", Coordinate{0, 0.02}, false},
		{"paris", Coordinate{48.8566, 2.3522}, false},
		{"equator far east", Coordinate{0.001, 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.IsZero())
		})
	}
}

func TestCoordinate_Check(t *testing.T) {
	assert.NoError(t, Coordinate{48.86, 2.34}.Check())
	assert.NoError(t, Coordinate{-90, 180}.Check())

	for _, c := range []Coordinate{
		{91, 0},
		{0, -181},
		{math.NaN(), 2},
		{0.001, 0.001},
	} {
		err := c.Check()
		assert.Error(t, err, c.String())
		assert.True(t, errors.Is(err, ErrInvalidCoordinate))
		assert.False(t, c.Valid())
	}
	assert.True(t, Coordinate{51.5, -0.12}.Valid())
}

func TestConfidence_Ordering(t *testing.T) {
	assert.True(t, ConfidenceHigh.Supersedes(ConfidenceMedium))
	assert.True(t, ConfidenceMedium.Supersedes(ConfidenceLow))
	assert.True(t, ConfidenceMedium.Supersedes(ConfidenceMedium))
	assert.False(t, ConfidenceLow.Supersedes(ConfidenceHigh))
	assert.Equal(t, ConfidenceHigh, ParseConfidence(" HIGH "))
	assert.Equal(t, ConfidenceLow, ParseConfidence("bogus"))
}
