package model

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// ZeroSentinelDegrees is the radius around (0,0) inside which a coordinate is
// treated as "no data". Several providers emit (0,0) for missing values.
const ZeroSentinelDegrees = 0.01

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether c falls inside the (0,0) sentinel box.
func (c Coordinate) IsZero() bool {
	return math.Abs(c.Lat) < ZeroSentinelDegrees && math.Abs(c.Lng) < ZeroSentinelDegrees
}

// InRange reports whether lat is in [-90,90] and lng in [-180,180].
func (c Coordinate) InRange() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Check returns ErrInvalidCoordinate when c is out of range or the zero sentinel.
func (c Coordinate) Check() error {
	if !c.InRange() {
		return eris.Wrapf(ErrInvalidCoordinate, "%s out of range", c)
	}
	if c.IsZero() {
		return eris.Wrapf(ErrInvalidCoordinate, "%s is the zero sentinel", c)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Valid reports whether c is in range and not the zero sentinel.
func (c Coordinate) Valid() bool {
	return c.Check() == nil
}
