// Package geo holds the distance math and the region reference table used to
// sanity-check candidate coordinates.
package geo

import (
	"math"

	"github.com/sells-group/georesolve/internal/model"
)

// EarthRadiusMeters is the mean Earth radius used by DistanceMeters.
const EarthRadiusMeters = 6_371_000.0

// DistanceMeters returns the haversine distance between a and b, rounded to
// 0.1 m. Every threshold in the module compares against this rounded value.
func DistanceMeters(a, b model.Coordinate) float64 {
	return RoundMeters(haversine(a, b))
}

// RoundMeters rounds a distance to one decimal place.
func RoundMeters(d float64) float64 {
	return math.Round(d*10) / 10
}

func haversine(a, b model.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	// Clamp against float drift for antipodal points.
	h = math.Min(1, math.Max(0, h))
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Midpoint returns the point halfway between a and b along the great circle.
func Midpoint(a, b model.Coordinate) model.Coordinate {
	lat1 := a.Lat * math.Pi / 180
	lng1 := a.Lng * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	bx := math.Cos(lat2) * math.Cos(dLng)
	by := math.Cos(lat2) * math.Sin(dLng)
	lat := math.Atan2(math.Sin(lat1)+math.Sin(lat2), math.Sqrt((math.Cos(lat1)+bx)*(math.Cos(lat1)+bx)+by*by))
	lng := lng1 + math.Atan2(by, math.Cos(lat1)+bx)

	return model.Coordinate{
		Lat: lat * 180 / math.Pi,
		Lng: math.Mod(lng*180/math.Pi+540, 360) - 180,
	}
}
