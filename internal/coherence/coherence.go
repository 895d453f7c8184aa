// Package coherence compares the two catalog candidates for one object and
// grades how well they agree.
package coherence

import (
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
)

// Distance thresholds in meters. Buckets are half-open: d < ExcellentMeters
// is Excellent, so exactly 50.0 m is Good.
const (
	ExcellentMeters = 50.0
	GoodMeters      = 200.0
	WarningMeters   = 500.0
)

// Result is the agreement between two candidates.
type Result struct {
	Status         model.CoherenceStatus
	DistanceMeters *float64
}

// Agrees reports whether the two candidates are close enough to trust.
func (r Result) Agrees() bool {
	return r.Status == model.CoherenceExcellent || r.Status == model.CoherenceGood
}

// Both reports whether both candidates were present.
func (r Result) Both() bool {
	return r.DistanceMeters != nil
}

// Summary converts the result for storage on a ResolvedLocation.
func (r Result) Summary() *model.CoherenceSummary {
	return &model.CoherenceSummary{Status: r.Status, DistanceMeters: r.DistanceMeters}
}

// Check grades a against b. Either may be nil; callers pass only
// region-validated candidates.
func Check(a, b *model.Candidate) Result {
	switch {
	case a == nil && b == nil:
		return Result{Status: model.CoherenceNotFound}
	case a == nil || b == nil:
		return Result{Status: model.CoherenceSingleSource}
	}
	d := geo.DistanceMeters(a.Coordinate, b.Coordinate)
	return Result{Status: Classify(d), DistanceMeters: &d}
}

// Classify maps a distance in meters to a status. The distance is rounded to
// 0.1 m before comparison.
func Classify(distanceMeters float64) model.CoherenceStatus {
	d := geo.RoundMeters(distanceMeters)
	switch {
	case d < ExcellentMeters:
		return model.CoherenceExcellent
	case d < GoodMeters:
		return model.CoherenceGood
	case d < WarningMeters:
		return model.CoherenceWarning
	default:
		return model.CoherenceConflict
	}
}
