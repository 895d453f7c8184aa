package model

import (
	"strings"
	"time"
)

// Confidence is the final trust label attached to a resolved location.
type Confidence string

// Confidence levels, ordered High > Medium > Low.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders confidence levels; unknown labels rank below Low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Supersedes reports whether c is at least as strong as other.
func (c Confidence) Supersedes(other Confidence) bool {
	return c.Rank() >= other.Rank()
}

// ParseConfidence maps a stored label back to a Confidence.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// CoherenceStatus is the agreement level between the two catalog candidates.
type CoherenceStatus string

// Coherence statuses.
const (
	CoherenceExcellent    CoherenceStatus = "excellent"
	CoherenceGood         CoherenceStatus = "good"
	CoherenceWarning      CoherenceStatus = "warning"
	CoherenceConflict     CoherenceStatus = "conflict"
	CoherenceSingleSource CoherenceStatus = "single_source"
	CoherenceNotFound     CoherenceStatus = "not_found"
)

// RejectReason classifies why a candidate was discarded.
type RejectReason string

// Rejection reasons recorded in ResolvedLocation.Rejected.
const (
	RejectInvalidCoordinate  RejectReason = "invalid_coordinate"
	RejectRegionMismatch     RejectReason = "region_mismatch"
	RejectProviderError      RejectReason = "provider_unavailable"
	RejectGeocodingAmbiguous RejectReason = "geocoding_ambiguous"
	RejectNoData             RejectReason = "no_data"
	RejectCoherenceLoser     RejectReason = "coherence_not_selected"
	RejectCanceled           RejectReason = "canceled"
	RejectExpired            RejectReason = "session_expired"
)

// Rejection records a piece of evidence the pipeline looked at and did not
// use. Coordinate is nil when the provider returned nothing.
type Rejection struct {
	Provider       string       `json:"provider"`
	Coordinate     *Coordinate  `json:"coordinate,omitempty"`
	Reason         RejectReason `json:"reason"`
	Detail         string       `json:"detail,omitempty"`
	DistanceMeters *float64     `json:"distance_meters,omitempty"`
}

// CoherenceSummary is the catalog agreement recorded on a resolution.
type CoherenceSummary struct {
	Status         CoherenceStatus `json:"status"`
	DistanceMeters *float64        `json:"distance_meters,omitempty"`
}

// ResolvedLocation is the final output of one pipeline run for one object.
// It is built once and not mutated afterwards.
type ResolvedLocation struct {
	Object          ObjectRef         `json:"object"`
	Coordinate      Coordinate        `json:"coordinate"`
	Confidence      Confidence        `json:"confidence"`
	Source          string            `json:"source"`
	Address         string            `json:"address,omitempty"`
	AddressGeocoded bool              `json:"address_geocoded,omitempty"`
	Coherence       *CoherenceSummary `json:"coherence,omitempty"`
	Rejected        []Rejection       `json:"rejected,omitempty"`
	Exhausted       bool              `json:"exhausted"`
	ExhaustedAt     *time.Time        `json:"exhausted_at,omitempty"`
	ResolvedAt      time.Time         `json:"resolved_at"`
}

// Sources of exhausted resolutions. SourceNone marks a run in a region with
// no usable center, which ends without any coordinate.
const (
	SourceRegionCenter = "region_center"
	SourceNone         = "none"
)

// IsPlaceholder reports whether the location is a region-center fallback
// rather than an observation.
func (r *ResolvedLocation) IsPlaceholder() bool {
	return r.Exhausted || r.Source == SourceRegionCenter || r.Source == SourceNone
}

// HasCoordinate reports whether the location carries a real point.
func (r *ResolvedLocation) HasCoordinate() bool {
	return !r.Coordinate.IsZero()
}
