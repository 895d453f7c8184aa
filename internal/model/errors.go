package model

import "github.com/rotisserie/eris"

// Error taxonomy. Only ErrMalformedObject and ErrMissingRegionTable are ever
// returned to a pipeline caller; the rest are recorded as rejections.
var (
	// ErrProviderUnavailable marks a network or parse failure inside a provider.
	ErrProviderUnavailable = eris.New("provider unavailable")
	// ErrInvalidCoordinate marks an out-of-range or zero-sentinel coordinate.
	ErrInvalidCoordinate = eris.New("invalid coordinate")
	// ErrRegionMismatch marks a coordinate outside the region's radius.
	ErrRegionMismatch = eris.New("region mismatch")
	// ErrGeocodingAmbiguous marks a geocoder answer with no region-valid match.
	ErrGeocodingAmbiguous = eris.New("geocoding ambiguous")
	// ErrNeedsInput is returned by interactive providers that must wait for an operator.
	ErrNeedsInput = eris.New("operator input required")

	// ErrMalformedObject is a programmer error: the object id cannot be parsed.
	ErrMalformedObject = eris.New("malformed object ref")
	// ErrMissingRegionTable is a programmer error: no region table was loaded.
	ErrMissingRegionTable = eris.New("missing region table")
)

// Classify tags cause with one of the sentinels above. errors.Is matches
// both kind and anything in cause's chain.
func Classify(kind, cause error) error {
	return &classified{kind: kind, cause: cause}
}

type classified struct {
	kind, cause error
}

func (c *classified) Error() string   { return c.kind.Error() + ": " + c.cause.Error() }
func (c *classified) Unwrap() []error { return []error{c.kind, c.cause} }
