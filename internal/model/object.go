package model

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ObjectRef identifies one installation by its REGION_NUMBER code.
type ObjectRef struct {
	ID         string `json:"id"`
	RegionCode string `json:"region_code"`

	// ImageURLs point at photos of the installation in place. Image-based
	// providers (EXIF, OCR, vision) read them; they are optional.
	ImageURLs []string `json:"image_urls,omitempty"`
}

var objectIDPattern = regexp.MustCompile(`^([A-Z]+)[_-]([0-9]+)$`)

// ParseObjectRef parses an id of the form "PA_1234" or "pa-01". The region
// code is the alphabetic prefix; the number is kept as written.
func ParseObjectRef(id string) (ObjectRef, error) {
	norm := strings.ToUpper(strings.TrimSpace(id))
	if norm == "" {
		return ObjectRef{}, eris.Wrap(ErrMalformedObject, "model: empty object id")
	}
	m := objectIDPattern.FindStringSubmatch(norm)
	if m == nil {
		return ObjectRef{}, eris.Wrapf(ErrMalformedObject, "model: object id %q", id)
	}
	return ObjectRef{
		ID:         m[1] + "_" + m[2],
		RegionCode: m[1],
	}, nil
}

// MustParseObjectRef is ParseObjectRef for literals in tests and fixtures.
func MustParseObjectRef(id string) ObjectRef {
	ref, err := ParseObjectRef(id)
	if err != nil {
		panic(err)
	}
	return ref
}

// Number returns the numeric part of the id.
func (o ObjectRef) Number() string {
	_, num, ok := strings.Cut(o.ID, "_")
	if !ok {
		return ""
	}
	return num
}

// Validate reports whether the ref is well formed.
func (o ObjectRef) Validate() error {
	if o.ID == "" || o.RegionCode == "" {
		return eris.Wrapf(ErrMalformedObject, "model: object %q region %q", o.ID, o.RegionCode)
	}
	if !strings.HasPrefix(o.ID, o.RegionCode+"_") {
		return eris.Wrapf(ErrMalformedObject, "model: object %q not in region %q", o.ID, o.RegionCode)
	}
	return nil
}
