package geo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/model"
)

// Radius tiers by settlement size, in meters.
const (
	RadiusVillage  = 10_000.0
	RadiusTown     = 15_000.0
	RadiusCity     = 25_000.0
	RadiusMetro    = 40_000.0
	RadiusMegacity = 60_000.0

	// DefaultRadius applies to regions listed without an explicit radius.
	DefaultRadius = RadiusCity
)

// SpaceRegion is the code of the non-Earth-bound region. Anything validates
// against it.
const SpaceRegion = "SPACE"

// Locale selects the street grammar used for a region's OCR text.
type Locale string

// Supported locales.
const (
	LocaleFR    Locale = "fr"
	LocaleUK    Locale = "uk"
	LocaleOther Locale = "other"
)

// ParseLocale maps a config string to a Locale.
func ParseLocale(s string) Locale {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocaleFR:
		return LocaleFR
	case LocaleUK, "us", "en":
		return LocaleUK
	default:
		return LocaleOther
	}
}

// RegionProfile describes where a region's objects are expected to be.
type RegionProfile struct {
	Code            string   `yaml:"code" json:"code"`
	Aliases         []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Name            string   `yaml:"name" json:"name"`
	CenterLat       float64  `yaml:"lat" json:"lat"`
	CenterLng       float64  `yaml:"lng" json:"lng"`
	MaxRadiusMeters float64  `yaml:"radius_m" json:"radius_m"`
	CountryCode     string   `yaml:"country" json:"country"`
	Locale          Locale   `yaml:"locale" json:"locale"`
	// PostcodePattern matches a postcode that places an address in this
	// region (e.g. `75\d{3}` for Paris).
	PostcodePattern string `yaml:"postcode,omitempty" json:"postcode,omitempty"`
	// Unbounded regions validate every coordinate.
	Unbounded bool `yaml:"unbounded,omitempty" json:"unbounded,omitempty"`
}

// Center returns the profile's center coordinate.
func (p RegionProfile) Center() model.Coordinate {
	return model.Coordinate{Lat: p.CenterLat, Lng: p.CenterLng}
}

// Table is the read-only region lookup. It is safe for concurrent reads once
// built.
type Table struct {
	byCode map[string]RegionProfile
	codes  []string
}

// NewTable indexes profiles by code and alias. Later entries replace earlier
// ones with the same code. Profiles without a radius get DefaultRadius.
func NewTable(profiles []RegionProfile) *Table {
	t := &Table{byCode: make(map[string]RegionProfile, len(profiles))}
	for _, p := range profiles {
		t.add(p)
	}
	return t
}

func (t *Table) add(p RegionProfile) {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if p.Code == "" {
		return
	}
	if p.MaxRadiusMeters <= 0 {
		p.MaxRadiusMeters = DefaultRadius
	}
	if p.Locale == "" {
		p.Locale = LocaleOther
	}
	if p.Code == SpaceRegion {
		p.Unbounded = true
	}
	if _, exists := t.byCode[p.Code]; !exists {
		t.codes = append(t.codes, p.Code)
	}
	t.byCode[p.Code] = p
	for _, alias := range p.Aliases {
		alias = strings.ToUpper(strings.TrimSpace(alias))
		if alias == "" || alias == p.Code {
			continue
		}
		if _, exists := t.byCode[alias]; !exists {
			t.codes = append(t.codes, alias)
		}
		t.byCode[alias] = p
	}
}

// Lookup returns the profile for a region code or alias.
func (t *Table) Lookup(code string) (RegionProfile, bool) {
	if t == nil {
		return RegionProfile{}, false
	}
	p, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

// Len returns the number of indexed codes, aliases included.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byCode)
}

// Codes returns every indexed code in sorted order.
func (t *Table) Codes() []string {
	out := append([]string(nil), t.codes...)
	sort.Strings(out)
	return out
}

// Merge returns a new table with the profiles of other layered on top of t.
func (t *Table) Merge(other []RegionProfile) *Table {
	merged := &Table{byCode: make(map[string]RegionProfile, len(t.byCode)+len(other))}
	for _, code := range t.codes {
		p := t.byCode[code]
		if p.Code == code {
			merged.add(p)
		}
	}
	for _, p := range other {
		merged.add(p)
	}
	return merged
}

// ValidationResult is the outcome of checking one coordinate against one region.
type ValidationResult struct {
	Valid          bool     `json:"valid"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// Validator classifies coordinates as plausible for a region.
type Validator struct {
	table *Table
}

// NewValidator builds a validator over table. A nil or empty table is a
// configuration error.
func NewValidator(table *Table) (*Validator, error) {
	if table.Len() == 0 {
		return nil, eris.Wrap(model.ErrMissingRegionTable, "geo: validator")
	}
	return &Validator{table: table}, nil
}

// Table returns the validator's region table.
func (v *Validator) Table() *Table { return v.table }

// Validate checks c against the expected radius of regionCode. Unknown or
// empty region codes validate as true with no distance.
func (v *Validator) Validate(c model.Coordinate, regionCode string) ValidationResult {
	if err := c.Check(); err != nil {
		return ValidationResult{Valid: false, Reason: err.Error()}
	}
	profile, ok := v.table.Lookup(regionCode)
	if !ok {
		return ValidationResult{Valid: true}
	}
	if profile.Unbounded {
		return ValidationResult{Valid: true}
	}
	dist := DistanceMeters(c, profile.Center())
	if dist > profile.MaxRadiusMeters {
		return ValidationResult{
			Valid:          false,
			DistanceMeters: &dist,
			Reason: fmt.Sprintf("%.1f km from %s center, max %.1f km",
				dist/1000, profile.Name, profile.MaxRadiusMeters/1000),
		}
	}
	return ValidationResult{Valid: true, DistanceMeters: &dist}
}
