// Package store persists resolved locations and the geocode cache.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/config"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/pkg/geocode"
)

// Filter narrows ListResolutions.
type Filter struct {
	RegionCode    string           `json:"region_code,omitempty"`
	MinConfidence model.Confidence `json:"min_confidence,omitempty"`
	Limit         int              `json:"limit,omitempty"`
	Offset        int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for resolutions.
//
// SaveResolution applies the merge rule: a new resolution replaces the
// stored one only when its confidence ranks at least as high, or when the
// stored one is an exhausted placeholder. It reports whether it wrote.
type Store interface {
	// Resolutions
	SaveResolution(ctx context.Context, loc *model.ResolvedLocation) (bool, error)
	GetResolution(ctx context.Context, objectID string) (*model.ResolvedLocation, error)
	ListResolutions(ctx context.Context, filter Filter) ([]model.ResolvedLocation, error)
	ListExhausted(ctx context.Context, olderThan time.Time) ([]model.ResolvedLocation, error)

	// Geocode cache
	GetGeocode(ctx context.Context, key string) ([]geocode.Place, bool, error)
	SetGeocode(ctx context.Context, key string, places []geocode.Place, ttl time.Duration) error
	DeleteExpiredGeocodes(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// SaveSummary counts a batch save: rows written and rows the merge rule
// kept as they were.
type SaveSummary struct {
	Written int64 `json:"written"`
	Kept    int64 `json:"kept"`
}

// BatchSaver is implemented by stores that save many resolutions at once
// under the same merge rule as SaveResolution.
type BatchSaver interface {
	SaveResolutions(ctx context.Context, locs []model.ResolvedLocation) (SaveSummary, error)
}

// SaveAll saves locs in one batch when st is a BatchSaver and one by one
// otherwise.
func SaveAll(ctx context.Context, st Store, locs []model.ResolvedLocation) (SaveSummary, error) {
	if bs, ok := st.(BatchSaver); ok {
		return bs.SaveResolutions(ctx, locs)
	}
	var sum SaveSummary
	for i := range locs {
		saved, err := st.SaveResolution(ctx, &locs[i])
		if err != nil {
			return sum, err
		}
		if saved {
			sum.Written++
		} else {
			sum.Kept++
		}
	}
	return sum, nil
}

// Open builds the store named by cfg.Driver and migrates it.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		s, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// row is the column form of a resolution shared by both drivers. Detail
// holds the full JSON so nested audit data round-trips unchanged.
type row struct {
	ObjectID        string
	RegionCode      string
	Lat, Lng        float64
	Confidence      string
	ConfidenceRank  int
	Source          string
	Address         string
	AddressGeocoded bool
	Exhausted       bool
	ExhaustedAt     *time.Time
	ResolvedAt      time.Time
	Detail          []byte
}

func toRow(loc *model.ResolvedLocation) (row, error) {
	if err := loc.Object.Validate(); err != nil {
		return row{}, eris.Wrap(err, "store: resolution object")
	}
	detail, err := json.Marshal(loc)
	if err != nil {
		return row{}, eris.Wrap(err, "store: marshal resolution")
	}
	return row{
		ObjectID:        loc.Object.ID,
		RegionCode:      loc.Object.RegionCode,
		Lat:             loc.Coordinate.Lat,
		Lng:             loc.Coordinate.Lng,
		Confidence:      string(loc.Confidence),
		ConfidenceRank:  loc.Confidence.Rank(),
		Source:          loc.Source,
		Address:         loc.Address,
		AddressGeocoded: loc.AddressGeocoded,
		Exhausted:       loc.Exhausted,
		ExhaustedAt:     loc.ExhaustedAt,
		ResolvedAt:      loc.ResolvedAt.UTC(),
		Detail:          detail,
	}, nil
}

func fromDetail(detail []byte) (*model.ResolvedLocation, error) {
	var loc model.ResolvedLocation
	if err := json.Unmarshal(detail, &loc); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal resolution")
	}
	return &loc, nil
}

func encodePlaces(places []geocode.Place) ([]byte, error) {
	if places == nil {
		places = []geocode.Place{}
	}
	b, err := json.Marshal(places)
	return b, eris.Wrap(err, "store: marshal places")
}

func decodePlaces(b []byte) ([]geocode.Place, error) {
	var places []geocode.Place
	if err := json.Unmarshal(b, &places); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal places")
	}
	return places, nil
}

// GeocodeCache adapts a Store to geocode.Cache with a fixed ttl.
type GeocodeCache struct {
	store Store
	ttl   time.Duration
}

// NewGeocodeCache returns a geocode.Cache backed by s.
func NewGeocodeCache(s Store, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{store: s, ttl: ttl}
}

// Get implements geocode.Cache.
func (c *GeocodeCache) Get(ctx context.Context, key string) ([]geocode.Place, bool, error) {
	return c.store.GetGeocode(ctx, key)
}

// Set implements geocode.Cache.
func (c *GeocodeCache) Set(ctx context.Context, key string, places []geocode.Place) error {
	return c.store.SetGeocode(ctx, key, places, c.ttl)
}

var _ geocode.Cache = (*GeocodeCache)(nil)
