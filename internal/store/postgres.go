package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/db"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/pkg/geocode"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// resolutionColumns is the column order used by inserts and bulk upserts.
var resolutionColumns = []string{
	"object_id", "region_code", "lat", "lng", "confidence", "confidence_rank", "source",
	"address", "address_geocoded", "exhausted", "exhausted_at", "resolved_at", "detail", "updated_at",
}

// mergeGuard keeps a stored resolution unless the new one ranks at least as
// high or the stored one is an exhausted placeholder.
const mergeGuard = `resolutions.exhausted OR EXCLUDED.confidence_rank >= resolutions.confidence_rank`

// queries holds the hot-path statements. pgx caches their prepared form per
// connection.
var queries = map[string]string{
	"save_resolution": `INSERT INTO resolutions (object_id, region_code, lat, lng, confidence, confidence_rank, source, address, address_geocoded, exhausted, exhausted_at, resolved_at, detail, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (object_id) DO UPDATE SET
			region_code = EXCLUDED.region_code, lat = EXCLUDED.lat, lng = EXCLUDED.lng,
			confidence = EXCLUDED.confidence, confidence_rank = EXCLUDED.confidence_rank,
			source = EXCLUDED.source, address = EXCLUDED.address, address_geocoded = EXCLUDED.address_geocoded,
			exhausted = EXCLUDED.exhausted, exhausted_at = EXCLUDED.exhausted_at,
			resolved_at = EXCLUDED.resolved_at, detail = EXCLUDED.detail, updated_at = EXCLUDED.updated_at
		WHERE ` + mergeGuard,
	"get_resolution": `SELECT detail FROM resolutions WHERE object_id = $1`,
	"get_geocode":    `SELECT places FROM geocode_cache WHERE key = $1 AND expires_at > now()`,
	"set_geocode": `INSERT INTO geocode_cache (key, places, cached_at, expires_at) VALUES ($1, $2, now(), now() + $3::interval)
		ON CONFLICT (key) DO UPDATE SET places = EXCLUDED.places, cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS resolutions (
	object_id        TEXT PRIMARY KEY,
	region_code      TEXT NOT NULL,
	lat              DOUBLE PRECISION NOT NULL,
	lng              DOUBLE PRECISION NOT NULL,
	confidence       TEXT NOT NULL,
	confidence_rank  SMALLINT NOT NULL,
	source           TEXT NOT NULL,
	address          TEXT NOT NULL DEFAULT '',
	address_geocoded BOOLEAN NOT NULL DEFAULT false,
	exhausted        BOOLEAN NOT NULL DEFAULT false,
	exhausted_at     TIMESTAMPTZ,
	resolved_at      TIMESTAMPTZ NOT NULL,
	detail           JSONB NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_resolutions_region ON resolutions(region_code);
CREATE INDEX IF NOT EXISTS idx_resolutions_exhausted_at ON resolutions(exhausted_at) WHERE exhausted;

CREATE TABLE IF NOT EXISTS geocode_cache (
	key        TEXT PRIMARY KEY,
	places     JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at ON geocode_cache(expires_at);
`

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

// Migrate creates the tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveResolution implements Store.
func (s *PostgresStore) SaveResolution(ctx context.Context, loc *model.ResolvedLocation) (bool, error) {
	r, err := toRow(loc)
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, queries["save_resolution"],
		r.ObjectID, r.RegionCode, r.Lat, r.Lng, r.Confidence, r.ConfidenceRank, r.Source,
		r.Address, r.AddressGeocoded, r.Exhausted, r.ExhaustedAt, r.ResolvedAt, r.Detail,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: save resolution %s", r.ObjectID)
	}
	return tag.RowsAffected() > 0, nil
}

// resolutionMerge stages a batch and applies the merge rule to it. Within
// one batch the highest-ranked, latest resolution of an object wins.
var resolutionMerge = db.Merge{
	Table:   "resolutions",
	Key:     "object_id",
	Columns: resolutionColumns,
	Guard:   mergeGuard,
	Prefer:  "confidence_rank DESC, resolved_at DESC",
}

// SaveResolutions implements BatchSaver with one COPY-staged merge.
func (s *PostgresStore) SaveResolutions(ctx context.Context, locs []model.ResolvedLocation) (SaveSummary, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(locs))
	for i := range locs {
		r, err := toRow(&locs[i])
		if err != nil {
			return SaveSummary{}, err
		}
		rows = append(rows, []any{
			r.ObjectID, r.RegionCode, r.Lat, r.Lng, r.Confidence, r.ConfidenceRank, r.Source,
			r.Address, r.AddressGeocoded, r.Exhausted, r.ExhaustedAt, r.ResolvedAt, r.Detail, now,
		})
	}
	res, err := resolutionMerge.Run(ctx, s.pool, rows)
	if err != nil {
		return SaveSummary{}, eris.Wrap(err, "postgres: save resolutions")
	}
	return SaveSummary{Written: res.Written, Kept: res.Kept()}, nil
}

// GetResolution implements Store. It returns nil, nil for unknown objects.
func (s *PostgresStore) GetResolution(ctx context.Context, objectID string) (*model.ResolvedLocation, error) {
	var detail []byte
	err := s.pool.QueryRow(ctx, queries["get_resolution"], objectID).Scan(&detail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get resolution %s", objectID)
	}
	return fromDetail(detail)
}

// ListResolutions implements Store.
func (s *PostgresStore) ListResolutions(ctx context.Context, f Filter) ([]model.ResolvedLocation, error) {
	query := `SELECT detail FROM resolutions WHERE confidence_rank >= $1`
	args := []any{f.MinConfidence.Rank()}
	argIdx := 2

	if f.RegionCode != "" {
		query += fmt.Sprintf(` AND region_code = $%d`, argIdx)
		args = append(args, f.RegionCode)
		argIdx++
	}
	query += ` ORDER BY object_id`

	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, f.Limit)
		argIdx++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, f.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list resolutions")
	}
	return collectDetails(rows)
}

// ListExhausted implements Store. Oldest attempts come first.
func (s *PostgresStore) ListExhausted(ctx context.Context, olderThan time.Time) ([]model.ResolvedLocation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT detail FROM resolutions WHERE exhausted AND exhausted_at < $1 ORDER BY exhausted_at, object_id`,
		olderThan.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list exhausted")
	}
	return collectDetails(rows)
}

func collectDetails(rows pgx.Rows) ([]model.ResolvedLocation, error) {
	defer rows.Close()

	var out []model.ResolvedLocation
	for rows.Next() {
		var detail []byte
		if err := rows.Scan(&detail); err != nil {
			return nil, eris.Wrap(err, "postgres: scan resolution")
		}
		loc, err := fromDetail(detail)
		if err != nil {
			return nil, err
		}
		out = append(out, *loc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate resolutions")
}

// GetGeocode implements Store. Expired entries are misses.
func (s *PostgresStore) GetGeocode(ctx context.Context, key string) ([]geocode.Place, bool, error) {
	var b []byte
	err := s.pool.QueryRow(ctx, queries["get_geocode"], key).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: get geocode")
	}
	places, err := decodePlaces(b)
	if err != nil {
		return nil, false, err
	}
	return places, true, nil
}

// SetGeocode implements Store.
func (s *PostgresStore) SetGeocode(ctx context.Context, key string, places []geocode.Place, ttl time.Duration) error {
	b, err := encodePlaces(places)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, queries["set_geocode"], key, b, fmt.Sprintf("%d seconds", int64(ttl.Seconds())))
	return eris.Wrap(err, "postgres: set geocode")
}

// DeleteExpiredGeocodes implements Store.
func (s *PostgresStore) DeleteExpiredGeocodes(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM geocode_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired geocodes")
	}
	return int(tag.RowsAffected()), nil
}
