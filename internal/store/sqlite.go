package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/pkg/geocode"
)

// SQLiteStore implements Store using modernc.org/sqlite. Timestamps are
// stored as Unix milliseconds so range queries compare numbers.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS resolutions (
	object_id        TEXT PRIMARY KEY,
	region_code      TEXT NOT NULL,
	lat              REAL NOT NULL,
	lng              REAL NOT NULL,
	confidence       TEXT NOT NULL,
	confidence_rank  INTEGER NOT NULL,
	source           TEXT NOT NULL,
	address          TEXT NOT NULL DEFAULT '',
	address_geocoded INTEGER NOT NULL DEFAULT 0,
	exhausted        INTEGER NOT NULL DEFAULT 0,
	exhausted_at     INTEGER,
	resolved_at      INTEGER NOT NULL,
	detail           TEXT NOT NULL,
	updated_at       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS geocode_cache (
	key        TEXT PRIMARY KEY,
	places     TEXT NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resolutions_region ON resolutions(region_code);
CREATE INDEX IF NOT EXISTS idx_resolutions_exhausted ON resolutions(exhausted, exhausted_at);
CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at ON geocode_cache(expires_at);
`

// Migrate creates the tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteUpsertResolution = `
INSERT INTO resolutions (
	object_id, region_code, lat, lng, confidence, confidence_rank, source,
	address, address_geocoded, exhausted, exhausted_at, resolved_at, detail, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(object_id) DO UPDATE SET
	region_code = excluded.region_code,
	lat = excluded.lat,
	lng = excluded.lng,
	confidence = excluded.confidence,
	confidence_rank = excluded.confidence_rank,
	source = excluded.source,
	address = excluded.address,
	address_geocoded = excluded.address_geocoded,
	exhausted = excluded.exhausted,
	exhausted_at = excluded.exhausted_at,
	resolved_at = excluded.resolved_at,
	detail = excluded.detail,
	updated_at = excluded.updated_at
WHERE resolutions.exhausted = 1 OR excluded.confidence_rank >= resolutions.confidence_rank`

// SaveResolution implements Store.
func (s *SQLiteStore) SaveResolution(ctx context.Context, loc *model.ResolvedLocation) (bool, error) {
	r, err := toRow(loc)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, sqliteUpsertResolution,
		r.ObjectID, r.RegionCode, r.Lat, r.Lng, r.Confidence, r.ConfidenceRank, r.Source,
		r.Address, r.AddressGeocoded, r.Exhausted, millisPtr(r.ExhaustedAt), millis(r.ResolvedAt),
		string(r.Detail), millis(s.now()),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: save resolution %s", r.ObjectID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

// SaveResolutions implements BatchSaver in one transaction.
func (s *SQLiteStore) SaveResolutions(ctx context.Context, locs []model.ResolvedLocation) (SaveSummary, error) {
	var sum SaveSummary
	if len(locs) == 0 {
		return sum, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, eris.Wrap(err, "sqlite: begin save resolutions")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertResolution)
	if err != nil {
		return sum, eris.Wrap(err, "sqlite: prepare save resolutions")
	}
	defer stmt.Close() //nolint:errcheck

	updated := millis(s.now())
	for i := range locs {
		r, err := toRow(&locs[i])
		if err != nil {
			return SaveSummary{}, err
		}
		res, err := stmt.ExecContext(ctx,
			r.ObjectID, r.RegionCode, r.Lat, r.Lng, r.Confidence, r.ConfidenceRank, r.Source,
			r.Address, r.AddressGeocoded, r.Exhausted, millisPtr(r.ExhaustedAt), millis(r.ResolvedAt),
			string(r.Detail), updated,
		)
		if err != nil {
			return SaveSummary{}, eris.Wrapf(err, "sqlite: save resolution %s", r.ObjectID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return SaveSummary{}, eris.Wrap(err, "sqlite: rows affected")
		}
		if n > 0 {
			sum.Written++
		} else {
			sum.Kept++
		}
	}
	if err := tx.Commit(); err != nil {
		return SaveSummary{}, eris.Wrap(err, "sqlite: commit save resolutions")
	}
	return sum, nil
}

// GetResolution implements Store. It returns nil, nil for unknown objects.
func (s *SQLiteStore) GetResolution(ctx context.Context, objectID string) (*model.ResolvedLocation, error) {
	var detail string
	err := s.db.QueryRowContext(ctx,
		`SELECT detail FROM resolutions WHERE object_id = ?`, objectID,
	).Scan(&detail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get resolution %s", objectID)
	}
	return fromDetail([]byte(detail))
}

// ListResolutions implements Store.
func (s *SQLiteStore) ListResolutions(ctx context.Context, f Filter) ([]model.ResolvedLocation, error) {
	query := `SELECT detail FROM resolutions WHERE confidence_rank >= ?`
	args := []any{f.MinConfidence.Rank()}
	if f.RegionCode != "" {
		query += ` AND region_code = ?`
		args = append(args, f.RegionCode)
	}
	query += ` ORDER BY object_id`

	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list resolutions")
	}
	return scanDetails(rows)
}

// ListExhausted implements Store. Oldest attempts come first.
func (s *SQLiteStore) ListExhausted(ctx context.Context, olderThan time.Time) ([]model.ResolvedLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT detail FROM resolutions WHERE exhausted = 1 AND exhausted_at < ? ORDER BY exhausted_at, object_id`,
		millis(olderThan),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list exhausted")
	}
	return scanDetails(rows)
}

func scanDetails(rows *sql.Rows) ([]model.ResolvedLocation, error) {
	defer rows.Close() //nolint:errcheck

	var out []model.ResolvedLocation
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan resolution")
		}
		loc, err := fromDetail([]byte(detail))
		if err != nil {
			return nil, err
		}
		out = append(out, *loc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate resolutions")
}

// GetGeocode implements Store. Expired entries are misses.
func (s *SQLiteStore) GetGeocode(ctx context.Context, key string) ([]geocode.Place, bool, error) {
	var places string
	err := s.db.QueryRowContext(ctx,
		`SELECT places FROM geocode_cache WHERE key = ? AND expires_at > ?`,
		key, millis(s.now()),
	).Scan(&places)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: get geocode")
	}
	out, err := decodePlaces([]byte(places))
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// SetGeocode implements Store.
func (s *SQLiteStore) SetGeocode(ctx context.Context, key string, places []geocode.Place, ttl time.Duration) error {
	b, err := encodePlaces(places)
	if err != nil {
		return err
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO geocode_cache (key, places, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET places = excluded.places, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		key, string(b), millis(now), millis(now.Add(ttl)),
	)
	return eris.Wrap(err, "sqlite: set geocode")
}

// DeleteExpiredGeocodes implements Store.
func (s *SQLiteStore) DeleteExpiredGeocodes(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE expires_at <= ?`, millis(s.now()))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired geocodes")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func millisPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
