package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/pkg/geocode"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_GeocodeExpiry(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	now := t0
	st.now = func() time.Time { return now }

	require.NoError(t, st.SetGeocode(ctx, "short", []geocode.Place{{DisplayName: "a"}}, time.Minute))
	require.NoError(t, st.SetGeocode(ctx, "long", []geocode.Place{{DisplayName: "b"}}, time.Hour))

	now = now.Add(2 * time.Minute)

	_, ok, err := st.GetGeocode(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = st.GetGeocode(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := st.DeleteExpiredGeocodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_GeocodeOverwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetGeocode(ctx, "k", []geocode.Place{{DisplayName: "old"}}, time.Hour))
	require.NoError(t, st.SetGeocode(ctx, "k", []geocode.Place{{DisplayName: "new"}}, time.Hour))

	got, ok, err := st.GetGeocode(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got[0].DisplayName)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}

func TestNewSQLite_BadPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Error(t, err)
}

func TestSQLite_SaveResolutions(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveResolution(ctx, resolved("PA_1", model.ConfidenceHigh, "catalog_a"))
	require.NoError(t, err)

	sum, err := st.SaveResolutions(ctx, []model.ResolvedLocation{
		*resolved("PA_1", model.ConfidenceMedium, "ocr"),
		*resolved("PA_2", model.ConfidenceMedium, "ocr"),
		*exhausted("PA_3", t0),
	})
	require.NoError(t, err)
	assert.Equal(t, SaveSummary{Written: 2, Kept: 1}, sum)

	got, err := st.GetResolution(ctx, "PA_1")
	require.NoError(t, err)
	assert.Equal(t, "catalog_a", got.Source)

	got, err = st.GetResolution(ctx, "PA_3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Exhausted)

	sum, err = st.SaveResolutions(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, sum)
}
