package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/address"
	"github.com/sells-group/georesolve/internal/config"
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/pipeline"
	"github.com/sells-group/georesolve/internal/provider"
	"github.com/sells-group/georesolve/internal/store"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func testResolver(t *testing.T) *pipeline.Resolver {
	t.Helper()
	table := geo.DefaultTable()
	v, err := geo.NewValidator(table)
	require.NoError(t, err)
	r, err := pipeline.NewResolver(pipeline.Config{}, v,
		provider.Func{ProviderName: provider.NameCatalogA, Fn: func(_ context.Context, ref model.ObjectRef) (*model.Candidate, error) {
			if ref.ID == "PA_1" {
				return model.NewCandidate(provider.NameCatalogA, model.Coordinate{Lat: 48.86, Lng: 2.34}), nil
			}
			return nil, nil
		}},
		provider.NewInteractive(nil, table),
	)
	require.NoError(t, err)
	return r
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "cmd.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCollectRefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objects.json")
	require.NoError(t, os.WriteFile(path, []byte(`["PA_1", "PA_2"]`), 0o644))

	refs, err := collectRefs(path, []string{"pa-2", "LDN_3"})
	require.NoError(t, err)
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"PA_1", "PA_2", "LDN_3"}, ids)

	_, err = collectRefs("", []string{"bogus"})
	require.Error(t, err)
}

func TestSettleSuspended_PromptsOperator(t *testing.T) {
	ctx := context.Background()
	r := testResolver(t)
	st := testStore(t)

	b := &pipeline.Batch{Resolver: r, Concurrency: 2}
	outcomes, stats := b.Run(ctx, []model.ObjectRef{model.MustParseObjectRef("PA_1"), model.MustParseObjectRef("PA_2")})
	require.Equal(t, 1, stats.Suspended)

	var out bytes.Buffer
	prompt := bufio.NewReader(strings.NewReader("48.8530, 2.3499\n"))
	locs, err := settleSuspended(ctx, r, outcomes, prompt, &out)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	require.NoError(t, saveLocations(ctx, st, locs))

	assert.Contains(t, out.String(), "PA_2 (region PA) needs a location")
	stored, err := st.GetResolution(ctx, "PA_2")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, provider.NameInteractive, stored.Source)
	assert.InDelta(t, 48.853, stored.Coordinate.Lat, 1e-9)

	stored, err = st.GetResolution(ctx, "PA_1")
	require.NoError(t, err)
	require.NotNil(t, stored, "the batch is saved with the settled objects")
}

func TestSettleSuspended_CancelsWithoutPrompt(t *testing.T) {
	ctx := context.Background()
	r := testResolver(t)

	o, err := r.Resolve(ctx, model.MustParseObjectRef("PA_9"))
	require.NoError(t, err)
	require.True(t, o.Suspended)

	locs, err := settleSuspended(ctx, r, []pipeline.Outcome{*o}, nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.True(t, locs[0].Exhausted)
	assert.Equal(t, model.SourceRegionCenter, locs[0].Source)
	assert.Empty(t, r.Pending())
}

func TestSettle_EOFCancels(t *testing.T) {
	ctx := context.Background()
	r := testResolver(t)

	o, err := r.Resolve(ctx, model.MustParseObjectRef("PA_9"))
	require.NoError(t, err)

	done, err := settle(ctx, r, o, bufio.NewReader(strings.NewReader("")), &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, done.Location)
	assert.True(t, done.Location.Exhausted)
}

func TestWriteExports(t *testing.T) {
	dir := t.TempDir()
	locs := []model.ResolvedLocation{{
		Object:     model.MustParseObjectRef("PA_1"),
		Coordinate: model.Coordinate{Lat: 48.86, Lng: 2.34},
		Confidence: model.ConfidenceHigh,
		Source:     provider.NameCatalogA,
	}}
	gj := filepath.Join(dir, "out.geojson")
	xl := filepath.Join(dir, "out.xlsx")
	require.NoError(t, writeExports(locs, gj, xl))

	b, err := os.ReadFile(gj)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"PA_1"`)
	_, err = os.Stat(xl)
	assert.NoError(t, err)

	require.NoError(t, writeExports(locs, "", ""))
	assert.Error(t, writeExports(locs, filepath.Join(dir, "missing", "x.geojson"), ""))
}

func TestPrintCandidates(t *testing.T) {
	table := geo.DefaultTable()
	region, ok := table.Lookup("PA")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, printCandidates(&out, address.NewEngine(), "RUE DE LA ROQUETTE\n", region, false))
	assert.Contains(t, out.String(), "Rue de la Roquette")

	out.Reset()
	require.NoError(t, printCandidates(&out, address.NewEngine(), "", region, false))
	assert.Contains(t, out.String(), "no address found")

	out.Reset()
	require.NoError(t, printCandidates(&out, address.NewEngine(), "RUE DE LA ROQUETTE\n", region, true))
	assert.Contains(t, out.String(), `"text"`)
}

func TestRegionsOutput(t *testing.T) {
	table := geo.DefaultTable()

	var out bytes.Buffer
	listRegions(&out, table)
	assert.Contains(t, out.String(), "PA")
	assert.Contains(t, out.String(), "unbounded")

	out.Reset()
	require.NoError(t, showRegion(&out, table, "ldn"))
	assert.Contains(t, out.String(), `"code": "LDN"`)

	assert.Error(t, showRegion(&out, table, "NOPE"))
}

func TestLoadTable_LocaleOverride(t *testing.T) {
	withConfig(t, &config.Config{Pipeline: config.PipelineConfig{Locales: map[string]string{"PA": "uk"}}})

	table, err := loadTable()
	require.NoError(t, err)
	p, ok := table.Lookup("PA")
	require.True(t, ok)
	assert.Equal(t, geo.LocaleUK, p.Locale)

	withConfig(t, &config.Config{Pipeline: config.PipelineConfig{Locales: map[string]string{"ZZ": "fr"}}})
	_, err = loadTable()
	assert.Error(t, err)
}
